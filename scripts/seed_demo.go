//go:build ignore
// +build ignore

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"broker-quote-engine/internal/models"
	"broker-quote-engine/internal/services/calculator"
	"broker-quote-engine/internal/services/catalog"
	"broker-quote-engine/internal/services/database"
	"broker-quote-engine/internal/services/matcher"
	"broker-quote-engine/internal/services/overlay"
	"broker-quote-engine/internal/utils"

	"github.com/joho/godotenv"
)

const demoRateCard = `Scope,Tier,Product,Rate,Product Fee,Admin Fee,Proc Fee,Min LTV,Max LTV,Min Loan,Max Loan,Retention
Standard,1,2 Year Fix,5.49%,3.00,150,1.00,0,75,50000,1500000,
Standard,1,5 Year Fix,5.19%,5.00,150,1.00,0,75,50000,2000000,
Standard,2,2 Year Fix,5.89%,3.00,150,1.00,0,75,50000,1500000,
Standard,2,5 Year Fix,5.59%,5.00,150,1.00,0,75,50000,2000000,
Commercial,1,5 Year Fix,6.29%,7.00,295,1.00,0,70,100000,3000000,
Semi-Commercial,1,5 Year Fix,6.09%,7.00,295,1.00,0,70,100000,3000000,
Standard,1,2 Year Tracker,5.74%,2.00,150,1.00,0,75,50000,1500000,
Standard,1,2 Year Fix,5.99%,2.00,0,0.75,0,65,50000,1000000,yes
Standard,1,2 Year Fix,6.19%,2.00,0,0.75,0,75,50000,1000000,yes
Bridge,1,Standard Bridge,0.89%,2.00,295,1.00,0,75,75000,5000000,
Bridge,1,Standard Bridge 2nd Charge,1.09%,2.00,295,1.00,0,70,75000,2000000,
Fusion,1,Fusion,0.99%,2.00,295,1.00,0,75,200000,10000000,`

const demoCriteriaCard = `Question Key,Question,Option,Tier,Scope,Info,Order
property_type,What is the property type?,Standard residential,1,,Houses and flats,1
property_type,What is the property type?,Flat above commercial,2,,Flat situated above commercial premises,1
adverse_credit,Any adverse credit in the last 3 years?,No,1,,,2
adverse_credit,Any adverse credit in the last 3 years?,Yes,3,,CCJs or defaults,2
first_time_landlord,Is the applicant a first time landlord?,No,1,,,3
first_time_landlord,Is the applicant a first time landlord?,Yes,2,,,3`

func main() {
	fmt.Println("=== Broker Quote Engine - Demo Seed ===")
	fmt.Println()

	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  Warning: Could not load .env file: %v\n", err)
	}
	if err := utils.InitLogger("info"); err != nil {
		fmt.Printf("❌ Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer utils.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	databaseURL := os.Getenv("DATABASE_URL")
	db, err := database.NewFromURL(databaseURL)
	if err != nil {
		fmt.Printf("❌ Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()
	fmt.Println("✅ Connected to database")

	// Ingest the demo rate card
	fmt.Println()
	fmt.Println("📖 Parsing demo rate card...")

	rateParser := catalog.NewRateCardParser()
	rateRows, parseErrs := rateParser.Parse(demoRateCard, "demo-2026-08", "seed_demo.go")
	if len(parseErrs) > 0 {
		fmt.Printf("⚠️  Rate card parsing errors: %v\n", parseErrs)
	}
	fmt.Printf("✅ Parsed %d rate rows\n", len(rateRows))

	rateRepo := database.NewRateRepository(db)
	inserted, err := rateRepo.ReplaceSet(ctx, "demo-2026-08", rateRows)
	if err != nil {
		fmt.Printf("❌ Failed to store rate rows: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Stored %d rate rows in set 'demo-2026-08'\n", inserted)

	// Ingest the demo criteria card
	fmt.Println()
	fmt.Println("📖 Parsing demo criteria card...")

	criteriaParser := catalog.NewCriteriaCardParser()
	criteriaRows, parseErrs := criteriaParser.Parse(demoCriteriaCard, "demo-2026-08")
	if len(parseErrs) > 0 {
		fmt.Printf("⚠️  Criteria card parsing errors: %v\n", parseErrs)
	}

	criteriaRepo := database.NewCriteriaRepository(db)
	inserted, err = criteriaRepo.ReplaceSet(ctx, "demo-2026-08", criteriaRows)
	if err != nil {
		fmt.Printf("❌ Failed to store criteria rows: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Stored %d criteria rows in set 'demo-2026-08'\n", inserted)

	// Seed the default pricing overlay
	fmt.Println()
	fmt.Println("⚙️  Seeding default pricing overlay...")

	overlayJSON, _ := json.Marshal(overlay.Default())
	settingsRepo := database.NewSettingsRepository(db)
	if err := settingsRepo.Set(ctx, "pricing_overlay", overlayJSON); err != nil {
		fmt.Printf("❌ Failed to store overlay: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Overlay stored under 'pricing_overlay'")

	// Run a sample quote against the seeded data
	fmt.Println()
	fmt.Println("🎯 Running a sample buy-to-let quote...")

	ov := overlay.Default()
	filter := matcher.NewBTLFilter(ov)
	matched := filter.Match(rateRows, matcher.BTLInput{
		Tier:        1,
		Scope:       "Standard",
		ProductType: "5 Year Fix",
		Retention:   models.RetentionNo,
	})

	calc := calculator.New(ov)
	params := &models.LoanParams{
		PropertyValue: 1200000,
		MonthlyRent:   4500,
		LoanType:      models.LoanTypeSpecificLTV,
		TargetLTV:     75,
	}

	fmt.Printf("   Matched %d products:\n", len(matched))
	for _, row := range matched {
		result := calc.CalculateBTL(row, params)
		fmt.Printf("   • %s (%s) rate %s gross £%.0f net £%.0f\n",
			row.Product, row.Scope, row.RateText,
			result.GrossLoan.Value, result.NetLoan.Value)
	}

	fmt.Println()
	fmt.Println("🎉 Demo seed completed successfully!")
}
