//go:build ignore
// +build ignore

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	fmt.Println("=== Database Initialization Script ===")
	fmt.Println()

	if err := godotenv.Load(); err != nil {
		fmt.Printf("⚠️  Warning: Could not load .env file: %v\n", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Println("❌ DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Connect to the default 'postgres' database first so we can create ours
	postgresURL := strings.Replace(databaseURL, "/broker_quotes", "/postgres", 1)
	fmt.Println("📡 Connecting to PostgreSQL server...")

	adminConn, err := pgx.Connect(ctx, postgresURL)
	if err != nil {
		fmt.Printf("❌ Failed to connect to PostgreSQL: %v\n", err)
		os.Exit(1)
	}

	var exists bool
	err = adminConn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = 'broker_quotes')").Scan(&exists)
	if err != nil {
		fmt.Printf("❌ Failed to check database existence: %v\n", err)
		adminConn.Close(ctx)
		os.Exit(1)
	}

	if !exists {
		fmt.Println("📦 Creating 'broker_quotes' database...")
		_, err = adminConn.Exec(ctx, "CREATE DATABASE broker_quotes")
		if err != nil {
			fmt.Printf("❌ Failed to create database: %v\n", err)
			adminConn.Close(ctx)
			os.Exit(1)
		}
		fmt.Println("✅ Database 'broker_quotes' created!")
	} else {
		fmt.Println("✅ Database 'broker_quotes' already exists")
	}
	adminConn.Close(ctx)

	fmt.Println("📡 Connecting to broker_quotes database...")
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		fmt.Printf("❌ Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	fmt.Println("✅ Connected to database successfully!")
	fmt.Println()

	fmt.Println("📖 Reading SQL schema file...")
	sqlBytes, err := os.ReadFile("scripts/init_database.sql")
	if err != nil {
		fmt.Printf("❌ Failed to read SQL file: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ SQL file loaded successfully!")
	fmt.Println()

	fmt.Println("🚀 Executing database schema...")
	_, err = conn.Exec(ctx, string(sqlBytes))
	if err != nil {
		fmt.Printf("❌ Failed to execute SQL: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Database schema executed successfully!")
	fmt.Println()

	fmt.Println("🔍 Verifying database setup...")

	for _, table := range []string{"rate_rows", "criteria_rows", "app_settings", "quotes"} {
		var count int
		err = conn.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
		if err != nil {
			fmt.Printf("⚠️  Warning: Could not count rows in %s: %v\n", table, err)
		} else {
			fmt.Printf("   📦 %s: %d rows\n", table, count)
		}
	}

	rows, err := conn.Query(ctx, "SELECT DISTINCT set_key FROM rate_rows ORDER BY set_key")
	if err != nil {
		fmt.Printf("⚠️  Warning: Could not fetch rate sets: %v\n", err)
	} else {
		defer rows.Close()
		fmt.Println()
		fmt.Println("   📋 Loaded rate sets:")
		fmt.Println("   ─────────────────────────────────────────────────────────")
		for rows.Next() {
			var setKey string
			if err := rows.Scan(&setKey); err == nil {
				fmt.Printf("   • %s\n", setKey)
			}
		}
		fmt.Println("   ─────────────────────────────────────────────────────────")
	}

	fmt.Println()
	fmt.Println("🎉 Database initialization completed successfully!")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Seed demo data: go run scripts/seed_demo.go")
	fmt.Println("  2. Start the server: go run cmd/server/main.go")
}
