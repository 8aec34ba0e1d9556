// Card ingest Lambda entry point: processes uploaded rate and criteria cards
package main

import (
	"github.com/aws/aws-lambda-go/lambda"

	"broker-quote-engine/internal/handlers"
	"broker-quote-engine/internal/utils"
)

func main() {
	// Initialize logger
	_ = utils.InitLogger("info")
	defer utils.Sync()

	// Create handler
	handler, err := handlers.NewCardProcessorHandler()
	if err != nil {
		panic("Failed to create handler: " + err.Error())
	}
	defer handler.Close()

	// Start Lambda
	lambda.Start(handler.Handle)
}
