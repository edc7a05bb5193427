// Package main provides the entry point for the brand intelligence collection service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "brand_agent",
	Short: "Brand intelligence data collection service",
	Long:  "Brand intelligence agent that collects news sentiment, social media presence, employer reviews, and website quality for a brand and its competitor, exposed as asynchronous jobs over a REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
