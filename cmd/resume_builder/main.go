// Package main provides the entry point for the resume builder CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	configPath  string
	verbose     bool
	trace       bool
	databaseURL string
)

var rootCmd = &cobra.Command{
	Use:           "resume_builder",
	Short:         "Resume Builder CLI",
	Long:          "Resume Builder turns a YAML resume into a styled HTML/PDF resume, optionally tailored to a job posting, by drafting each section with a language model.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON or YAML config file (values can be overridden by other flags)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false, "Export OpenTelemetry spans (to stderr unless --trace-endpoint is set)")
	rootCmd.PersistentFlags().String("trace-endpoint", "", "OTLP gRPC collector address, e.g. localhost:4317")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "db-url", "", "PostgreSQL connection URL for run persistence (optional, defaults to RESUME_BUILDER_DATABASE_URL)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
