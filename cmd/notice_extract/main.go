// Package main provides the notice_extract CLI and HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "notice_extract",
	Short: "Recruitment notice PDF extractor",
	Long: "notice_extract turns recruitment notification PDFs into structured job fields. " +
		"Text PDFs are read directly, scanned PDFs go through OCR or a multimodal model.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// configPath is the optional JSON config file shared by all commands
var configPath string

// flagConfig collects configuration set on the command line. Zero values
// fall through to the environment, the config file, then the defaults.
var flagConfig struct {
	Provider string
	APIKey   string
	Model    string
	LogLevel string
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to a JSON config file")
	pf.StringVar(&flagConfig.Provider, "provider", "", "AI provider: gemini, openai or ollama (overrides AI_PROVIDER)")
	pf.StringVar(&flagConfig.APIKey, "api-key", "", "Provider API key (overrides AI_API_KEY and the provider's vendor key variable)")
	pf.StringVar(&flagConfig.Model, "model", "", "First model to try before the provider fallbacks")
	pf.StringVar(&flagConfig.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
