package main

import (
	"fmt"

	"github.com/jonathan/notice-extractor/internal/config"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Show the model fallback chain for the configured provider",
	Long:  "Prints the models the extractor tries, in order, for the resolved provider configuration.",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(config.Config{})
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	info := a.providerInfo()
	mode := "text only"
	if info.Multimodal {
		mode = "multimodal"
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "provider: %s (%s)\n", info.Name, mode)
	for i, m := range info.Models {
		_, _ = fmt.Fprintf(out, "%d. %s\n", i+1, m)
	}
	return nil
}
