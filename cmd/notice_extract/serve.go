package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/notice-extractor/internal/config"
	"github.com/jonathan/notice-extractor/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort          int
	serveMaxConcurrent int
	serveAllowOCRText  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that accepts PDF uploads on POST /api/extract and returns the PipelineResult.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080, or PORT)")
	serveCmd.Flags().IntVar(&serveMaxConcurrent, "max-concurrent", 0, "Maximum concurrent pipeline runs (default 4)")
	serveCmd.Flags().BoolVar(&serveAllowOCRText, "allow-ocr-text", false, "Send OCR text to text-only providers for scanned PDFs")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(config.Config{
		Port:                 servePort,
		MaxConcurrentRuns:    serveMaxConcurrent,
		AllowOCRTextFallback: serveAllowOCRText,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	srv := server.New(server.Config{
		Port:              cfg.Port,
		MaxUploadBytes:    cfg.MaxUploadBytes,
		MaxConcurrentRuns: cfg.MaxConcurrentRuns,
	}, a.orchestrator(nil), a.providerInfo(), a.logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to run server: %w", err)
	}
	return nil
}
