package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/notice-extractor/internal/config"
	"github.com/jonathan/notice-extractor/internal/fetch"
	"github.com/jonathan/notice-extractor/internal/observability"
	"github.com/jonathan/notice-extractor/internal/pipeline"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file.pdf|url>",
	Short: "Extract job fields from a recruitment notice PDF",
	Long: "Runs the extraction pipeline on one PDF and prints the PipelineResult JSON. " +
		"The PDF may be a local file or an http(s) URL; a notice page URL is followed to the PDF it links. " +
		"The command exits non-zero when the pipeline fails; the JSON still records the failing stage.",
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

var (
	extractOutput        string
	extractVerbose       bool
	extractTimeout       string
	extractAllowOCRText  bool
	extractWarnTruncated bool
)

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Write the result JSON to this file instead of stdout")
	extractCmd.Flags().BoolVarP(&extractVerbose, "verbose", "v", false, "Print stage progress and a summary to stderr")
	extractCmd.Flags().StringVar(&extractTimeout, "timeout", "", "Abort the run after this duration, e.g. 90s")
	extractCmd.Flags().BoolVar(&extractAllowOCRText, "allow-ocr-text", false, "Send OCR text to text-only providers for scanned PDFs")
	extractCmd.Flags().BoolVar(&extractWarnTruncated, "warn-truncation", false, "Add a warning when the notice text is truncated")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(config.Config{
		ExtractTimeout:       extractTimeout,
		AllowOCRTextFallback: extractAllowOCRText,
		WarnOnTruncation:     extractWarnTruncated,
	})
	if err != nil {
		return err
	}

	buf, mimeType, err := readNotice(cmd.Context(), args[0], cfg.MaxUploadBytes)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	stderr := cmd.ErrOrStderr()
	var onProgress pipeline.ProgressCallback
	if extractVerbose {
		onProgress = func(ev pipeline.ProgressEvent) {
			_, _ = fmt.Fprintf(stderr, "→ %-9s %s\n", ev.Stage, ev.Message)
		}
	}

	res := a.orchestrator(onProgress).Run(a.withLogger(cmd.Context()), buf, mimeType)

	jsonBytes, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if extractOutput != "" {
		if err := os.WriteFile(extractOutput, append(jsonBytes, '\n'), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		_, _ = fmt.Fprintf(stderr, "Output: %s\n", extractOutput)
	} else {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(jsonBytes))
	}

	if extractVerbose {
		observability.NewPrinter(stderr).PrintResult(&res)
	}

	if !res.Success {
		return fmt.Errorf("extraction %s", pipeline.Describe(res))
	}
	return nil
}

// readNotice loads a PDF from a local path or an http(s) URL
func readNotice(ctx context.Context, source string, maxBytes int64) ([]byte, string, error) {
	if fetch.IsURL(source) {
		doc, err := fetch.PDF(ctx, source, &fetch.Options{MaxBytes: maxBytes})
		if err != nil {
			return nil, "", fmt.Errorf("failed to download notice: %w", err)
		}
		return doc.Data, pipeline.MIMETypePDF, nil
	}

	buf, err := os.ReadFile(source)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read input file: %w", err)
	}
	return buf, mimeTypeOf(source, buf), nil
}

// mimeTypeOf trusts a .pdf extension and sniffs anything else
func mimeTypeOf(path string, buf []byte) string {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return pipeline.MIMETypePDF
	}
	return http.DetectContentType(buf)
}
