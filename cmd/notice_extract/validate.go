package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jonathan/notice-extractor/internal/schemas"
	jobschemas "github.com/jonathan/notice-extractor/schemas"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <result.json>",
	Short: "Validate extracted job fields against the job_fields schema",
	Long: "Validates a saved PipelineResult, or a bare job fields object, against job_fields.schema.json. " +
		"The embedded schema is used unless --schema is given.",
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var validateSchemaPath string

func init() {
	validateCmd.Flags().StringVar(&validateSchemaPath, "schema", "", "Path to an alternative schema file")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(content, &doc); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	// A PipelineResult wraps the fields in "data"
	if data, ok := doc["data"].(map[string]any); ok {
		doc = data
	} else if _, ok := doc["success"]; ok {
		return fmt.Errorf("result has no data to validate")
	}

	schema := jobschemas.JobFields()
	if validateSchemaPath != "" {
		raw, err := os.ReadFile(validateSchemaPath)
		if err != nil {
			return fmt.Errorf("failed to read schema file: %w", err)
		}
		schema = string(raw)
	}

	if err := schemas.ValidateDocument(schema, doc); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			return fmt.Errorf("job fields do not validate against schema: %w", err)
		}
		return fmt.Errorf("failed to validate: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Valid")
	return nil
}
