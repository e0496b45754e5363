// Package config provides configuration loading and validation for the CLI
// and the HTTP server.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config represents the service configuration. It can be loaded from a JSON
// file and overlaid by the environment and CLI flags. Zero values mean
// "use the default".
type Config struct {
	// AI provider
	Provider string `json:"provider,omitempty" validate:"omitempty,oneof=gemini openai ollama"`
	APIKey   string `json:"api_key,omitempty"`
	BaseURL  string `json:"base_url,omitempty" validate:"omitempty,url"`
	Model    string `json:"model,omitempty"`

	// OCR
	OCRLanguage    string `json:"ocr_language,omitempty"`
	OCRDPI         int    `json:"ocr_dpi,omitempty" validate:"omitempty,min=72,max=1200"`
	OCRMaxPages    int    `json:"ocr_max_pages,omitempty" validate:"gte=0"`
	PdftoppmPath   string `json:"pdftoppm_path,omitempty"`
	TessdataPrefix string `json:"tessdata_prefix,omitempty"`

	// Extraction
	MaxInputChars        int    `json:"max_input_chars,omitempty" validate:"gte=0"`
	AllowOCRTextFallback bool   `json:"allow_ocr_text_fallback,omitempty"`
	WarnOnTruncation     bool   `json:"warn_on_truncation,omitempty"`
	ExtractTimeout       string `json:"extract_timeout,omitempty" validate:"omitempty,go_duration"`

	// Server
	Port              int   `json:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	MaxUploadBytes    int64 `json:"max_upload_bytes,omitempty" validate:"gte=0"`
	MaxConcurrentRuns int   `json:"max_concurrent_runs,omitempty" validate:"gte=0"`

	// Logging
	LogLevel  string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	LogFormat string `json:"log_format,omitempty" validate:"omitempty,oneof=text json"`
}

// Defaults returns the built-in configuration
func Defaults() Config {
	return Config{
		Provider:          "gemini",
		OCRLanguage:       "eng",
		OCRDPI:            300,
		PdftoppmPath:      "pdftoppm",
		MaxInputChars:     30000,
		Port:              8080,
		MaxUploadBytes:    20 << 20,
		MaxConcurrentRuns: 4,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		return name
	})
	_ = v.RegisterValidation("go_duration", func(fl validator.FieldLevel) bool {
		d, err := time.ParseDuration(fl.Field().String())
		return err == nil && d >= 0
	})
	return v
}

// Validate checks that the configuration has valid values.
// Required values (such as the API key) are checked by the commands that
// need them, after merging.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("config error: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("'%s' %s", fe.Field(), describeTag(fe)))
	}
	return fmt.Errorf("config error: %s", strings.Join(msgs, "; "))
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return "must be one of: " + fe.Param()
	case "url":
		return "must be a valid URL"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "go_duration":
		return "must be a duration such as 90s or 2m"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

// Timeout returns ExtractTimeout as a duration; zero when unset.
func (c *Config) Timeout() time.Duration {
	if c.ExtractTimeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.ExtractTimeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from
// defaults. Earlier layers win: call it on the most specific layer.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	mergeString(&result.Provider, defaults.Provider)
	mergeString(&result.APIKey, defaults.APIKey)
	mergeString(&result.BaseURL, defaults.BaseURL)
	mergeString(&result.Model, defaults.Model)
	mergeString(&result.OCRLanguage, defaults.OCRLanguage)
	mergeString(&result.PdftoppmPath, defaults.PdftoppmPath)
	mergeString(&result.TessdataPrefix, defaults.TessdataPrefix)
	mergeString(&result.ExtractTimeout, defaults.ExtractTimeout)
	mergeString(&result.LogLevel, defaults.LogLevel)
	mergeString(&result.LogFormat, defaults.LogFormat)

	// Numeric fields: use default if zero
	if result.OCRDPI == 0 {
		result.OCRDPI = defaults.OCRDPI
	}
	if result.OCRMaxPages == 0 {
		result.OCRMaxPages = defaults.OCRMaxPages
	}
	if result.MaxInputChars == 0 {
		result.MaxInputChars = defaults.MaxInputChars
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxUploadBytes == 0 {
		result.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if result.MaxConcurrentRuns == 0 {
		result.MaxConcurrentRuns = defaults.MaxConcurrentRuns
	}

	// Bool fields: an opt-in anywhere turns the switch on
	result.AllowOCRTextFallback = result.AllowOCRTextFallback || defaults.AllowOCRTextFallback
	result.WarnOnTruncation = result.WarnOnTruncation || defaults.WarnOnTruncation

	return result
}

func mergeString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}
