package config

import (
	"os"
	"strconv"
	"strings"
)

// Getenv looks up an environment variable; os.Getenv in production
type Getenv func(key string) string

// vendorKeyEnv names the provider-specific API key variable consulted when
// neither AI_API_KEY nor another layer supplies a key
var vendorKeyEnv = map[string]string{
	"gemini": "GEMINI_API_KEY",
	"openai": "OPENAI_API_KEY",
}

// FromEnv builds a Config layer from environment variables. Unset or
// unparsable variables leave the field at its zero value. Vendor key
// variables are not read here; Resolve picks one once the provider is known.
func FromEnv(getenv Getenv) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	e := env{getenv: getenv}

	return Config{
		Provider: e.str("AI_PROVIDER"),
		APIKey:   e.str("AI_API_KEY"),
		BaseURL:  e.str("AI_BASE_URL"),
		Model:    e.str("AI_MODEL"),

		OCRLanguage:    e.str("OCR_LANGUAGE"),
		OCRDPI:         e.int("OCR_DPI"),
		OCRMaxPages:    e.int("OCR_MAX_PAGES"),
		PdftoppmPath:   e.str("PDFTOPPM_PATH"),
		TessdataPrefix: e.str("TESSDATA_PREFIX"),

		MaxInputChars:        e.int("EXTRACT_MAX_INPUT_CHARS"),
		AllowOCRTextFallback: e.bool("EXTRACT_ALLOW_OCR_TEXT_FALLBACK"),
		WarnOnTruncation:     e.bool("EXTRACT_WARN_ON_TRUNCATION"),
		ExtractTimeout:       e.str("EXTRACT_TIMEOUT"),

		Port:              e.int("PORT"),
		MaxUploadBytes:    int64(e.int("MAX_UPLOAD_BYTES")),
		MaxConcurrentRuns: e.int("MAX_CONCURRENT_RUNS"),

		LogLevel:  e.str("LOG_LEVEL"),
		LogFormat: e.str("LOG_FORMAT"),
	}
}

type env struct {
	getenv Getenv
}

// str returns the first non-empty value among keys
func (e env) str(keys ...string) string {
	for _, k := range keys {
		if v := e.getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func (e env) int(key string) int {
	if value := e.getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return 0
}

func (e env) bool(key string) bool {
	if value := e.getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return false
}

// Resolve layers flags over the environment over the config file over the
// built-in defaults, then validates the result. file may be nil. When no
// layer sets an API key, the vendor variable of the resolved provider
// (GEMINI_API_KEY or OPENAI_API_KEY) is used.
func Resolve(flags Config, file *Config, getenv Getenv) (Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	merged := flags.MergeWithDefaults(FromEnv(getenv))
	if file != nil {
		merged = merged.MergeWithDefaults(*file)
	}
	merged = merged.MergeWithDefaults(Defaults())

	if merged.APIKey == "" {
		if key, ok := vendorKeyEnv[strings.ToLower(strings.TrimSpace(merged.Provider))]; ok {
			merged.APIKey = getenv(key)
		}
	}

	if err := merged.Validate(); err != nil {
		return Config{}, err
	}
	return merged, nil
}
