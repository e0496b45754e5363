// Package schemas validates extracted notice documents against JSON Schemas.
package schemas

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// rootField names violations that apply to the document as a whole
const rootField = "(root)"

// FieldError is one schema violation at a dotted field path such as
// "vacancies.0.count".
type FieldError struct {
	Field   string
	Rule    string // gojsonschema keyword, e.g. "required" or "invalid_type"
	Message string
}

func (fe FieldError) String() string {
	return fmt.Sprintf("%s: %s", fe.Field, fe.Message)
}

// ValidationError collects every violation found in a document
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, fe := range ve.Errors {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, fe)
	}
	return sb.String()
}

// Fields lists the distinct field paths that failed, in report order
func (ve *ValidationError) Fields() []string {
	seen := make(map[string]bool, len(ve.Errors))
	out := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		if !seen[fe.Field] {
			seen[fe.Field] = true
			out = append(out, fe.Field)
		}
	}
	return out
}

// SchemaLoadError means the schema itself could not be read or compiled
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// Schema is a compiled schema, safe for concurrent use.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// Compile parses schema content once so it can check many documents.
// name only labels load errors.
func Compile(name, content string) (*Schema, error) {
	return compile(name, gojsonschema.NewStringLoader(content))
}

func compile(name string, loader gojsonschema.JSONLoader) (*Schema, error) {
	s, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "schema does not compile", Cause: err}
	}
	return &Schema{name: name, schema: s}, nil
}

// Validate checks an already-decoded value (maps, slices, json.RawMessage)
func (s *Schema) Validate(doc any) error {
	return s.check(gojsonschema.NewGoLoader(doc))
}

// ValidateString checks raw JSON text
func (s *Schema) ValidateString(content string) error {
	return s.check(gojsonschema.NewStringLoader(content))
}

func (s *Schema) check(doc gojsonschema.JSONLoader) error {
	result, err := s.schema.Validate(doc)
	if err != nil {
		return fmt.Errorf("failed to read document for schema %s: %w", s.name, err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" || field == "(root)" {
			field = rootField
		}
		verr.Errors = append(verr.Errors, FieldError{
			Field:   field,
			Rule:    desc.Type(),
			Message: desc.Description(),
		})
	}
	return verr
}

// ValidateJSON validates a JSON file against a JSON Schema file
func ValidateJSON(schemaPath, jsonPath string) error {
	schemaAbs, err := existingFile(schemaPath, "schema")
	if err != nil {
		return err
	}
	jsonAbs, err := existingFile(jsonPath, "JSON")
	if err != nil {
		return err
	}

	s, err := compile(schemaAbs, gojsonschema.NewReferenceLoader("file://"+schemaAbs))
	if err != nil {
		return err
	}
	return s.check(gojsonschema.NewReferenceLoader("file://" + jsonAbs))
}

// ValidateJSONString validates JSON text against schema text
func ValidateJSONString(schemaContent, jsonContent string) error {
	s, err := Compile("(string schema)", schemaContent)
	if err != nil {
		return err
	}
	return s.ValidateString(jsonContent)
}

// ValidateDocument validates a decoded value against schema text
func ValidateDocument(schemaContent string, doc any) error {
	s, err := Compile("(string schema)", schemaContent)
	if err != nil {
		return err
	}
	return s.Validate(doc)
}

func existingFile(path, kind string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s path: %w", kind, err)
	}
	if _, err := os.Stat(abs); os.IsNotExist(err) {
		return "", fmt.Errorf("%s file not found: %s", kind, abs)
	}
	return abs, nil
}
