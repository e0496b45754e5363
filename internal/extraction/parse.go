package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/notice-extractor/internal/llm"
	"github.com/jonathan/notice-extractor/internal/schemas"
	"github.com/jonathan/notice-extractor/internal/types"
	jobschemas "github.com/jonathan/notice-extractor/schemas"
)

var linkValidator = validator.New()

var jobFieldsSchema = sync.OnceValues(func() (*schemas.Schema, error) {
	return schemas.Compile(jobschemas.JobFieldsFile, jobschemas.JobFields())
})

// ParseResponse turns a raw model response into ExtractedData.
//
// Markdown fences are stripped and the span from the first '{' to the last
// '}' is parsed strictly; failure there is a *ParseError. Everything after
// that degrades per field: missing or malformed sections become empty and
// are reported in Warnings.
func ParseResponse(raw string) (*types.ExtractedData, error) {
	span := llm.ExtractJSONObject(llm.CleanJSONBlock(raw))
	if span == "" {
		return nil, &ParseError{Message: "no JSON object found in model response"}
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(span), &envelope); err != nil {
		return nil, &ParseError{Message: "failed to parse JSON response", Cause: err}
	}

	var warnings []string
	warnings = append(warnings, parseWarnings(envelope["warnings"])...)

	dataObj, dataWarnings := locateData(envelope)
	warnings = append(warnings, dataWarnings...)
	warnings = append(warnings, schemaWarnings(dataObj)...)

	fields, decodeWarnings := decodeJobFields(dataObj)
	warnings = append(warnings, decodeWarnings...)
	warnings = append(warnings, linkWarnings(fields.Links)...)

	confRaw, ok := envelope["fieldConfidence"]
	if !ok {
		confRaw = envelope["field_confidence"]
	}
	confidence, confWarnings := parseFieldConfidence(confRaw)
	warnings = append(warnings, confWarnings...)

	if warnings == nil {
		warnings = []string{}
	}
	return &types.ExtractedData{
		Data:            fields,
		FieldConfidence: confidence,
		Warnings:        warnings,
	}, nil
}

// locateData returns the object holding the notice fields. Models that
// skip the envelope and return the fields at top level are accepted.
func locateData(envelope map[string]json.RawMessage) (map[string]json.RawMessage, []string) {
	raw, ok := envelope["data"]
	if !ok {
		for _, key := range types.TopLevelKeys {
			if _, found := envelope[key]; found {
				return envelope, []string{"response had no \"data\" envelope; read fields from the top level"}
			}
		}
		return map[string]json.RawMessage{}, nil
	}

	if isNull(raw) {
		return map[string]json.RawMessage{}, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return map[string]json.RawMessage{}, []string{"\"data\" was not an object; all fields left empty"}
	}
	return obj, nil
}

// schemaWarnings reports schema violations in the raw data without failing.
func schemaWarnings(dataObj map[string]json.RawMessage) []string {
	schema, err := jobFieldsSchema()
	if err != nil {
		return []string{fmt.Sprintf("schema check skipped: %v", err)}
	}
	err = schema.Validate(dataObj)
	if err == nil {
		return nil
	}

	var validationErr *schemas.ValidationError
	if !errors.As(err, &validationErr) {
		return []string{fmt.Sprintf("schema check skipped: %v", err)}
	}

	out := make([]string, 0, len(validationErr.Errors))
	for _, fe := range validationErr.Errors {
		out = append(out, "schema: "+fe.String())
	}
	return out
}

// decodeJobFields decodes each top-level key on its own so one malformed
// section cannot take the rest of the document down with it.
func decodeJobFields(dataObj map[string]json.RawMessage) (types.JobFields, []string) {
	var (
		fields   types.JobFields
		warnings []string
	)

	keys := make([]string, 0, len(dataObj))
	for k := range dataObj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		one, err := json.Marshal(map[string]json.RawMessage{key: dataObj[key]})
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("field %s ignored: %v", key, err))
			continue
		}

		// Only this key's field changes, and it is still zero in fields.
		next := fields
		if err := json.Unmarshal(one, &next); err != nil {
			warnings = append(warnings, fmt.Sprintf("field %s ignored: %v", key, err))
			continue
		}
		fields = next
	}

	fields.Normalize()
	return fields, warnings
}

func linkWarnings(links []types.Link) []string {
	var out []string
	for i, link := range links {
		if err := linkValidator.Struct(link); err != nil {
			out = append(out, fmt.Sprintf("links[%d].url %q is not a valid URL", i, link.URL))
		}
	}
	return out
}

// parseWarnings accepts an array of strings, a single string, or an array
// of mixed values (non-strings are rendered as JSON).
func parseWarnings(raw json.RawMessage) []string {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		var single string
		if json.Unmarshal(raw, &single) == nil && strings.TrimSpace(single) != "" {
			return []string{strings.TrimSpace(single)}
		}
		return nil
	}

	out := make([]string, 0, len(list))
	for _, item := range list {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
			continue
		}
		out = append(out, string(bytes.TrimSpace(item)))
	}
	return out
}

// parseFieldConfidence reads the per-field confidence map. Values are
// clamped to [0,1]; numeric strings are accepted; anything else is dropped.
func parseFieldConfidence(raw json.RawMessage) (map[string]float64, []string) {
	out := map[string]float64{}
	if len(raw) == 0 || isNull(raw) {
		return out, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return out, []string{"fieldConfidence was not an object; ignored"}
	}

	var warnings []string
	for key, v := range obj {
		var f float64
		if err := json.Unmarshal(v, &f); err != nil {
			var s string
			if json.Unmarshal(v, &s) != nil {
				warnings = append(warnings, fmt.Sprintf("fieldConfidence.%s is not a number; ignored", key))
				continue
			}
			parsed, perr := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if perr != nil {
				warnings = append(warnings, fmt.Sprintf("fieldConfidence.%s is not a number; ignored", key))
				continue
			}
			f = parsed
		}
		out[key] = clamp01(f)
	}
	sort.Strings(warnings)
	return out, warnings
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
