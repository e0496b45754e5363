// Package prompts holds the model prompt templates. Templates live in
// embedded JSON files keyed by name and use {{.Key}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// ExtractionFile holds the notice extraction prompts
const ExtractionFile = "extraction.json"

// Prompt keys in ExtractionFile
const (
	// NoticeText takes Schema and Document
	NoticeText = "extract-notice-text"
	// NoticeAttachment takes Schema; the document travels as an attachment
	NoticeAttachment = "extract-notice-attachment"
)

//go:embed *.json
var promptFiles embed.FS

var placeholderRe = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

// library parses every embedded prompt file once.
var library = sync.OnceValues(func() (map[string]map[string]string, error) {
	names, err := fs.Glob(promptFiles, "*.json")
	if err != nil {
		return nil, err
	}

	lib := make(map[string]map[string]string, len(names))
	for _, name := range names {
		data, err := promptFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", name, err)
		}
		var prompts map[string]string
		if err := json.Unmarshal(data, &prompts); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", name, err)
		}
		lib[name] = prompts
	}
	return lib, nil
})

// Get returns the raw template stored under key in filename.
func Get(filename, key string) (string, error) {
	lib, err := library()
	if err != nil {
		return "", err
	}

	prompts, ok := lib[filename]
	if !ok {
		return "", fmt.Errorf("prompt file %s not found", filename)
	}
	prompt, ok := prompts[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// Placeholders lists the distinct placeholder names in template in order
// of first appearance.
func Placeholders(template string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Render loads a template and fills it from data. Every placeholder in the
// template needs a value; extra entries in data are ignored.
func Render(filename, key string, data map[string]string) (string, error) {
	template, err := Get(filename, key)
	if err != nil {
		return "", err
	}

	var missing []string
	for _, name := range Placeholders(template) {
		if _, ok := data[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("prompt %q in %s has no value for %s", key, filename, strings.Join(missing, ", "))
	}
	return Format(template, data), nil
}

// MustRender is Render for the built-in prompts, which are fixed at
// compile time. It panics on error.
func MustRender(filename, key string, data map[string]string) string {
	out, err := Render(filename, key, data)
	if err != nil {
		panic(fmt.Sprintf("failed to render prompt: %v", err))
	}
	return out
}

// Format replaces {{.Key}} placeholders with values from data in a single
// pass, so placeholder-like text inside a value is left untouched.
// Placeholders without a value are kept.
func Format(template string, data map[string]string) string {
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, key := range keys {
		pairs = append(pairs, "{{."+key+"}}", data[key])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
