// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// CleanJSONBlock removes markdown code block wrappers from JSON responses.
// LLMs often wrap JSON in ```json ... ``` blocks even when instructed not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	// Handle ```json ... ``` blocks; ```jsonc and the like take the generic path
	if rest, ok := strings.CutPrefix(text, "```json"); ok && endsLanguageTag(rest) {
		text = rest
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	// Handle generic ``` ... ``` blocks
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip potential language identifier on first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	// Fences in the middle of prose: drop the markers, keep the rest
	if strings.Contains(text, "```") {
		text = strings.ReplaceAll(text, "```json", "")
		text = strings.ReplaceAll(text, "```", "")
		return strings.TrimSpace(text)
	}

	return text
}

// endsLanguageTag reports whether the fence tag stops where rest begins
func endsLanguageTag(rest string) bool {
	return rest == "" || strings.ContainsRune(" \t\r\n{[", rune(rest[0]))
}

// ExtractJSONObject returns the span from the first '{' to the last '}'.
// It returns "" when there is no such span.
func ExtractJSONObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return ""
	}
	return text[start : end+1]
}
