package extraction

import (
	"unicode/utf8"

	"github.com/jonathan/notice-extractor/internal/prompts"
	"github.com/jonathan/notice-extractor/schemas"
)

// DefaultMaxInputChars caps the document text embedded in a prompt
const DefaultMaxInputChars = 30000

// buildTextPrompt constructs the prompt for text-based extraction
func buildTextPrompt(text string) string {
	return prompts.MustRender(prompts.ExtractionFile, prompts.NoticeText, map[string]string{
		"Schema":   schemas.JobFields(),
		"Document": text,
	})
}

// buildAttachmentPrompt constructs the prompt sent alongside a PDF attachment
func buildAttachmentPrompt() string {
	return prompts.MustRender(prompts.ExtractionFile, prompts.NoticeAttachment, map[string]string{
		"Schema": schemas.JobFields(),
	})
}

// truncateChars cuts text to at most limit characters (runes).
// It reports whether anything was removed.
func truncateChars(text string, limit int) (string, bool) {
	if limit <= 0 || len(text) <= limit {
		return text, false
	}
	if utf8.RuneCountInString(text) <= limit {
		return text, false
	}

	n := 0
	for i := range text {
		if n == limit {
			return text[:i], true
		}
		n++
	}
	return text, false
}
