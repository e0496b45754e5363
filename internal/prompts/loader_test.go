package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_NoticePrompts(t *testing.T) {
	tests := []struct {
		key          string
		placeholders []string
		mentions     []string
	}{
		{
			key:          NoticeText,
			placeholders: []string{"Schema", "Document"},
			mentions:     []string{"recruitment notifications", "fieldConfidence", "warnings", "exactly as printed"},
		},
		{
			key:          NoticeAttachment,
			placeholders: []string{"Schema"},
			mentions:     []string{"attached PDF", "fieldConfidence", "warnings", "poor-quality scan"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			prompt, err := Get(ExtractionFile, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.placeholders, Placeholders(prompt))
			for _, m := range tt.mentions {
				assert.Contains(t, prompt, m)
			}
		})
	}
}

func TestGet_Errors(t *testing.T) {
	_, err := Get("nonexistent.json", NoticeText)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt file nonexistent.json not found")

	_, err = Get(ExtractionFile, "extract-resume")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `prompt key "extract-resume" not found`)
}

func TestGet_ReturnsSameTemplate(t *testing.T) {
	first, err := Get(ExtractionFile, NoticeText)
	require.NoError(t, err)
	second, err := Get(ExtractionFile, NoticeText)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRender(t *testing.T) {
	out, err := Render(ExtractionFile, NoticeText, map[string]string{
		"Schema":   `{"type": "object"}`,
		"Document": "Advt. No. 03/2026: 45 posts of Junior Assistant",
		"Unused":   "ignored",
	})
	require.NoError(t, err)
	assert.Contains(t, out, `{"type": "object"}`)
	assert.Contains(t, out, "Advt. No. 03/2026")
	assert.Empty(t, Placeholders(out))
}

func TestRender_MissingValue(t *testing.T) {
	_, err := Render(ExtractionFile, NoticeText, map[string]string{"Schema": "{}"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no value for Document")
}

func TestMustRender_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustRender(ExtractionFile, NoticeAttachment, nil)
	})
	assert.NotPanics(t, func() {
		MustRender(ExtractionFile, NoticeAttachment, map[string]string{"Schema": "{}"})
	})
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, Placeholders("{{.A}} {{.B}} {{.A}}"))
	assert.Empty(t, Placeholders("no placeholders, {{ .Spaced }} or {{Bare}}"))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]string
		want     string
	}{
		{
			name:     "fills placeholders",
			template: "Notice: {{.Title}} ({{.Org}})",
			data:     map[string]string{"Title": "Staff Nurse", "Org": "AIIMS"},
			want:     "Notice: Staff Nurse (AIIMS)",
		},
		{
			name:     "keeps unknown placeholders",
			template: "{{.Title}} {{.Missing}}",
			data:     map[string]string{"Title": "Clerk"},
			want:     "Clerk {{.Missing}}",
		},
		{
			name:     "values are not re-expanded",
			template: "schema={{.Schema}} doc={{.Document}}",
			data:     map[string]string{"Schema": "S", "Document": "mentions {{.Schema}} literally"},
			want:     "schema=S doc=mentions {{.Schema}} literally",
		},
		{
			name:     "nil data",
			template: "plain text",
			want:     "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.template, tt.data))
		})
	}
}
