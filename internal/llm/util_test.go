package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	const obj = `{"data": {"title": "Junior Clerk"}}`

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "json fence", in: "```json\n" + obj + "\n```", want: obj},
		{name: "bare fence", in: "```\n" + obj + "\n```", want: obj},
		{name: "other language tag", in: "```jsonc\n" + obj + "\n```", want: obj},
		{name: "json5 tag", in: "```json5\n" + obj + "\n```", want: obj},
		{name: "json tag glued to object", in: "```json" + obj + "```", want: obj},
		{name: "json tag then space", in: "```json \n" + obj + "\n```", want: obj},
		{name: "unfenced", in: "  " + obj + "\n", want: obj},
		{name: "fence without newline", in: "```" + obj + "```", want: obj},
		{
			name: "fence after prose",
			in:   "Extracted fields:\n```json\n" + obj + "\n```",
			want: "Extracted fields:\n\n" + obj,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.in))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "object only", in: `{"warnings": []}`, want: `{"warnings": []}`},
		{
			name: "prose both sides",
			in:   "Here is the notice data: {\"data\": {\"vacancies\": [{\"total\": 12}]}} Let me know if anything is missing.",
			want: `{"data": {"vacancies": [{"total": 12}]}}`,
		},
		{
			name: "braces inside strings",
			in:   `{"qualification": "Degree in {Civil} Engineering"}`,
			want: `{"qualification": "Degree in {Civil} Engineering"}`,
		},
		{name: "empty", in: "", want: ""},
		{name: "refusal text", in: "I cannot read this document.", want: ""},
		{name: "reversed braces", in: "} nothing {", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJSONObject(tt.in))
		})
	}
}
