package extraction

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/jonathan/notice-extractor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponse_ProseAroundObject(t *testing.T) {
	raw := "Sure! Here is the extracted notice:\n" +
		`{"data": {"title": "Junior Clerk", "vacancies": [{"post_name": "Junior Clerk", "total": 25}]},` +
		` "warnings": ["exam_date not found"], "fieldConfidence": {"title": 0.9}}` +
		"\nLet me know if you need anything else."

	got, err := ParseResponse(raw)
	require.NoError(t, err)

	assert.Equal(t, "Junior Clerk", got.Data.Title)
	require.Len(t, got.Data.Vacancies, 1)
	assert.Equal(t, types.FlexString("25"), got.Data.Vacancies[0].Total)
	assert.Equal(t, []string{"exam_date not found"}, got.Warnings)
	assert.Equal(t, map[string]float64{"title": 0.9}, got.FieldConfidence)
}

func TestParseResponse_MarkdownFence(t *testing.T) {
	raw := "```json\n{\"data\": {\"organization\": \"Public Service Commission\"}}\n```"

	got, err := ParseResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Public Service Commission", got.Data.Organization)
}

func TestParseResponse_FatalWhenNoObject(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "plain prose", raw: "I could not read this document."},
		{name: "empty", raw: ""},
		{name: "malformed object", raw: `{"data": {"title": "x",}`},
		{name: "two objects", raw: `{"data": {}} and also {"data": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponse(tt.raw)
			require.Error(t, err)

			var parseErr *ParseError
			assert.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestParseResponse_PartialNeverFails(t *testing.T) {
	got, err := ParseResponse(`{"data": {"title": "Constable"}}`)
	require.NoError(t, err)

	assert.Equal(t, "Constable", got.Data.Title)
	assert.NotNil(t, got.Data.ApplicationFees)
	assert.NotNil(t, got.Data.Vacancies)
	assert.NotNil(t, got.Data.SelectionStages)
	assert.NotNil(t, got.Data.Links)
	assert.NotNil(t, got.FieldConfidence)
	assert.NotNil(t, got.Warnings)

	out, err := json.Marshal(got.Data)
	require.NoError(t, err)
	var generic map[string]any
	require.NoError(t, json.Unmarshal(out, &generic))
	for _, key := range types.TopLevelKeys {
		assert.Contains(t, generic, key)
	}
}

func TestParseResponse_EmptyObject(t *testing.T) {
	got, err := ParseResponse(`{}`)
	require.NoError(t, err)
	assert.Equal(t, types.EmptyJobFields(), got.Data)
	assert.Empty(t, got.Warnings)
}

func TestParseResponse_MalformedSectionDegrades(t *testing.T) {
	raw := `{"data": {"title": "Nurse", "vacancies": "see annexure", "selection_stages": ["Written", "Interview"]}}`

	got, err := ParseResponse(raw)
	require.NoError(t, err)

	assert.Equal(t, "Nurse", got.Data.Title)
	assert.Equal(t, []types.VacancyRow{}, got.Data.Vacancies)
	assert.Equal(t, []string{"Written", "Interview"}, got.Data.SelectionStages)

	joined := strings.Join(got.Warnings, "\n")
	assert.Contains(t, joined, "schema: vacancies")
	assert.Contains(t, joined, "field vacancies ignored")
}

func TestDecodeJobFields_PartialSectionDiscarded(t *testing.T) {
	data := map[string]json.RawMessage{
		"title":           json.RawMessage(`"Staff Nurse"`),
		"vacancies":       json.RawMessage(`[{"post_name": "Staff Nurse", "total": 12}, 5]`),
		"important_dates": json.RawMessage(`{"application_end": "30 November 2026"}`),
	}

	fields, warnings := decodeJobFields(data)

	assert.Equal(t, "Staff Nurse", fields.Title)
	assert.Equal(t, "30 November 2026", fields.ImportantDates.ApplicationEnd)
	assert.Empty(t, fields.Vacancies, "a section that fails to decode keeps none of its rows")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "field vacancies ignored")
}

func TestParseResponse_DataNotObject(t *testing.T) {
	got, err := ParseResponse(`{"data": "nothing found"}`)
	require.NoError(t, err)
	assert.Equal(t, types.EmptyJobFields(), got.Data)
	assert.Contains(t, got.Warnings, `"data" was not an object; all fields left empty`)
}

func TestParseResponse_TopLevelFieldsWithoutEnvelope(t *testing.T) {
	got, err := ParseResponse(`{"title": "Lecturer", "qualification": "Master's degree"}`)
	require.NoError(t, err)
	assert.Equal(t, "Lecturer", got.Data.Title)
	assert.Equal(t, "Master's degree", got.Data.Qualification)
	assert.NotEmpty(t, got.Warnings)
}

func TestParseResponse_FieldConfidence(t *testing.T) {
	raw := `{"data": {}, "field_confidence": {"title": 1.7, "vacancies": -0.2, "exam_date": "0.4", "links": "high"}}`

	got, err := ParseResponse(raw)
	require.NoError(t, err)

	assert.Equal(t, map[string]float64{"title": 1, "vacancies": 0, "exam_date": 0.4}, got.FieldConfidence)
	assert.Contains(t, got.Warnings, "fieldConfidence.links is not a number; ignored")
}

func TestParseResponse_WarningShapes(t *testing.T) {
	got, err := ParseResponse(`{"data": {}, "warnings": "fee table unreadable"}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"fee table unreadable"}, got.Warnings)

	got, err = ParseResponse(`{"data": {}, "warnings": ["a", "", {"field": "exam_date"}]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", `{"field": "exam_date"}`}, got.Warnings)
}

func TestParseResponse_InvalidLinkURL(t *testing.T) {
	raw := `{"data": {"links": [{"label": "Apply", "url": "https://recruitment.example.gov/apply"}, {"label": "Official site", "url": "see notice"}]}}`

	got, err := ParseResponse(raw)
	require.NoError(t, err)

	require.Len(t, got.Data.Links, 2, "invalid links are kept for review")
	assert.Equal(t, []string{`links[1].url "see notice" is not a valid URL`}, got.Warnings)
}
