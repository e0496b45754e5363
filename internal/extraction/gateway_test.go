package extraction

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonathan/notice-extractor/internal/llm"
	"github.com/jonathan/notice-extractor/schemas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProvider struct {
	multimodal bool
	models     []string
	response   string
	errs       map[string]error
	requests   []llm.Request
}

func (p *recordingProvider) Name() llm.ProviderName    { return "stub" }
func (p *recordingProvider) Models() []string          { return p.models }
func (p *recordingProvider) SupportsAttachments() bool { return p.multimodal }
func (p *recordingProvider) Close() error              { return nil }

func (p *recordingProvider) Generate(_ context.Context, model string, req llm.Request) (string, error) {
	p.requests = append(p.requests, req)
	if err, ok := p.errs[model]; ok {
		return "", err
	}
	return p.response, nil
}

const validResponse = `{"data": {"title": "Staff Nurse"}, "warnings": [], "fieldConfidence": {"title": 0.8}}`

func TestExtractText_EmbedsSchemaAndDocument(t *testing.T) {
	p := &recordingProvider{models: []string{"m1"}, response: validResponse}
	g := NewGateway(p, Options{})

	data, err := g.ExtractText(context.Background(), "Recruitment of Staff Nurse, last date 30-11-2026")
	require.NoError(t, err)
	assert.Equal(t, "Staff Nurse", data.Data.Title)
	assert.Equal(t, "m1", data.Model)

	require.Len(t, p.requests, 1)
	req := p.requests[0]
	assert.Nil(t, req.Attachment)
	assert.True(t, req.JSON)
	assert.Contains(t, req.Prompt, schemas.JobFields())
	assert.Contains(t, req.Prompt, "last date 30-11-2026")
	assert.NotContains(t, req.Prompt, "{{.")
}

func TestExtractText_TruncatesSilentlyByDefault(t *testing.T) {
	p := &recordingProvider{models: []string{"m1"}, response: validResponse}
	g := NewGateway(p, Options{MaxInputChars: 10})

	data, err := g.ExtractText(context.Background(), "0123456789OVERFLOW")
	require.NoError(t, err)

	assert.Contains(t, p.requests[0].Prompt, "0123456789")
	assert.NotContains(t, p.requests[0].Prompt, "OVERFLOW")
	assert.NotContains(t, data.Warnings, TruncationWarning)
}

func TestExtractText_WarnOnTruncation(t *testing.T) {
	p := &recordingProvider{models: []string{"m1"}, response: validResponse}
	g := NewGateway(p, Options{MaxInputChars: 10, WarnOnTruncation: true})

	data, err := g.ExtractText(context.Background(), "0123456789OVERFLOW")
	require.NoError(t, err)
	assert.Contains(t, data.Warnings, TruncationWarning)

	data, err = g.ExtractText(context.Background(), "short")
	require.NoError(t, err)
	assert.NotContains(t, data.Warnings, TruncationWarning)
}

func TestExtractText_DefaultCap(t *testing.T) {
	p := &recordingProvider{models: []string{"m1"}, response: validResponse}
	g := NewGateway(p, Options{})

	long := strings.Repeat("a", DefaultMaxInputChars) + "TAIL"
	_, err := g.ExtractText(context.Background(), long)
	require.NoError(t, err)
	assert.NotContains(t, p.requests[0].Prompt, "TAIL")
}

func TestExtractText_AllModelsFail(t *testing.T) {
	last := errors.New("quota exhausted")
	p := &recordingProvider{
		models: []string{"m1", "m2"},
		errs: map[string]error{
			"m1": errors.New("unavailable"),
			"m2": last,
		},
	}
	g := NewGateway(p, Options{})

	_, err := g.ExtractText(context.Background(), "text")
	require.Error(t, err)

	var apiErr *APICallError
	require.ErrorAs(t, err, &apiErr)
	assert.ErrorIs(t, err, last)
	assert.Len(t, p.requests, 2)
}

func TestExtractText_ParseFailureIsFatal(t *testing.T) {
	p := &recordingProvider{models: []string{"m1", "m2"}, response: "I am unable to help with that."}
	g := NewGateway(p, Options{})

	_, err := g.ExtractText(context.Background(), "text")
	require.Error(t, err)

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
	assert.Len(t, p.requests, 1, "a parse failure is not retried on the next model")
}

func TestExtractFromAttachment(t *testing.T) {
	p := &recordingProvider{multimodal: true, models: []string{"m1"}, response: validResponse}
	g := NewGateway(p, Options{})

	pdf := []byte("%PDF-1.4 scanned")
	data, err := g.ExtractFromAttachment(context.Background(), pdf, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "Staff Nurse", data.Data.Title)

	req := p.requests[0]
	require.NotNil(t, req.Attachment)
	assert.Equal(t, "application/pdf", req.Attachment.MIMEType)
	assert.Equal(t, pdf, req.Attachment.Data)
	assert.Contains(t, req.Prompt, schemas.JobFields())
}

func TestExtractFromAttachment_TextOnlyProvider(t *testing.T) {
	p := &recordingProvider{multimodal: false, models: []string{"m1"}, response: validResponse}
	g := NewGateway(p, Options{})

	_, err := g.ExtractFromAttachment(context.Background(), []byte("%PDF"), "application/pdf")
	require.Error(t, err)

	var unsupported *UnsupportedAttachmentError
	require.ErrorAs(t, err, &unsupported)
	assert.Contains(t, err.Error(), "does not support document attachments")
	assert.Empty(t, p.requests)
}

func TestTruncateChars(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		limit   int
		want    string
		wantCut bool
	}{
		{name: "under limit", input: "abc", limit: 5, want: "abc"},
		{name: "exact limit", input: "abcde", limit: 5, want: "abcde"},
		{name: "over limit", input: "abcdef", limit: 5, want: "abcde", wantCut: true},
		{name: "multibyte counted as characters", input: "भर्ती सूचना", limit: 5, want: "भर्ती", wantCut: true},
		{name: "multibyte under limit", input: "सूचना", limit: 5, want: "सूचना"},
		{name: "no limit", input: "abc", limit: 0, want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, cut := truncateChars(tt.input, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCut, cut)
		})
	}
}
