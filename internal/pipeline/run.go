// Package pipeline orchestrates notice extraction: it chooses between the
// native text path and the scanned-document paths, calls the model
// gateway, and folds every outcome into a single PipelineResult.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/notice-extractor/internal/extraction"
	"github.com/jonathan/notice-extractor/internal/observability"
	"github.com/jonathan/notice-extractor/internal/types"
)

// MIMETypePDF is the only document type the pipeline accepts
const MIMETypePDF = "application/pdf"

// MultimodalConfidence is reported as ocr_confidence when the model read
// the PDF directly instead of OCR text
const MultimodalConfidence = 0.95

// Provenance warnings appended to the model's own warnings
const (
	MultimodalWarning = "scanned document: fields were read directly from the PDF by a multimodal model, not from OCR text"
	OCRTextWarning    = "scanned document: fields were extracted from OCR text and may contain recognition errors"
)

// TextExtractor recovers text from a PDF buffer. It must not fail.
type TextExtractor interface {
	Extract(ctx context.Context, buf []byte) types.ExtractedContent
}

// FieldExtractor turns text or a raw document into job fields.
type FieldExtractor interface {
	SupportsAttachments() bool
	ProviderName() string
	ExtractText(ctx context.Context, text string) (*types.ExtractedData, error)
	ExtractFromAttachment(ctx context.Context, buf []byte, mimeType string) (*types.ExtractedData, error)
}

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	RunID   string      `json:"run_id"`
	Stage   types.Stage `json:"stage"`
	Message string      `json:"message"`
}

// ProgressCallback is called when the pipeline enters a stage
type ProgressCallback func(event ProgressEvent)

// Options holds configuration for running the pipeline
type Options struct {
	// AllowOCRTextFallback sends OCR text to a text-only provider instead
	// of failing scanned documents at the ocr stage
	AllowOCRTextFallback bool
	// Timeout bounds a whole run; zero means no limit beyond ctx
	Timeout    time.Duration
	OnProgress ProgressCallback
}

// Orchestrator runs the extraction pipeline. It keeps no state between
// runs, so concurrent calls are independent.
type Orchestrator struct {
	text   TextExtractor
	fields FieldExtractor
	opts   Options
}

// New creates an Orchestrator
func New(text TextExtractor, fields FieldExtractor, opts Options) *Orchestrator {
	return &Orchestrator{text: text, fields: fields, opts: opts}
}

// run carries the per-invocation state
type run struct {
	id      string
	stage   types.Stage
	scanned *bool
	opts    *Options
}

func (r *run) enter(stage types.Stage, message string) {
	r.stage = stage
	if r.opts.OnProgress != nil {
		r.opts.OnProgress(ProgressEvent{RunID: r.id, Stage: stage, Message: message})
	}
}

func (r *run) fail(ctx context.Context, err error) types.PipelineResult {
	observability.Logger(ctx).Error("pipeline.failed", "stage", r.stage, "error", err)
	res := types.Failed(r.stage, err)
	res.RunID = r.id
	res.IsScanned = r.scanned
	return res
}

// Run extracts job fields from buf. It never panics and never returns an
// error: every failure becomes a PipelineResult with Success false and the
// stage it happened in.
func (o *Orchestrator) Run(ctx context.Context, buf []byte, mimeType string) (result types.PipelineResult) {
	r := &run{id: uuid.NewString(), opts: &o.opts}
	logger := observability.Logger(ctx).With("run_id", r.id)
	ctx = observability.WithLogger(ctx, logger)

	if o.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.Timeout)
		defer cancel()
	}

	defer func() {
		if v := recover(); v != nil {
			result = r.fail(ctx, &PanicError{Value: v})
		}
	}()

	start := time.Now()
	r.enter(types.StageUpload, "validating upload")
	logger.Info("pipeline.start", "bytes", len(buf), "mime_type", mimeType, "provider", o.fields.ProviderName())
	if err := checkUpload(buf, mimeType); err != nil {
		return r.fail(ctx, err)
	}

	r.enter(types.StageExtract, "extracting text")
	content := o.text.Extract(ctx, buf)
	scanned := content.IsScanned
	r.scanned = &scanned

	var (
		data       *types.ExtractedData
		err        error
		ocrConf    float64
		provenance string
	)
	switch {
	case !content.IsScanned:
		r.enter(types.StageAI, "extracting fields from document text")
		data, err = o.fields.ExtractText(ctx, content.Text)
		ocrConf = content.Confidence

	case o.fields.SupportsAttachments():
		r.enter(types.StageAI, "scanned document: sending PDF to multimodal model")
		data, err = o.fields.ExtractFromAttachment(ctx, buf, MIMETypePDF)
		ocrConf = MultimodalConfidence
		provenance = MultimodalWarning

	case o.opts.AllowOCRTextFallback && strings.TrimSpace(content.Text) != "":
		r.enter(types.StageAI, "scanned document: extracting fields from OCR text")
		data, err = o.fields.ExtractText(ctx, content.Text)
		ocrConf = content.Confidence
		provenance = OCRTextWarning

	default:
		r.enter(types.StageOCR, "scanned document cannot be read by the configured provider")
		return r.fail(ctx, &extraction.UnsupportedAttachmentError{Provider: o.fields.ProviderName()})
	}
	if err != nil {
		return r.fail(ctx, err)
	}

	r.enter(types.StageAggregate, "merging confidence and warnings")
	result = aggregate(data, ocrConf, provenance)
	result.IsScanned = r.scanned
	result.RunID = r.id

	r.enter(types.StageComplete, "done")
	logger.Info("pipeline.done",
		"scanned", scanned,
		"model", data.Model,
		"warnings", len(result.Warnings),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return result
}

// aggregate merges the model output with the pipeline's own provenance
func aggregate(data *types.ExtractedData, ocrConfidence float64, provenance string) types.PipelineResult {
	confidence := make(map[string]float64, len(data.FieldConfidence)+1)
	for k, v := range data.FieldConfidence {
		confidence[k] = v
	}
	confidence[types.OCRConfidenceKey] = ocrConfidence

	warnings := make([]string, 0, len(data.Warnings)+1)
	warnings = append(warnings, data.Warnings...)
	if provenance != "" {
		warnings = append(warnings, provenance)
	}

	fields := data.Data
	fields.Normalize()

	return types.PipelineResult{
		Success:    true,
		Data:       &fields,
		Confidence: confidence,
		Warnings:   warnings,
		Stage:      types.StageComplete,
		Model:      data.Model,
	}
}

// pdfMagic may be preceded by up to 1 KiB of junk in files readers accept
var pdfMagic = []byte("%PDF-")

func checkUpload(buf []byte, mimeType string) error {
	if len(buf) == 0 {
		return ErrEmptyDocument
	}

	if mimeType != "" {
		mediaType, _, err := mime.ParseMediaType(mimeType)
		if err != nil {
			return &UnsupportedDocumentError{MIMEType: mimeType}
		}
		switch mediaType {
		case MIMETypePDF, "application/x-pdf", "application/octet-stream":
		default:
			return &UnsupportedDocumentError{MIMEType: mimeType}
		}
	}

	head := buf
	if len(head) > 1024 {
		head = head[:1024]
	}
	if !bytes.Contains(head, pdfMagic) {
		return &UnsupportedDocumentError{MIMEType: mimeType}
	}
	return nil
}

// Describe renders a short summary of a result for log lines and CLIs
func Describe(res types.PipelineResult) string {
	if !res.Success {
		return fmt.Sprintf("failed at %s: %s", res.Stage, res.Error)
	}
	return fmt.Sprintf("ok (%d warnings, model %s)", len(res.Warnings), res.Model)
}
