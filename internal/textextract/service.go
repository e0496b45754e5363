// Package textextract recovers text from a PDF buffer. Documents with too
// little embedded text are treated as scanned and run through OCR.
package textextract

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jonathan/notice-extractor/internal/observability"
	"github.com/jonathan/notice-extractor/internal/types"
)

// ScannedThreshold is the minimum number of characters of trimmed native
// text for a document to count as text-based. A nearly empty text PDF,
// such as a cover page, is classified as scanned.
const ScannedThreshold = 100

// Service extracts text from PDF buffers. It holds no per-call state and
// is safe for concurrent use.
type Service struct {
	textLayer TextLayer
	newWorker WorkerFactory
}

// Option configures a Service.
type Option func(*Service)

// WithTextLayer replaces the native text reader.
func WithTextLayer(tl TextLayer) Option {
	return func(s *Service) { s.textLayer = tl }
}

// WithWorkerFactory replaces the OCR worker factory.
func WithWorkerFactory(f WorkerFactory) Option {
	return func(s *Service) { s.newWorker = f }
}

// NewService creates a Service backed by rsc.io/pdf and Tesseract.
func NewService(cfg OCRConfig, opts ...Option) *Service {
	s := &Service{
		textLayer: PDFTextLayer{},
		newWorker: NewTesseractFactory(cfg, ExecRunner{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Extract never fails. A document with at least ScannedThreshold characters
// of native text is returned as-is with confidence 1. Otherwise it is
// scanned: OCR text is returned with the engine score scaled to [0,1], or,
// when OCR fails, the native text with confidence 0.
func (s *Service) Extract(ctx context.Context, buf []byte) types.ExtractedContent {
	logger := observability.Logger(ctx)

	native, err := s.textLayer.Text(buf)
	if err != nil {
		logger.Warn("textextract.native.failed", "bytes", len(buf), "error", err)
		native = ""
	}
	native = strings.TrimSpace(native)
	chars := utf8.RuneCountInString(native)

	if chars >= ScannedThreshold {
		logger.Info("textextract.native.ok", "chars", chars)
		return types.ExtractedContent{Text: native, IsScanned: false, Confidence: 1.0}
	}

	logger.Info("textextract.scanned", "native_chars", chars, "threshold", ScannedThreshold)

	start := time.Now()
	res, err := s.runOCR(ctx, buf)
	if err != nil {
		logger.Warn("textextract.ocr.failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return types.ExtractedContent{Text: native, IsScanned: true, Confidence: 0}
	}

	confidence := scaleConfidence(res.Confidence)
	logger.Info("textextract.ocr.ok",
		"chars", utf8.RuneCountInString(res.Text),
		"confidence", confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return types.ExtractedContent{Text: res.Text, IsScanned: true, Confidence: confidence}
}

// runOCR starts a worker for this call only and always closes it.
func (s *Service) runOCR(ctx context.Context, buf []byte) (res OCRResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &OCRError{Message: fmt.Sprintf("engine panic: %v", r)}
		}
	}()

	worker, err := s.newWorker(ctx)
	if err != nil {
		return OCRResult{}, &OCRError{Message: "start worker", Cause: err}
	}
	defer func() {
		if cerr := worker.Close(); cerr != nil {
			observability.Logger(ctx).Warn("textextract.ocr.close_failed", "error", cerr)
		}
	}()

	res, err = worker.Recognize(ctx, buf)
	if err != nil {
		return OCRResult{}, &OCRError{Message: "recognize", Cause: err}
	}
	return res, nil
}

// scaleConfidence maps the engine's 0-100 score onto [0,1].
func scaleConfidence(score float64) float64 {
	c := score / 100
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
