package textextract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorker struct {
	result OCRResult
	err    error
	panics bool

	recognized int
	closed     int
}

func (w *fakeWorker) Recognize(context.Context, []byte) (OCRResult, error) {
	w.recognized++
	if w.panics {
		panic("tesseract crashed")
	}
	return w.result, w.err
}

func (w *fakeWorker) Close() error {
	w.closed++
	return nil
}

type fakeFactory struct {
	worker  *fakeWorker
	err     error
	started int
}

func (f *fakeFactory) start(context.Context) (OCRWorker, error) {
	f.started++
	if f.err != nil {
		return nil, f.err
	}
	return f.worker, nil
}

func nativeText(text string) TextLayer {
	return TextLayerFunc(func([]byte) (string, error) { return text, nil })
}

func newTestService(native TextLayer, factory *fakeFactory) *Service {
	return NewService(DefaultOCRConfig(), WithTextLayer(native), WithWorkerFactory(factory.start))
}

func TestExtract_NativeTextSkipsOCR(t *testing.T) {
	text := strings.Repeat("Recruitment notice ", 10)
	factory := &fakeFactory{worker: &fakeWorker{}}
	svc := newTestService(nativeText(text), factory)

	got := svc.Extract(context.Background(), []byte("%PDF"))

	assert.False(t, got.IsScanned)
	assert.Equal(t, 1.0, got.Confidence)
	assert.Equal(t, strings.TrimSpace(text), got.Text)
	assert.Zero(t, factory.started, "OCR must not run for text documents")
}

func TestExtract_Threshold(t *testing.T) {
	tests := []struct {
		name        string
		native      string
		wantScanned bool
	}{
		{name: "exactly threshold", native: strings.Repeat("a", ScannedThreshold), wantScanned: false},
		{name: "one below threshold", native: strings.Repeat("a", ScannedThreshold-1), wantScanned: true},
		{name: "padding does not count", native: "   " + strings.Repeat("a", ScannedThreshold-1) + "\n\n\n", wantScanned: true},
		{name: "multibyte counted as characters", native: strings.Repeat("अ", ScannedThreshold), wantScanned: false},
		{name: "empty", native: "", wantScanned: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := &fakeFactory{worker: &fakeWorker{result: OCRResult{Text: "ocr", Confidence: 50}}}
			svc := newTestService(nativeText(tt.native), factory)

			got := svc.Extract(context.Background(), []byte("%PDF"))
			assert.Equal(t, tt.wantScanned, got.IsScanned)
			if tt.wantScanned {
				assert.Equal(t, 1, factory.started)
			} else {
				assert.Zero(t, factory.started)
			}
		})
	}
}

func TestExtract_ScannedUsesOCR(t *testing.T) {
	worker := &fakeWorker{result: OCRResult{Text: "Advt No. 12/2026 Staff Nurse", Confidence: 87}}
	factory := &fakeFactory{worker: worker}
	svc := newTestService(nativeText("Page 1"), factory)

	got := svc.Extract(context.Background(), []byte("%PDF"))

	assert.True(t, got.IsScanned)
	assert.Equal(t, "Advt No. 12/2026 Staff Nurse", got.Text)
	assert.InDelta(t, 0.87, got.Confidence, 1e-9)
	assert.Equal(t, 1, worker.recognized)
	assert.Equal(t, 1, worker.closed, "worker must be terminated after use")
}

func TestExtract_OCRFailureDegrades(t *testing.T) {
	worker := &fakeWorker{err: errors.New("pdftoppm: exit status 1")}
	factory := &fakeFactory{worker: worker}
	svc := newTestService(nativeText(" cover page "), factory)

	got := svc.Extract(context.Background(), []byte("%PDF"))

	assert.True(t, got.IsScanned)
	assert.Equal(t, "cover page", got.Text)
	assert.Zero(t, got.Confidence)
	assert.Equal(t, 1, worker.closed, "worker must be terminated on failure")
}

func TestExtract_OCRPanicDegrades(t *testing.T) {
	worker := &fakeWorker{panics: true}
	svc := newTestService(nativeText(""), &fakeFactory{worker: worker})

	got := svc.Extract(context.Background(), []byte("%PDF"))

	assert.True(t, got.IsScanned)
	assert.Empty(t, got.Text)
	assert.Zero(t, got.Confidence)
	assert.Equal(t, 1, worker.closed)
}

func TestExtract_WorkerStartFailureDegrades(t *testing.T) {
	factory := &fakeFactory{err: errors.New("tesseract not installed")}
	svc := newTestService(nativeText("short"), factory)

	got := svc.Extract(context.Background(), []byte("%PDF"))

	assert.True(t, got.IsScanned)
	assert.Equal(t, "short", got.Text)
	assert.Zero(t, got.Confidence)
}

func TestExtract_NativeFailureFallsThroughToOCR(t *testing.T) {
	broken := TextLayerFunc(func([]byte) (string, error) { return "", errors.New("malformed xref") })
	worker := &fakeWorker{result: OCRResult{Text: "recognized", Confidence: 40}}
	svc := newTestService(broken, &fakeFactory{worker: worker})

	got := svc.Extract(context.Background(), []byte("garbage"))

	assert.True(t, got.IsScanned)
	assert.Equal(t, "recognized", got.Text)
	assert.InDelta(t, 0.4, got.Confidence, 1e-9)
}

func TestExtract_FreshWorkerPerCall(t *testing.T) {
	factory := &fakeFactory{worker: &fakeWorker{result: OCRResult{Text: "x", Confidence: 10}}}
	svc := newTestService(nativeText(""), factory)

	svc.Extract(context.Background(), []byte("%PDF"))
	svc.Extract(context.Background(), []byte("%PDF"))

	assert.Equal(t, 2, factory.started)
	assert.Equal(t, 2, factory.worker.closed)
}

func TestScaleConfidence(t *testing.T) {
	assert.Equal(t, 0.0, scaleConfidence(-5))
	assert.InDelta(t, 0.5, scaleConfidence(50), 1e-9)
	assert.Equal(t, 1.0, scaleConfidence(100))
	assert.Equal(t, 1.0, scaleConfidence(130))
}

func TestExtract_RealTextLayer(t *testing.T) {
	pdf := buildTestPDF(
		"EMPLOYMENT NOTICE No. 04/2026",
		"Applications are invited for the post of Assistant Engineer (Civil).",
		"Last date for online application: 15 December 2026",
	)
	factory := &fakeFactory{worker: &fakeWorker{}}
	svc := NewService(DefaultOCRConfig(), WithWorkerFactory(factory.start))

	got := svc.Extract(context.Background(), pdf)

	require.False(t, got.IsScanned)
	assert.Contains(t, got.Text, "EMPLOYMENT NOTICE No. 04/2026")
	assert.Contains(t, got.Text, "Assistant Engineer (Civil)")
	assert.Zero(t, factory.started)
}

func TestExtract_SingleLineOverThresholdIsNative(t *testing.T) {
	// 109 characters, 92 of them printed glyphs
	line := "Applications are invited from eligible candidates for the post of Assistant Engineer (Civil) in Pay Level 10."
	require.Greater(t, len(line), ScannedThreshold)
	require.Less(t, len(strings.ReplaceAll(line, " ", "")), ScannedThreshold)

	for name, build := range map[string]func(...string) []byte{"without widths": buildTestPDF, "with widths": buildMetricPDF} {
		t.Run(name, func(t *testing.T) {
			factory := &fakeFactory{worker: &fakeWorker{}}
			svc := NewService(DefaultOCRConfig(), WithWorkerFactory(factory.start))

			got := svc.Extract(context.Background(), build(line))

			assert.False(t, got.IsScanned)
			assert.Equal(t, line, got.Text)
			assert.Zero(t, factory.started)
		})
	}
}

func TestRunOCR_WrapsFailures(t *testing.T) {
	cause := errors.New("pdftoppm: exit status 1")
	svc := newTestService(nativeText(""), &fakeFactory{worker: &fakeWorker{err: cause}})

	_, err := svc.runOCR(context.Background(), []byte("%PDF"))

	var ocrErr *OCRError
	require.ErrorAs(t, err, &ocrErr)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "ocr failed: recognize: pdftoppm: exit status 1", err.Error())
}
