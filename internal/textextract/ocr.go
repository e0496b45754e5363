package textextract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/notice-extractor/internal/observability"
)

// OCRResult is the recognized text of a whole document.
type OCRResult struct {
	Text string
	// Confidence is the engine's mean word confidence on its native 0-100 scale
	Confidence float64
}

// OCRWorker recognizes text in a PDF. A worker serves a single extraction
// and must be closed when it is done.
type OCRWorker interface {
	Recognize(ctx context.Context, buf []byte) (OCRResult, error)
	Close() error
}

// WorkerFactory starts a fresh OCR worker.
type WorkerFactory func(ctx context.Context) (OCRWorker, error)

// OCRConfig configures the Tesseract worker.
type OCRConfig struct {
	// Language is a Tesseract language code such as "eng" or "eng+hin"
	Language string
	// DPI used to rasterize pages before recognition
	DPI int
	// Pdftoppm is the binary name or absolute path of pdftoppm
	Pdftoppm string
	// TessdataPrefix overrides the tessdata directory
	TessdataPrefix string
	// MaxPages limits how many pages are recognized; 0 means all
	MaxPages int
}

// DefaultOCRConfig returns the OCR defaults.
func DefaultOCRConfig() OCRConfig {
	return OCRConfig{
		Language: "eng",
		DPI:      300,
		Pdftoppm: "pdftoppm",
	}
}

func (c OCRConfig) withDefaults() OCRConfig {
	d := DefaultOCRConfig()
	if c.Language == "" {
		c.Language = d.Language
	}
	if c.DPI <= 0 {
		c.DPI = d.DPI
	}
	if c.Pdftoppm == "" {
		c.Pdftoppm = d.Pdftoppm
	}
	return c
}

// pageRecognizer runs OCR over one rendered page image. The implementation
// depends on the "ocr" build tag.
type pageRecognizer interface {
	RecognizeFile(path string) (text string, confidence float64, err error)
	Close() error
}

// TesseractWorker rasterizes the PDF with pdftoppm into a private temp
// directory and recognizes each page with Tesseract.
type TesseractWorker struct {
	cfg    OCRConfig
	runner Runner
	dir    string
	pages  pageRecognizer
}

// NewTesseractFactory returns a WorkerFactory producing TesseractWorkers.
func NewTesseractFactory(cfg OCRConfig, runner Runner) WorkerFactory {
	cfg = cfg.withDefaults()
	if runner == nil {
		runner = ExecRunner{}
	}
	return func(ctx context.Context) (OCRWorker, error) {
		w, err := startTesseractWorker(cfg, runner)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
}

func startTesseractWorker(cfg OCRConfig, runner Runner) (*TesseractWorker, error) {
	pages, err := newPageRecognizer(cfg)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "notice-ocr-*")
	if err != nil {
		_ = pages.Close()
		return nil, fmt.Errorf("create OCR work dir: %w", err)
	}
	return &TesseractWorker{cfg: cfg, runner: runner, dir: dir, pages: pages}, nil
}

// Recognize renders every page and returns the joined text with the mean
// page confidence.
func (w *TesseractWorker) Recognize(ctx context.Context, buf []byte) (OCRResult, error) {
	logger := observability.Logger(ctx)

	in := filepath.Join(w.dir, "input.pdf")
	if err := os.WriteFile(in, buf, 0o600); err != nil {
		return OCRResult{}, fmt.Errorf("write OCR input: %w", err)
	}

	prefix := filepath.Join(w.dir, "page")
	// pdftoppm -r 300 -png <in.pdf> <dir/page>
	_, errb, err := w.runner.Run(ctx, w.cfg.Pdftoppm, logger, "-r", strconv.Itoa(w.cfg.DPI), "-png", in, prefix)
	if err != nil {
		return OCRResult{}, fmt.Errorf("pdftoppm: %w: %s", err, strings.TrimSpace(truncate(string(errb), 512)))
	}

	images, _ := filepath.Glob(prefix + "-*.png")
	sortPageImages(images)
	if w.cfg.MaxPages > 0 && len(images) > w.cfg.MaxPages {
		images = images[:w.cfg.MaxPages]
	}
	if len(images) == 0 {
		return OCRResult{}, errors.New("pdftoppm produced no page images")
	}

	var (
		b       strings.Builder
		sum     float64
		scored  int
		lastErr error
	)
	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return OCRResult{}, err
		}
		text, conf, err := w.pages.RecognizeFile(img)
		if err != nil {
			logger.Warn("textextract.ocr.page_failed", "page", filepath.Base(img), "error", err)
			lastErr = err
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
		sum += conf
		scored++
	}
	if scored == 0 {
		return OCRResult{}, fmt.Errorf("no page could be recognized: %w", lastErr)
	}

	return OCRResult{Text: normalizeOCRText(b.String()), Confidence: sum / float64(scored)}, nil
}

// Close releases the recognizer and removes the work directory.
func (w *TesseractWorker) Close() error {
	errs := []error{w.pages.Close(), os.RemoveAll(w.dir)}
	return errors.Join(errs...)
}

var pageNumber = regexp.MustCompile(`-(\d+)\.png$`)

// sortPageImages orders pdftoppm output (page-01.png, page-02.png, ...)
// by page number.
func sortPageImages(paths []string) {
	num := func(p string) int {
		m := pageNumber.FindStringSubmatch(p)
		if m == nil {
			return 0
		}
		n, _ := strconv.Atoi(m[1])
		return n
	}
	sort.SliceStable(paths, func(i, j int) bool { return num(paths[i]) < num(paths[j]) })
}

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
)

// normalizeOCRText collapses noisy whitespace. Line breaks are kept.
func normalizeOCRText(s string) string {
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")

	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
