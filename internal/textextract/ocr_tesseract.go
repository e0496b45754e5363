//go:build ocr

package textextract

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// OCREnabled reports whether Tesseract support is compiled in.
const OCREnabled = true

type gosseractPages struct {
	client *gosseract.Client
}

func newPageRecognizer(cfg OCRConfig) (pageRecognizer, error) {
	client := gosseract.NewClient()
	if cfg.TessdataPrefix != "" {
		client.TessdataPrefix = cfg.TessdataPrefix
	}
	if err := client.SetLanguage(strings.Split(cfg.Language, "+")...); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set languages: %w", err)
	}
	if err := client.SetVariable(gosseract.SettableVariable("user_defined_dpi"), fmt.Sprint(cfg.DPI)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set dpi: %w", err)
	}
	return &gosseractPages{client: client}, nil
}

func (p *gosseractPages) RecognizeFile(path string) (string, float64, error) {
	if err := p.client.SetImage(path); err != nil {
		return "", 0, fmt.Errorf("set image: %w", err)
	}
	text, err := p.client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), meanWordConfidence(p.client), nil
}

func (p *gosseractPages) Close() error {
	return p.client.Close()
}

// meanWordConfidence averages Tesseract's per-word confidence (0-100).
func meanWordConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	return sum / float64(len(boxes))
}
