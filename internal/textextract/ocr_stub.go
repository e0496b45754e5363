//go:build !ocr

package textextract

import "errors"

// OCREnabled reports whether Tesseract support is compiled in.
const OCREnabled = false

// ErrOCRNotEnabled is returned when OCR is attempted but Tesseract support
// was not compiled in. Rebuild with -tags ocr to enable it.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

func newPageRecognizer(OCRConfig) (pageRecognizer, error) {
	return nil, ErrOCRNotEnabled
}
