package textextract

import "fmt"

// OCRError describes why OCR produced no text. Extract logs it and
// degrades instead of returning it.
type OCRError struct {
	Message string
	Cause   error
}

func (e *OCRError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ocr failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("ocr failed: %s", e.Message)
}

func (e *OCRError) Unwrap() error {
	return e.Cause
}
