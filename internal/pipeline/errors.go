package pipeline

import (
	"errors"
	"fmt"
)

// ErrEmptyDocument is returned for an upload with no bytes
var ErrEmptyDocument = errors.New("uploaded document is empty")

// UnsupportedDocumentError is returned when the upload is not a PDF
type UnsupportedDocumentError struct {
	MIMEType string
}

func (e *UnsupportedDocumentError) Error() string {
	if e.MIMEType == "" {
		return "uploaded document is not a PDF"
	}
	return fmt.Sprintf("uploaded document is not a PDF (declared type %q)", e.MIMEType)
}

// PanicError wraps a panic recovered at the pipeline boundary
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("internal error: %v", e.Value)
}
