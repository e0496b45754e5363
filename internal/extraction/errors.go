package extraction

import "fmt"

// APICallError is returned when no candidate model produced a response
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// ParseError is returned when the response did not contain a single
// well-formed JSON object
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// UnsupportedAttachmentError is returned when a document attachment is sent
// to a provider that can only read text
type UnsupportedAttachmentError struct {
	Provider string
}

func (e *UnsupportedAttachmentError) Error() string {
	return fmt.Sprintf("provider %q does not support document attachments; scanned documents need a multimodal provider such as gemini", e.Provider)
}
