package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failed model invocation. Adapters set it from
// provider-defined error types, never from message text.
type ErrorKind string

// ErrorKind constants
const (
	KindUnknown       ErrorKind = "unknown"
	KindSafety        ErrorKind = "safety"
	KindNotFound      ErrorKind = "model_not_found"
	KindRateLimited   ErrorKind = "rate_limited"
	KindAuth          ErrorKind = "auth"
	KindEmptyResponse ErrorKind = "empty_response"
	KindCanceled      ErrorKind = "canceled"
	KindUnsupported   ErrorKind = "unsupported"
)

var (
	// ErrEmptyResponse is returned when a model answered with no text
	ErrEmptyResponse = errors.New("empty response")
	// ErrNoCandidates is returned when a provider has no models to try
	ErrNoCandidates = errors.New("no candidate models configured")
	// ErrAttachmentsUnsupported is returned by text-only providers given an attachment
	ErrAttachmentsUnsupported = errors.New("provider does not accept document attachments")
)

// ModelError is a single failed invocation of one candidate model.
type ModelError struct {
	Provider ProviderName
	Model    string
	Kind     ErrorKind
	Cause    error
}

func (e *ModelError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s/%s: %s: %v", e.Provider, e.Model, e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s/%s: %s", e.Provider, e.Model, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Cause
}

// KindOf returns the ErrorKind of err, or KindUnknown if err carries none.
func KindOf(err error) ErrorKind {
	var me *ModelError
	if errors.As(err, &me) {
		return me.Kind
	}
	if isContextErr(err) {
		return KindCanceled
	}
	return KindUnknown
}

// ChainError is returned when every candidate failed. It unwraps to the
// last underlying cause.
type ChainError struct {
	Attempts []AttemptError
}

// AttemptError records one failed candidate
type AttemptError struct {
	Candidate string
	Err       error
}

func (e *ChainError) Error() string {
	if len(e.Attempts) == 0 {
		return "all candidates failed"
	}
	names := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		names[i] = a.Candidate
	}
	return fmt.Sprintf("all %d candidates failed (%s); last error: %v",
		len(e.Attempts), strings.Join(names, ", "), e.Last())
}

// Last returns the most recent underlying error
func (e *ChainError) Last() error {
	if len(e.Attempts) == 0 {
		return nil
	}
	return e.Attempts[len(e.Attempts)-1].Err
}

func (e *ChainError) Unwrap() error {
	return e.Last()
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
