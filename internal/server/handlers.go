package server

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/jonathan/notice-extractor/internal/observability"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file
const multipartMemory = 8 << 20

// handleExtract runs the pipeline on an uploaded PDF. The body is the
// PipelineResult: 200 on success, 422 when the pipeline failed.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	logger := observability.Logger(r.Context())

	buf, mimeType, err := s.readUpload(w, r)
	if err != nil {
		logger.Warn("http.extract.rejected", "error", err)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	if err := s.runs.Acquire(r.Context(), 1); err != nil {
		s.errorResponse(w, HTTPStatus(&ErrBusy{}), (&ErrBusy{}).Error())
		return
	}
	defer s.runs.Release(1)

	res := s.extractor.Run(r.Context(), buf, mimeType)

	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	s.jsonResponse(w, status, res)
}

// readUpload reads the multipart "file" field within the upload limit
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, "", &ErrUploadTooLarge{Limit: s.cfg.MaxUploadBytes}
		}
		return nil, "", &ErrValidation{Field: "file", Message: "request must be multipart/form-data"}
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", &ErrValidation{Field: "file", Message: "a PDF must be uploaded in the \"file\" field"}
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	buf, err := io.ReadAll(file)
	if err != nil {
		return nil, "", &ErrValidation{Field: "file", Message: "failed to read upload"}
	}
	return buf, header.Header.Get("Content-Type"), nil
}

// handleHealth returns server health status and the active provider
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"provider": s.provider,
	})
}
