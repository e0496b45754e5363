package types

// ExtractedContent is the text recovered from a PDF buffer.
type ExtractedContent struct {
	Text      string `json:"text"`
	IsScanned bool   `json:"is_scanned"`
	// Confidence is 1.0 for a native text layer, the scaled OCR score for
	// scanned documents, and 0 when OCR failed.
	Confidence float64 `json:"confidence"`
}

// ExtractedData is the parsed model output for one document.
type ExtractedData struct {
	Data            JobFields          `json:"data"`
	FieldConfidence map[string]float64 `json:"field_confidence"`
	Warnings        []string           `json:"warnings"`
	// Model is the candidate that produced the response
	Model string `json:"model,omitempty"`
}
