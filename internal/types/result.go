package types

// Stage tags where a pipeline run ended. It is diagnostic only.
type Stage string

// Stage constants in pipeline order
const (
	StageUpload    Stage = "upload"
	StageExtract   Stage = "extract"
	StageOCR       Stage = "ocr"
	StageAI        Stage = "ai"
	StageAggregate Stage = "aggregate"
	StageComplete  Stage = "complete"
)

// OCRConfidenceKey is the synthetic confidence entry the pipeline adds to
// the model's per-field map.
const OCRConfidenceKey = "ocr_confidence"

// PipelineResult is the single value returned for a pipeline run.
// Success implies Data is set; failure implies Error is set.
type PipelineResult struct {
	Success    bool               `json:"success"`
	Data       *JobFields         `json:"data,omitempty"`
	Confidence map[string]float64 `json:"confidence,omitempty"`
	Warnings   []string           `json:"warnings,omitempty"`
	IsScanned  *bool              `json:"is_scanned,omitempty"`
	Error      string             `json:"error,omitempty"`
	Stage      Stage              `json:"stage,omitempty"`
	RunID      string             `json:"run_id,omitempty"`
	Model      string             `json:"model,omitempty"`
}

// Failed builds a failure result for the given stage.
func Failed(stage Stage, err error) PipelineResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return PipelineResult{
		Success: false,
		Error:   msg,
		Stage:   stage,
	}
}
