package types

import (
	"time"

	"github.com/transcodelab/transcribe-server/internal/timeutil"
)

// Job status constants
const (
	StatusQueued           = "QUEUED"
	StatusDownloadFailed   = "DOWNLOAD_FAILED"
	StatusConverting       = "CONVERTING"
	StatusConvertFailed    = "CONVERT_FAILED"
	StatusTranscribing     = "TRANSCRIBING"
	StatusCompleted        = "COMPLETED"
	StatusTranscribeFailed = "TRANSCRIBE_FAILED"
)

// Source type constants
const (
	SourceUpload = "upload"
	SourceVideo  = "video"
	SourceStream = "stream"
)

// TranscriptRecord is the durable output of one transcription run.
// The file is the artifact of record; Text is held only transiently
// for the API response.
type TranscriptRecord struct {
	Text           string `json:"text"`
	TranscriptFile string `json:"transcript_file"`
}

// PipelineResult carries the transcript reference plus the
// processing-time telemetry for one completed pipeline run.
type PipelineResult struct {
	JobID            string                 `json:"job_id"`
	TranscriptFile   string                 `json:"transcript_file"`
	WordCount        int                    `json:"word_count"`
	DurationSeconds  float64                `json:"duration_seconds"`
	Estimated        timeutil.TimeBreakdown `json:"estimated"`
	EstimateFallback bool                   `json:"estimate_fallback"`
	ActualSeconds    float64                `json:"actual_seconds"`
	Difference       string                 `json:"difference"`
	IsFaster         bool                   `json:"is_faster"`
	ProcessedAt      time.Time              `json:"processed_at"`
}
