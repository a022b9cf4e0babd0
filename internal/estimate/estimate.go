// Package estimate models expected transcription time with a fixed
// linear model and compares it against the measured elapsed time.
package estimate

import (
	"fmt"
	"math"

	"github.com/transcodelab/transcribe-server/internal/timeutil"
)

// Default model constants.
const (
	DefaultOverheadSeconds  = 60.0
	DefaultSpeedFactor      = 30.0
	DefaultFallbackDuration = 60.0
)

// Estimator converts media durations into expected processing times.
type Estimator struct {
	OverheadSeconds  float64
	SpeedFactor      float64
	FallbackDuration float64
}

// NewEstimator returns an Estimator, substituting defaults for any
// non-positive model constant.
func NewEstimator(overhead, speedFactor, fallback float64) *Estimator {
	if overhead <= 0 {
		overhead = DefaultOverheadSeconds
	}
	if speedFactor <= 0 {
		speedFactor = DefaultSpeedFactor
	}
	if fallback <= 0 {
		fallback = DefaultFallbackDuration
	}
	return &Estimator{OverheadSeconds: overhead, SpeedFactor: speedFactor, FallbackDuration: fallback}
}

// Estimate is an expected processing time. UsedFallback records that
// the media duration was unusable and the model ran on the fallback
// duration instead.
type Estimate struct {
	Breakdown    timeutil.TimeBreakdown `json:"breakdown"`
	UsedFallback bool                   `json:"used_fallback"`
}

// EstimateProcessingTime computes overhead + ceil(duration/speed).
// A non-positive or NaN duration is replaced by the fallback duration.
func (e *Estimator) EstimateProcessingTime(durationSeconds float64) Estimate {
	usedFallback := false
	if math.IsNaN(durationSeconds) || durationSeconds <= 0 {
		durationSeconds = e.FallbackDuration
		usedFallback = true
	}

	estimated := e.OverheadSeconds + math.Ceil(durationSeconds/e.SpeedFactor)
	return Estimate{Breakdown: timeutil.FormatTime(estimated), UsedFallback: usedFallback}
}

// Difference compares an actual elapsed time against an estimate.
type Difference struct {
	Breakdown timeutil.TimeBreakdown `json:"breakdown"`
	IsFaster  bool                   `json:"is_faster"`
	Text      string                 `json:"text"`
	Seconds   float64                `json:"seconds"`
}

// TimeDifference reports how far the actual time landed from the
// estimate. A tie counts as faster. The text uses the coarsest
// non-zero unit of the difference.
func TimeDifference(actualSeconds, estimatedSeconds float64) Difference {
	diff := math.Abs(actualSeconds - estimatedSeconds)
	breakdown := timeutil.FormatTime(diff)
	isFaster := actualSeconds <= estimatedSeconds

	verdict := "slower"
	if isFaster {
		verdict = "faster"
	}

	var text string
	switch {
	case breakdown.Hours > 0:
		text = fmt.Sprintf("%dh %dm %ds %s than estimated", breakdown.Hours, breakdown.Minutes, breakdown.Seconds, verdict)
	case breakdown.Minutes > 0:
		text = fmt.Sprintf("%dm %ds %s than estimated", breakdown.Minutes, breakdown.Seconds, verdict)
	default:
		text = fmt.Sprintf("%ds %s than estimated", breakdown.Seconds, verdict)
	}

	return Difference{Breakdown: breakdown, IsFaster: isFaster, Text: text, Seconds: diff}
}
