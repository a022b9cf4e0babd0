// Package duration probes media for its play length. Detectors never
// fail outward: every chain of attempts terminates in a best-effort
// number, falling back to a fixed default as the last resort.
package duration

import (
	"context"
	"encoding/json"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/transcodelab/transcribe-server/internal/proc"
)

// Fixed defaults returned when every probe attempt is exhausted.
const (
	DefaultAudioSeconds = 300
	DefaultVideoSeconds = 600
)

// attempt is one strategy in a detector's ordered chain. It returns
// (value, true) to resolve the chain or (_, false) to pass to the
// next strategy.
type attempt func(ctx context.Context, target string) (float64, bool)

// AudioDetector finds the duration of a local audio file. The primary
// strategy is an ffprobe metadata probe; if the probe call itself
// fails, a raw ffmpeg transcode pass is scraped for its Duration line.
type AudioDetector struct {
	runner  proc.Runner
	ffprobe string
	ffmpeg  string
}

// NewAudioDetector builds a detector around the given tool paths.
// Empty paths fall back to the bare binary names.
func NewAudioDetector(runner proc.Runner, ffprobePath, ffmpegPath string) *AudioDetector {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &AudioDetector{runner: runner, ffprobe: ffprobePath, ffmpeg: ffmpegPath}
}

// Detect returns the file's duration in seconds, possibly fractional.
// It always returns a value; DefaultAudioSeconds is the last resort.
func (d *AudioDetector) Detect(ctx context.Context, path string) float64 {
	for _, try := range []attempt{d.probeMetadata, d.scanTranscodeLog} {
		if v, ok := try(ctx, path); ok {
			return v
		}
	}
	return DefaultAudioSeconds
}

// probeFormat mirrors the format block of ffprobe's JSON output.
type probeFormat struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// probeMetadata runs ffprobe. A failed invocation passes the chain
// on; a successful probe with a missing or non-numeric duration field
// resolves to the default immediately, with no second attempt.
func (d *AudioDetector) probeMetadata(ctx context.Context, path string) (float64, bool) {
	out, err := d.runner.Run(ctx, d.ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		path,
	)
	if err != nil || out.ExitCode != 0 {
		log.Printf("ffprobe failed for %s (exit %d), trying transcode scan", path, out.ExitCode)
		return 0, false
	}

	var meta probeFormat
	if err := json.Unmarshal([]byte(out.Stdout), &meta); err != nil {
		log.Printf("ffprobe returned invalid metadata for %s, using default duration", path)
		return DefaultAudioSeconds, true
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(meta.Format.Duration), 64)
	if err != nil {
		log.Printf("ffprobe duration field unusable for %s, using default duration", path)
		return DefaultAudioSeconds, true
	}
	return seconds, true
}

var durationLine = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+(?:\.\d+)?)`)

// scanTranscodeLog runs a raw transcode pass with no output file and
// scrapes ffmpeg's diagnostic stream for the Duration line. The exit
// code is irrelevant here; ffmpeg exits non-zero without an output.
func (d *AudioDetector) scanTranscodeLog(ctx context.Context, path string) (float64, bool) {
	out, err := d.runner.Run(ctx, d.ffmpeg, "-i", path)
	if err != nil {
		return 0, false
	}

	m := durationLine.FindStringSubmatch(out.Stderr)
	if m == nil {
		return 0, false
	}

	hours, _ := strconv.ParseFloat(m[1], 64)
	minutes, _ := strconv.ParseFloat(m[2], 64)
	seconds, _ := strconv.ParseFloat(m[3], 64)
	return hours*3600 + minutes*60 + seconds, true
}
