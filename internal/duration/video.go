package duration

import (
	"context"
	"log"
	"strings"

	"github.com/transcodelab/transcribe-server/internal/proc"
	"github.com/transcodelab/transcribe-server/internal/timeutil"
)

// VideoDetector finds the duration of a remote video by URL using the
// extraction tool, retrying once with its pre-formatted duration flag
// before giving up. It never fails outward.
type VideoDetector struct {
	runner proc.Runner
	ytdlp  string
}

// NewVideoDetector builds a detector around the given yt-dlp path.
// An empty path falls back to the bare binary name.
func NewVideoDetector(runner proc.Runner, ytdlpPath string) *VideoDetector {
	if ytdlpPath == "" {
		ytdlpPath = "yt-dlp"
	}
	return &VideoDetector{runner: runner, ytdlp: ytdlpPath}
}

// Detect returns the video's duration in seconds. A clean exit whose
// output does not parse to a positive number falls through the chain
// exactly like a process failure. DefaultVideoSeconds is the last
// resort.
func (d *VideoDetector) Detect(ctx context.Context, url string) float64 {
	for _, try := range []attempt{d.printDurationString, d.getDuration} {
		if v, ok := try(ctx, url); ok {
			return v
		}
	}
	log.Printf("duration unavailable for %s, using default", url)
	return DefaultVideoSeconds
}

func (d *VideoDetector) printDurationString(ctx context.Context, url string) (float64, bool) {
	return d.runAndParse(ctx, url, "--print", "duration_string")
}

func (d *VideoDetector) getDuration(ctx context.Context, url string) (float64, bool) {
	return d.runAndParse(ctx, url, "--get-duration")
}

func (d *VideoDetector) runAndParse(ctx context.Context, url string, flags ...string) (float64, bool) {
	args := append([]string{"--no-warnings", "--skip-download"}, flags...)
	args = append(args, url)

	out, err := d.runner.Run(ctx, d.ytdlp, args...)
	if err != nil || out.ExitCode != 0 {
		return 0, false
	}

	raw := strings.TrimSpace(out.Stdout)
	if raw == "" {
		return 0, false
	}
	if seconds := timeutil.ParseDurationToSeconds(raw); seconds > 0 {
		return seconds, true
	}
	return 0, false
}
