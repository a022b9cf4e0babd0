// Package converter normalizes input media to the canonical audio
// format the speech engine expects: mono, 16kHz, signed 16-bit PCM WAV.
package converter

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/transcodelab/transcribe-server/internal/proc"
	"github.com/transcodelab/transcribe-server/internal/types"
)

// Fixed transcode target parameters.
const (
	sampleRate   = "16000"
	channels     = "1"
	audioCodec   = "pcm_s16le"
	outputFormat = "wav"
)

// Converter invokes the transcode tool. Whatever happens to the
// invocation, the raw input file is deleted exactly once.
type Converter struct {
	runner proc.Runner
	ffmpeg string

	removeFile func(string) error
}

// NewConverter builds a Converter around the given ffmpeg path. An
// empty path falls back to the bare binary name.
func NewConverter(runner proc.Runner, ffmpegPath string) *Converter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Converter{runner: runner, ffmpeg: ffmpegPath, removeFile: os.Remove}
}

// Convert transcodes inputPath to <inputPath>.wav and returns the
// output path. The input file is consumed: it is removed once the
// invocation finishes or fails to start, whichever comes first.
func (c *Converter) Convert(ctx context.Context, inputPath string) (string, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return "", types.NotFoundError("file not found: " + inputPath)
	}

	outputPath := inputPath + "." + outputFormat

	// Both the spawn-error path and the process-close path route
	// through this guard, so the input is never deleted twice.
	var once sync.Once
	cleanupInput := func() {
		once.Do(func() {
			if err := c.removeFile(inputPath); err != nil && !os.IsNotExist(err) {
				log.Printf("failed to delete conversion input %s: %v", inputPath, err)
			}
		})
	}
	defer cleanupInput()

	out, err := c.runner.Run(ctx, c.ffmpeg,
		"-i", inputPath,
		"-ar", sampleRate,
		"-ac", channels,
		"-c:a", audioCodec,
		"-y",
		outputPath,
	)
	if err != nil {
		cleanupInput()
		return "", types.ToolInvocationError("conversion failed", err).WithCleanup(outputPath)
	}
	cleanupInput()

	if out.ExitCode != 0 {
		msg := fmt.Sprintf("conversion failed with code %d", out.ExitCode)
		if diag := strings.TrimSpace(out.Stderr); diag != "" {
			msg += ": " + diag
		}
		return "", types.ToolExitError(msg).WithCleanup(outputPath)
	}

	if _, err := os.Stat(outputPath); err != nil {
		return "", types.ArtifactMissingError("output not created")
	}
	return outputPath, nil
}
