// Package transcription invokes the external speech-recognition
// engine and persists its transcript.
package transcription

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/transcodelab/transcribe-server/internal/proc"
	"github.com/transcodelab/transcribe-server/internal/types"
)

// voskLogMarker prefixes the recognizer's routine diagnostics on
// stderr. Lines carrying it are logged but never treated as errors.
const voskLogMarker = "LOG (VoskAPI"

// Transcriber runs the recognizer script against converted audio.
type Transcriber struct {
	runner    proc.Runner
	python    string
	script    string
	catalog   *ModelCatalog
	outputDir string

	removeFile func(string) error
}

// NewTranscriber builds a Transcriber. pythonPath defaults to
// "python3" when empty; outputDir must already exist (created once at
// startup).
func NewTranscriber(runner proc.Runner, pythonPath, scriptPath string, catalog *ModelCatalog, outputDir string) *Transcriber {
	if pythonPath == "" {
		pythonPath = "python3"
	}
	return &Transcriber{
		runner:     runner,
		python:     pythonPath,
		script:     scriptPath,
		catalog:    catalog,
		outputDir:  outputDir,
		removeFile: os.Remove,
	}
}

// Transcribe runs the engine on audioPath, writes the trimmed
// transcript to <outputDir>/<basename(audioPath)>.txt and returns the
// record. The audio file is deleted best-effort afterward; a failed
// delete never changes the outcome. A write failure after successful
// recognition still fails the call.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath, language string) (*types.TranscriptRecord, error) {
	modelDir := t.catalog.Resolve(language)

	out, err := t.runner.Run(ctx, t.python, t.script, audioPath, modelDir)

	// The transcript result is independent of cleanup success.
	t.deleteArtifact(audioPath)

	if err != nil {
		return nil, types.ToolInvocationError("transcription failed", err)
	}

	diag := t.filterDiagnostics(out.Stderr)
	if out.ExitCode != 0 {
		msg := "transcription process failed"
		if diag != "" {
			msg += ": " + diag
		}
		return nil, types.ToolExitError(msg)
	}

	text := strings.TrimSpace(out.Stdout)
	transcriptFile := filepath.Join(t.outputDir, filepath.Base(audioPath)+".txt")
	if err := os.WriteFile(transcriptFile, []byte(text), 0o644); err != nil {
		return nil, types.PersistenceError("failed to save transcript", err)
	}

	return &types.TranscriptRecord{Text: text, TranscriptFile: transcriptFile}, nil
}

// filterDiagnostics logs the engine's expected log lines and returns
// only the remainder, the part that may legitimately describe an
// error.
func (t *Transcriber) filterDiagnostics(stderr string) string {
	var rest []string
	for _, line := range strings.Split(stderr, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.Contains(trimmed, voskLogMarker) {
			log.Printf("recognizer: %s", trimmed)
			continue
		}
		rest = append(rest, trimmed)
	}
	return strings.Join(rest, "\n")
}

func (t *Transcriber) deleteArtifact(path string) {
	if err := t.removeFile(path); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to delete audio artifact %s: %v", path, err)
	}
}
