package transcription

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/transcodelab/transcribe-server/internal/proc"
	"github.com/transcodelab/transcribe-server/internal/types"
)

type fakeRunner struct {
	outcome proc.Outcome
	err     error
	args    []string
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) (proc.Outcome, error) {
	r.args = append([]string{name}, args...)
	return r.outcome, r.err
}

func testCatalog() *ModelCatalog {
	return NewModelCatalog(map[string]string{
		"en": "models/vosk-model-small-en-us",
		"hi": "models/vosk-model-small-hi",
	}, "en")
}

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp3.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestModelCatalogResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		language string
		want     string
	}{
		{name: "known language", language: "hi", want: "models/vosk-model-small-hi"},
		{name: "case and space insensitive", language: "  HI ", want: "models/vosk-model-small-hi"},
		{name: "unknown falls back to default", language: "xx", want: "models/vosk-model-small-en-us"},
		{name: "empty falls back to default", language: "", want: "models/vosk-model-small-en-us"},
	}

	catalog := testCatalog()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := catalog.Resolve(tt.language); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.language, got, tt.want)
			}
		})
	}
}

func TestTranscribeSuccess(t *testing.T) {
	t.Parallel()

	audio := writeAudio(t)
	outputDir := t.TempDir()

	runner := &fakeRunner{outcome: proc.Outcome{
		Stdout: "  hello world \n",
		Stderr: "LOG (VoskAPI:ReadDataFiles():model.cc:213) Decoding params\n",
	}}
	tr := NewTranscriber(runner, "", "transcribe.py", testCatalog(), outputDir)

	record, err := tr.Transcribe(context.Background(), audio, "en")
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if record.Text != "hello world" {
		t.Errorf("Text = %q, want trimmed %q", record.Text, "hello world")
	}

	wantFile := filepath.Join(outputDir, "clip.mp3.wav.txt")
	if record.TranscriptFile != wantFile {
		t.Errorf("TranscriptFile = %q, want %q", record.TranscriptFile, wantFile)
	}
	content, err := os.ReadFile(wantFile)
	if err != nil {
		t.Fatalf("transcript file missing: %v", err)
	}
	if string(content) != "hello world" {
		t.Errorf("persisted transcript = %q, want %q", content, "hello world")
	}

	if _, statErr := os.Stat(audio); !os.IsNotExist(statErr) {
		t.Error("audio artifact should be deleted after transcription")
	}

	// Engine contract: <audio path> <model selector>.
	if len(runner.args) != 4 || runner.args[2] != audio || runner.args[3] != "models/vosk-model-small-en-us" {
		t.Errorf("invocation args = %v, want script, audio path, model dir", runner.args)
	}
}

func TestTranscribeNonZeroExit(t *testing.T) {
	t.Parallel()

	audio := writeAudio(t)
	runner := &fakeRunner{outcome: proc.Outcome{
		ExitCode: 1,
		Stdout:   "partial transcript that must be discarded",
		Stderr:   "LOG (VoskAPI:Init) loading\nTraceback: model not found\n",
	}}
	tr := NewTranscriber(runner, "", "transcribe.py", testCatalog(), t.TempDir())

	_, err := tr.Transcribe(context.Background(), audio, "en")

	var perr *types.PipelineError
	if !errors.As(err, &perr) || perr.Kind != types.KindToolExit {
		t.Fatalf("err = %v, want tool_exit PipelineError", err)
	}
	if !strings.Contains(perr.Message, "transcription process failed") {
		t.Errorf("message = %q, want transcription process failed", perr.Message)
	}
	if strings.Contains(perr.Message, "LOG (VoskAPI") {
		t.Errorf("benign recognizer log leaked into the error: %q", perr.Message)
	}
	if !strings.Contains(perr.Message, "model not found") {
		t.Errorf("real stderr content missing from the error: %q", perr.Message)
	}
	if _, statErr := os.Stat(audio); !os.IsNotExist(statErr) {
		t.Error("audio artifact must still be deleted before the rejection surfaces")
	}
}

func TestTranscribeSpawnError(t *testing.T) {
	t.Parallel()

	audio := writeAudio(t)
	runner := &fakeRunner{err: errors.New("exec: python3: not found")}
	tr := NewTranscriber(runner, "", "transcribe.py", testCatalog(), t.TempDir())

	_, err := tr.Transcribe(context.Background(), audio, "en")

	var perr *types.PipelineError
	if !errors.As(err, &perr) || perr.Kind != types.KindToolInvocation {
		t.Fatalf("err = %v, want tool_invocation PipelineError", err)
	}
}

func TestTranscribePersistenceFailure(t *testing.T) {
	t.Parallel()

	audio := writeAudio(t)
	runner := &fakeRunner{outcome: proc.Outcome{Stdout: "hello"}}
	// A nonexistent output directory forces the write to fail even
	// though recognition succeeded.
	tr := NewTranscriber(runner, "", "transcribe.py", testCatalog(),
		filepath.Join(t.TempDir(), "missing", "dir"))

	_, err := tr.Transcribe(context.Background(), audio, "en")

	var perr *types.PipelineError
	if !errors.As(err, &perr) || perr.Kind != types.KindPersistence {
		t.Fatalf("err = %v, want persistence PipelineError", err)
	}
}

func TestTranscribeDeleteFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	audio := writeAudio(t)
	runner := &fakeRunner{outcome: proc.Outcome{Stdout: "hello"}}
	tr := NewTranscriber(runner, "", "transcribe.py", testCatalog(), t.TempDir())
	tr.removeFile = func(string) error { return errors.New("busy") }

	record, err := tr.Transcribe(context.Background(), audio, "en")
	if err != nil {
		t.Fatalf("a failed artifact delete must not fail the transcription: %v", err)
	}
	if record.Text != "hello" {
		t.Errorf("Text = %q, want %q", record.Text, "hello")
	}
}
