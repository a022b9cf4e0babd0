package types

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies a pipeline failure without parsing message text.
type ErrorKind string

const (
	// KindNotFound means an expected input artifact was missing before
	// the stage started; no process was spawned.
	KindNotFound ErrorKind = "not_found"

	// KindToolInvocation means the external process could not be
	// started at all (binary missing, exec failure).
	KindToolInvocation ErrorKind = "tool_invocation"

	// KindToolExit means the external process ran but exited non-zero.
	KindToolExit ErrorKind = "tool_exit"

	// KindArtifactMissing means the process exited cleanly but did not
	// produce the expected output file.
	KindArtifactMissing ErrorKind = "artifact_missing"

	// KindPersistence means a post-success step (writing the
	// transcript) failed after the real work already succeeded.
	KindPersistence ErrorKind = "persistence"
)

// PipelineError is the one error type pipeline stages fail with. It
// carries an HTTP-equivalent status and the paths the orchestrator
// must delete, so nothing downstream has to re-derive either from the
// message.
type PipelineError struct {
	Kind           ErrorKind
	Message        string
	StatusCode     int
	CleanupTargets []string
	Err            error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PipelineError) Unwrap() error { return e.Err }

// WithCleanup returns e with extra cleanup targets attached.
func (e *PipelineError) WithCleanup(paths ...string) *PipelineError {
	for _, p := range paths {
		if p != "" {
			e.CleanupTargets = append(e.CleanupTargets, p)
		}
	}
	return e
}

// NotFoundError reports a missing input artifact.
func NotFoundError(message string) *PipelineError {
	return &PipelineError{Kind: KindNotFound, Message: message, StatusCode: http.StatusNotFound}
}

// ToolInvocationError reports a process that could not be started.
func ToolInvocationError(message string, err error) *PipelineError {
	return &PipelineError{Kind: KindToolInvocation, Message: message, StatusCode: http.StatusInternalServerError, Err: err}
}

// ToolExitError reports a process that ran and exited non-zero.
func ToolExitError(message string) *PipelineError {
	return &PipelineError{Kind: KindToolExit, Message: message, StatusCode: http.StatusInternalServerError}
}

// ArtifactMissingError reports a clean exit with no output artifact.
func ArtifactMissingError(message string) *PipelineError {
	return &PipelineError{Kind: KindArtifactMissing, Message: message, StatusCode: http.StatusInternalServerError}
}

// PersistenceError reports a failure after the real work succeeded.
func PersistenceError(message string, err error) *PipelineError {
	return &PipelineError{Kind: KindPersistence, Message: message, StatusCode: http.StatusInternalServerError, Err: err}
}
