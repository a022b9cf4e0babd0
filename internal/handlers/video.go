package handlers

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/transcodelab/transcribe-server/internal/proc"
	"github.com/transcodelab/transcribe-server/internal/queue"
	"github.com/transcodelab/transcribe-server/internal/types"
)

// VideoHandler accepts a remote video URL, extracts its audio with
// the extraction tool in the background, then queues the pipeline.
type VideoHandler struct {
	pool     *queue.WorkerPool
	registry *queue.Registry
	runner   proc.Runner
	ytdlp    string
	tempDir  string
}

// NewVideoHandler creates a new video-URL handler. An empty ytdlpPath
// falls back to the bare binary name.
func NewVideoHandler(pool *queue.WorkerPool, registry *queue.Registry, runner proc.Runner, ytdlpPath, tempDir string) *VideoHandler {
	if ytdlpPath == "" {
		ytdlpPath = "yt-dlp"
	}
	return &VideoHandler{pool: pool, registry: registry, runner: runner, ytdlp: ytdlpPath, tempDir: tempDir}
}

// VideoRequest is the request body.
type VideoRequest struct {
	URL      string `json:"url"`
	Name     string `json:"name"`
	Language string `json:"language"`
}

// Handle registers the job immediately and answers with its ID; the
// download and the pipeline run continue in the background.
func (h *VideoHandler) Handle(c *fiber.Ctx) error {
	var req VideoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
			"code":  "ERR_INVALID_BODY",
		})
	}

	if strings.TrimSpace(req.URL) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "URL is required",
			"code":  "ERR_NO_URL",
		})
	}
	if req.Name == "" {
		req.Name = "video"
	}

	jobID := uuid.New().String()
	tempPath := filepath.Join(h.tempDir, jobID+".m4a")

	job := queue.NewJob(jobID, req.Name, types.SourceVideo, tempPath, req.Language)
	job.VideoURL = req.URL
	h.registry.Add(job)

	go func() {
		if err := h.extractAudio(req.URL, tempPath); err != nil {
			log.Printf("audio extraction failed for job %s: %v", jobID, err)
			h.registry.SetFailure(jobID, types.StatusDownloadFailed, err)
			return
		}
		h.pool.Enqueue(job)
	}()

	return c.JSON(fiber.Map{
		"job_id":  jobID,
		"status":  "downloading",
		"message": "Audio extraction started (long videos can take a few minutes)",
	})
}

func (h *VideoHandler) extractAudio(url, outputPath string) error {
	log.Printf("extracting audio from %s", url)

	out, err := h.runner.Run(context.Background(), h.ytdlp,
		"-x",
		"--audio-format", "m4a",
		"-o", outputPath,
		url,
	)
	if err != nil {
		return types.ToolInvocationError("audio extraction failed", err)
	}
	if out.ExitCode != 0 {
		return types.ToolExitError(fmt.Sprintf("audio extraction failed with code %d: %s",
			out.ExitCode, strings.TrimSpace(out.Stderr)))
	}
	return nil
}
