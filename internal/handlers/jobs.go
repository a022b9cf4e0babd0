package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/transcodelab/transcribe-server/internal/queue"
	"github.com/transcodelab/transcribe-server/internal/types"
)

// JobHandler serves job status lookups from the in-memory registry.
type JobHandler struct {
	registry *queue.Registry
}

// NewJobHandler creates a new job status handler.
func NewJobHandler(registry *queue.Registry) *JobHandler {
	return &JobHandler{registry: registry}
}

// Handle answers GET /jobs/:id.
func (h *JobHandler) Handle(c *fiber.Ctx) error {
	job, ok := h.registry.Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Job not found",
			"code":  "ERR_JOB_NOT_FOUND",
		})
	}

	body := fiber.Map{
		"job_id":     job.ID,
		"name":       job.Name,
		"source":     job.SourceType,
		"status":     job.Status,
		"created_at": job.CreatedAt,
	}
	if job.Error != nil {
		body["error"] = job.Error.Error()

		var perr *types.PipelineError
		if errors.As(job.Error, &perr) {
			body["error_kind"] = string(perr.Kind)
		}
	}
	if job.Result != nil {
		body["result"] = job.Result
	}
	return c.JSON(body)
}
