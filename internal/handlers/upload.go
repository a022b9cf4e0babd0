package handlers

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/transcodelab/transcribe-server/internal/queue"
	"github.com/transcodelab/transcribe-server/internal/types"
)

// supportedExtensions is the media allow-list for uploads.
var supportedExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".m4a": true, ".ogg": true,
	".flac": true, ".webm": true, ".aac": true, ".wma": true,
	".mp4": true, ".mkv": true, ".opus": true,
}

// ValidMediaFormat reports whether the filename's extension is accepted.
func ValidMediaFormat(filename string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// UploadHandler accepts media files for transcription.
type UploadHandler struct {
	pool      *queue.WorkerPool
	tempDir   string
	maxSizeMB int
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(pool *queue.WorkerPool, tempDir string, maxSizeMB int) *UploadHandler {
	return &UploadHandler{pool: pool, tempDir: tempDir, maxSizeMB: maxSizeMB}
}

// Handle processes a multipart upload: "file" plus optional "name"
// and "language" fields. The file lands in the temp directory under a
// unique name and a job is queued.
func (h *UploadHandler) Handle(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded",
			"code":  "ERR_NO_FILE",
		})
	}

	name := c.FormValue("name")
	if name == "" {
		name = "untitled"
	}
	language := c.FormValue("language")

	if maxSize := int64(h.maxSizeMB) * 1024 * 1024; file.Size > maxSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("File too large (max %dMB)", h.maxSizeMB),
			"code":  "ERR_FILE_TOO_LARGE",
		})
	}

	if !ValidMediaFormat(file.Filename) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unsupported media format",
			"code":  "ERR_INVALID_FORMAT",
		})
	}

	jobID := uuid.New().String()
	tempPath := filepath.Join(h.tempDir, jobID+strings.ToLower(filepath.Ext(file.Filename)))

	if err := c.SaveFile(file, tempPath); err != nil {
		log.Printf("failed to save uploaded file: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save file",
			"code":  "ERR_SAVE_FAILED",
		})
	}

	h.pool.Enqueue(queue.NewJob(jobID, name, types.SourceUpload, tempPath, language))

	return c.JSON(fiber.Map{
		"job_id":  jobID,
		"status":  "queued",
		"message": "File uploaded successfully, processing started",
	})
}
