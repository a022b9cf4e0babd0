package handlers

import (
	"errors"
	"os"

	"github.com/gofiber/fiber/v2"

	"github.com/transcodelab/transcribe-server/internal/storage"
)

// TranscriptHandler serves the flat transcript directory.
type TranscriptHandler struct {
	store *storage.TranscriptStore
}

// NewTranscriptHandler creates a new transcript handler.
func NewTranscriptHandler(store *storage.TranscriptStore) *TranscriptHandler {
	return &TranscriptHandler{store: store}
}

// List answers GET /transcripts with the stored filenames.
func (h *TranscriptHandler) List(c *fiber.Ctx) error {
	names, err := h.store.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list transcripts",
			"code":  "ERR_LIST_FAILED",
		})
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(fiber.Map{"transcripts": names})
}

// Get answers GET /transcripts/:name with one transcript's text.
func (h *TranscriptHandler) Get(c *fiber.Ctx) error {
	content, err := h.store.Read(c.Params("name"))
	switch {
	case errors.Is(err, storage.ErrBadName):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid transcript name",
			"code":  "ERR_BAD_NAME",
		})
	case errors.Is(err, os.ErrNotExist):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Transcript not found",
			"code":  "ERR_NOT_FOUND",
		})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read transcript",
			"code":  "ERR_READ_FAILED",
		})
	}
	return c.SendString(string(content))
}
