package handlers

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/transcodelab/transcribe-server/internal/queue"
	"github.com/transcodelab/transcribe-server/internal/types"
)

// StreamHandler accepts audio over a WebSocket: binary frames carry
// the media bytes, text frames carry control ("END" finalizes,
// "LANG:<code>" sets the language, anything else names the job).
type StreamHandler struct {
	pool    *queue.WorkerPool
	tempDir string
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(pool *queue.WorkerPool, tempDir string) *StreamHandler {
	return &StreamHandler{pool: pool, tempDir: tempDir}
}

// Handle processes one WebSocket connection.
func (h *StreamHandler) Handle(c *websocket.Conn) {
	defer c.Close()

	var (
		buffer   bytes.Buffer
		name     string
		language string
		jobID    = uuid.New().String()
	)

	log.Printf("stream connection established: %s", jobID)

read:
	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Printf("stream read error: %v", err)
			break
		}

		switch messageType {
		case websocket.TextMessage:
			msg := string(message)
			if msg == "END" {
				break read
			}
			if code, ok := strings.CutPrefix(msg, "LANG:"); ok {
				language = code
				continue
			}
			if len(msg) > 0 && len(msg) < 200 {
				name = msg
			}
		case websocket.BinaryMessage:
			buffer.Write(message)
		}
	}

	if buffer.Len() == 0 {
		log.Printf("no audio data received in stream %s", jobID)
		return
	}
	if name == "" {
		name = "stream_recording"
	}

	tempPath := filepath.Join(h.tempDir, jobID+".webm")
	if err := os.WriteFile(tempPath, buffer.Bytes(), 0o644); err != nil {
		log.Printf("failed to save stream buffer: %v", err)
		return
	}
	log.Printf("stream saved to %s (%d bytes)", tempPath, buffer.Len())

	h.pool.Enqueue(queue.NewJob(jobID, name, types.SourceStream, tempPath, language))

	_ = c.WriteMessage(websocket.TextMessage,
		[]byte(fmt.Sprintf(`{"job_id":%q,"status":"queued"}`, jobID)))
}
