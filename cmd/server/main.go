package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/transcodelab/transcribe-server/internal/cleanup"
	"github.com/transcodelab/transcribe-server/internal/converter"
	"github.com/transcodelab/transcribe-server/internal/duration"
	"github.com/transcodelab/transcribe-server/internal/estimate"
	"github.com/transcodelab/transcribe-server/internal/handlers"
	"github.com/transcodelab/transcribe-server/internal/proc"
	"github.com/transcodelab/transcribe-server/internal/queue"
	"github.com/transcodelab/transcribe-server/internal/storage"
	"github.com/transcodelab/transcribe-server/internal/transcription"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"server"`

	Tools struct {
		FFmpeg            string `yaml:"ffmpeg"`
		FFprobe           string `yaml:"ffprobe"`
		YtDlp             string `yaml:"ytdlp"`
		Python            string `yaml:"python"`
		TranscriberScript string `yaml:"transcriber_script"`
		TimeoutMinutes    int    `yaml:"timeout_minutes"`
	} `yaml:"tools"`

	Models struct {
		DefaultLanguage string            `yaml:"default_language"`
		Paths           map[string]string `yaml:"paths"`
	} `yaml:"models"`

	Estimate struct {
		OverheadSeconds         float64 `yaml:"overhead_seconds"`
		SpeedFactor             float64 `yaml:"speed_factor"`
		FallbackDurationSeconds float64 `yaml:"fallback_duration_seconds"`
	} `yaml:"estimate"`

	Workers struct {
		Count int `yaml:"count"`
	} `yaml:"workers"`

	Storage struct {
		TempDir   string `yaml:"temp_dir"`
		OutputDir string `yaml:"output_dir"`
	} `yaml:"storage"`

	Cleanup struct {
		IntervalMinutes int `yaml:"interval_minutes"`
		MaxAgeHours     int `yaml:"max_age_hours"`
	} `yaml:"cleanup"`

	Limits struct {
		MaxFileSizeMB int `yaml:"max_file_size_mb"`
	} `yaml:"limits"`
}

func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	config, err := loadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := cleanup.EnsureDir(config.Storage.TempDir); err != nil {
		log.Fatalf("Failed to create temp directory: %v", err)
	}

	// Custom logger setup
	logBuffer := &LogBuffer{lines: make([]string, 0, 1000)}
	log.SetOutput(io.MultiWriter(os.Stdout, logBuffer))

	log.Println("Initializing components...")

	// Transcript output directory, created once here. The directory
	// itself is the catalog; there is no database behind it.
	store, err := storage.NewTranscriptStore(config.Storage.OutputDir)
	if err != nil {
		log.Fatalf("Failed to prepare transcript directory: %v", err)
	}

	runner := proc.ExecRunner{}

	catalog := transcription.NewModelCatalog(config.Models.Paths, config.Models.DefaultLanguage)
	transcriber := transcription.NewTranscriber(runner,
		config.Tools.Python,
		config.Tools.TranscriberScript,
		catalog,
		store.Dir(),
	)

	registry := queue.NewRegistry()
	pool := queue.NewWorkerPool(
		config.Workers.Count,
		registry,
		converter.NewConverter(runner, config.Tools.FFmpeg),
		duration.NewAudioDetector(runner, config.Tools.FFprobe, config.Tools.FFmpeg),
		duration.NewVideoDetector(runner, config.Tools.YtDlp),
		estimate.NewEstimator(
			config.Estimate.OverheadSeconds,
			config.Estimate.SpeedFactor,
			config.Estimate.FallbackDurationSeconds,
		),
		transcriber,
		time.Duration(config.Tools.TimeoutMinutes)*time.Minute,
	)
	pool.Start()
	defer pool.Stop()

	sweeper := cleanup.NewScheduler(
		config.Storage.TempDir,
		time.Duration(config.Cleanup.IntervalMinutes)*time.Minute,
		time.Duration(config.Cleanup.MaxAgeHours)*time.Hour,
	)
	sweeper.Start()
	defer sweeper.Stop()

	app := fiber.New(fiber.Config{
		BodyLimit: config.Limits.MaxFileSizeMB * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	uploadHandler := handlers.NewUploadHandler(pool, config.Storage.TempDir, config.Limits.MaxFileSizeMB)
	videoHandler := handlers.NewVideoHandler(pool, registry, runner, config.Tools.YtDlp, config.Storage.TempDir)
	streamHandler := handlers.NewStreamHandler(pool, config.Storage.TempDir)
	jobHandler := handlers.NewJobHandler(registry)
	transcriptHandler := handlers.NewTranscriptHandler(store)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	app.Post("/transcribe/upload", uploadHandler.Handle)
	app.Post("/transcribe/video", videoHandler.Handle)
	app.Get("/ws/stream", websocket.New(streamHandler.Handle))

	app.Get("/jobs/:id", jobHandler.Handle)
	app.Get("/transcripts", transcriptHandler.List)
	app.Get("/transcripts/:name", transcriptHandler.Get)

	app.Get("/logs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"logs": logBuffer.GetLogs()})
	})

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	log.Printf("Server starting on %s", addr)
	log.Println("Endpoints:")
	log.Println("   POST /transcribe/upload - Upload a media file")
	log.Println("   POST /transcribe/video  - Transcribe a video URL")
	log.Println("   GET  /ws/stream         - WebSocket audio streaming")
	log.Println("   GET  /jobs/:id          - Job status and result")
	log.Println("   GET  /transcripts       - List transcript files")
	log.Println("   GET  /transcripts/:name - Read one transcript")
	log.Println("   GET  /logs              - View server logs")
	log.Println("   GET  /health            - Health check")

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		return app.Listen(addr)
	})
	g.Go(func() error {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigint:
			log.Println("Shutting down gracefully...")
			return app.Shutdown()
		case <-ctx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// loadConfig loads configuration from a YAML file and fills defaults.
func loadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(file, &config); err != nil {
		return nil, err
	}

	if config.Server.Host == "" {
		config.Server.Host = "0.0.0.0"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Workers.Count == 0 {
		config.Workers.Count = 2
	}
	if config.Storage.TempDir == "" {
		config.Storage.TempDir = "temp"
	}
	if config.Storage.OutputDir == "" {
		config.Storage.OutputDir = "transcripts"
	}
	if config.Cleanup.IntervalMinutes == 0 {
		config.Cleanup.IntervalMinutes = 30
	}
	if config.Cleanup.MaxAgeHours == 0 {
		config.Cleanup.MaxAgeHours = 6
	}
	if config.Limits.MaxFileSizeMB == 0 {
		config.Limits.MaxFileSizeMB = 200
	}
	if config.Models.DefaultLanguage == "" {
		config.Models.DefaultLanguage = "en"
	}
	if config.Tools.TranscriberScript == "" {
		config.Tools.TranscriberScript = "scripts/transcribe.py"
	}

	return &config, nil
}

// LogBuffer captures logs in memory for the /logs endpoint.
type LogBuffer struct {
	lines []string
	mu    sync.Mutex
}

func (lb *LogBuffer) Write(p []byte) (n int, err error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.lines = append(lb.lines, string(p))
	if len(lb.lines) > 1000 {
		lb.lines = lb.lines[len(lb.lines)-1000:]
	}
	return len(p), nil
}

func (lb *LogBuffer) GetLogs() []string {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	logs := make([]string, len(lb.lines))
	copy(logs, lb.lines)
	return logs
}
