// Package queue sequences the transcription pipeline: convert, probe
// duration, estimate, transcribe, compare. Stages inside one run are
// strictly sequential; runs are independent of each other.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/transcodelab/transcribe-server/internal/estimate"
	"github.com/transcodelab/transcribe-server/internal/types"
)

// Converter normalizes an input media file to canonical audio.
type Converter interface {
	Convert(ctx context.Context, inputPath string) (string, error)
}

// AudioDurationDetector probes a local audio file for its duration.
type AudioDurationDetector interface {
	Detect(ctx context.Context, path string) float64
}

// VideoDurationDetector probes a remote video URL for its duration.
type VideoDurationDetector interface {
	Detect(ctx context.Context, url string) float64
}

// Transcriber runs the speech engine on converted audio.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) (*types.TranscriptRecord, error)
}

// WorkerPool runs pipeline jobs from a buffered queue.
type WorkerPool struct {
	jobQueue    chan *Job
	workerCount int
	registry    *Registry

	converter     Converter
	audioDetector AudioDurationDetector
	videoDetector VideoDurationDetector
	estimator     *estimate.Estimator
	transcriber   Transcriber

	stageTimeout time.Duration
}

// NewWorkerPool wires the pipeline stages into a pool. stageTimeout
// bounds each external invocation; zero disables the bound.
func NewWorkerPool(
	workerCount int,
	registry *Registry,
	converter Converter,
	audioDetector AudioDurationDetector,
	videoDetector VideoDurationDetector,
	estimator *estimate.Estimator,
	transcriber Transcriber,
	stageTimeout time.Duration,
) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &WorkerPool{
		jobQueue:      make(chan *Job, 100),
		workerCount:   workerCount,
		registry:      registry,
		converter:     converter,
		audioDetector: audioDetector,
		videoDetector: videoDetector,
		estimator:     estimator,
		transcriber:   transcriber,
		stageTimeout:  stageTimeout,
	}
}

// Start launches the workers.
func (wp *WorkerPool) Start() {
	log.Printf("starting worker pool with %d workers", wp.workerCount)
	for i := 0; i < wp.workerCount; i++ {
		go wp.worker(i)
	}
}

// Stop closes the queue; running jobs finish, idle workers exit.
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
}

// Enqueue registers and queues a job.
func (wp *WorkerPool) Enqueue(job *Job) {
	wp.registry.Add(job)
	wp.jobQueue <- job
	log.Printf("job %s enqueued (source: %s, name: %s)", job.ID, job.SourceType, job.Name)
}

func (wp *WorkerPool) worker(id int) {
	log.Printf("worker %d started", id)

	for job := range wp.jobQueue {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("worker %d: panic processing job %s: %v\n%s",
						id, job.ID, r, string(debug.Stack()))
					wp.registry.SetFailure(job.ID, types.StatusTranscribeFailed,
						fmt.Errorf("worker panic: %v", r))
					wp.removeQuiet(job.FilePath)
				}
			}()

			wp.processJob(id, job)
		}()
	}
}

// processJob walks one job through the pipeline state machine. There
// are no retries at this layer; the duration detectors own their
// bounded fallback chains internally.
func (wp *WorkerPool) processJob(workerID int, job *Job) {
	log.Printf("worker %d: processing job %s", workerID, job.ID)
	start := time.Now()

	wp.registry.SetStatus(job.ID, types.StatusConverting)
	ctx, cancel := wp.stageContext()
	audioPath, err := wp.converter.Convert(ctx, job.FilePath)
	cancel()
	if err != nil {
		wp.fail(workerID, job, types.StatusConvertFailed, err)
		return
	}

	ctx, cancel = wp.stageContext()
	var mediaSeconds float64
	if job.SourceType == types.SourceVideo && job.VideoURL != "" {
		mediaSeconds = wp.videoDetector.Detect(ctx, job.VideoURL)
	} else {
		mediaSeconds = wp.audioDetector.Detect(ctx, audioPath)
	}
	cancel()

	est := wp.estimator.EstimateProcessingTime(mediaSeconds)
	log.Printf("worker %d: job %s media duration %.1fs, estimated processing %ds",
		workerID, job.ID, mediaSeconds, est.Breakdown.TotalSeconds)

	wp.registry.SetStatus(job.ID, types.StatusTranscribing)
	ctx, cancel = wp.stageContext()
	record, err := wp.transcriber.Transcribe(ctx, audioPath, job.Language)
	cancel()
	if err != nil {
		wp.fail(workerID, job, types.StatusTranscribeFailed, err)
		return
	}

	actual := time.Since(start).Seconds()
	diff := estimate.TimeDifference(actual, float64(est.Breakdown.TotalSeconds))

	wp.registry.SetResult(job.ID, &types.PipelineResult{
		JobID:            job.ID,
		TranscriptFile:   record.TranscriptFile,
		WordCount:        len(strings.Fields(record.Text)),
		DurationSeconds:  mediaSeconds,
		Estimated:        est.Breakdown,
		EstimateFallback: est.UsedFallback,
		ActualSeconds:    actual,
		Difference:       diff.Text,
		IsFaster:         diff.IsFaster,
		ProcessedAt:      time.Now(),
	})
	log.Printf("worker %d: job %s completed (%s)", workerID, job.ID, diff.Text)
}

// fail records the terminal failure and performs the cleanup the
// error asks for, forwarding the error itself unmodified.
func (wp *WorkerPool) fail(workerID int, job *Job, status string, err error) {
	log.Printf("worker %d: job %s failed: %v", workerID, job.ID, err)

	var perr *types.PipelineError
	if errors.As(err, &perr) {
		for _, target := range perr.CleanupTargets {
			wp.removeQuiet(target)
		}
	}
	wp.removeQuiet(job.FilePath)

	wp.registry.SetFailure(job.ID, status, err)
}

func (wp *WorkerPool) removeQuiet(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to clean up %s: %v", path, err)
	}
}

func (wp *WorkerPool) stageContext() (context.Context, context.CancelFunc) {
	if wp.stageTimeout > 0 {
		return context.WithTimeout(context.Background(), wp.stageTimeout)
	}
	return context.WithCancel(context.Background())
}
