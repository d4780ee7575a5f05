package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// Worker imports files through an Importer with a bounded pool.
type Worker struct {
	importer Importer
	config   Config
	onDone   func(*FileJob)
	mu       sync.Mutex
}

// NewWorker creates a new import worker
func NewWorker(importer Importer, config Config) *Worker {
	return &Worker{
		importer: importer,
		config:   config,
	}
}

// OnFileDone registers a callback invoked once per finished job. Calls are serialized.
func (w *Worker) OnFileDone(fn func(*FileJob)) {
	w.onDone = fn
}

// processFilesParallel processes jobs using a worker pool. Per-file failures are
// recorded on the job; only cancellation aborts the batch.
func (w *Worker) processFilesParallel(ctx context.Context, jobs []*FileJob) error {
	workerCount := w.config.WorkerCount
	if workerCount < 1 {
		workerCount = 1
	}

	jobChan := make(chan *FileJob, len(jobs))
	var wg sync.WaitGroup

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range jobChan {
				if err := w.processFile(ctx, job); err != nil {
					log.Warn().Err(err).
						Str("pipeline", w.config.Name).
						Int("worker", workerID).
						Str("file", job.FilePath).
						Msg("file import failed")
				}
				w.finish(job)
			}
		}(i)
	}

	var enqueueErr error
	for _, job := range jobs {
		if ctx.Err() != nil {
			enqueueErr = ctx.Err()
			break
		}
		jobChan <- job
	}
	close(jobChan)

	wg.Wait()
	return enqueueErr
}

// processFile reads and imports a single file, retrying transient failures.
func (w *Worker) processFile(ctx context.Context, job *FileJob) error {
	startTime := time.Now()
	job.Status = FileStatusProcessing

	data, err := os.ReadFile(job.FilePath)
	if err != nil {
		return w.markJobFailed(job, fmt.Errorf("read failed: %w", err))
	}

	req := domain.ImportRequest{
		Schema:        job.Schema,
		FileName:      filepath.Base(job.FilePath),
		Data:          data,
		IsCurrentYear: w.config.IsCurrentYear,
	}

	attempts := w.config.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	for {
		job.Attempts++
		result, err := w.importer.Import(ctx, req)
		if err == nil {
			job.Result = result
			job.Status = FileStatusCompleted
			now := time.Now()
			job.ProcessedAt = &now
			log.Info().
				Str("pipeline", w.config.Name).
				Str("file", job.FilePath).
				Str("schema", string(job.Schema)).
				Int("inserted", result.Inserted).
				Int("rejected", len(result.Rejected)).
				Dur("took", time.Since(startTime)).
				Msg("file imported")
			return nil
		}

		if domain.IsValidationError(err) || job.Attempts >= attempts || ctx.Err() != nil {
			job.Result = result
			return w.markJobFailed(job, err)
		}

		log.Info().
			Str("pipeline", w.config.Name).
			Str("file", job.FilePath).
			Msgf("will retry (attempt %d/%d)", job.Attempts, attempts)

		select {
		case <-ctx.Done():
			return w.markJobFailed(job, ctx.Err())
		case <-time.After(w.config.RetryBackoff):
		}
	}
}

// markJobFailed marks a job as failed and returns err
func (w *Worker) markJobFailed(job *FileJob, err error) error {
	job.Status = FileStatusFailed
	job.ErrorMessage = err.Error()
	now := time.Now()
	job.ProcessedAt = &now
	return err
}

func (w *Worker) finish(job *FileJob) {
	if w.onDone == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onDone(job)
}
