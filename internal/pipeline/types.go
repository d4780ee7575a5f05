package pipeline

import (
	"context"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
)

// Importer turns one file into stored records. The service layer implements it.
type Importer interface {
	Import(ctx context.Context, req domain.ImportRequest) (*domain.ImportResult, error)
}

// Config holds configuration for a batch import run
type Config struct {
	Name          string
	WorkerCount   int           // Number of concurrent workers
	RetryAttempts int           // Number of attempts per file for transient failures
	RetryBackoff  time.Duration // Backoff duration between retries
	IsCurrentYear bool          // Flag stamped on imported invoice lines
}

// DefaultConfig returns sensible defaults
func DefaultConfig(name string) Config {
	return Config{
		Name:          name,
		WorkerCount:   4,
		RetryAttempts: 3,
		RetryBackoff:  2 * time.Second,
		IsCurrentYear: true,
	}
}

// FileJobStatus represents the state of a single file import
type FileJobStatus string

const (
	FileStatusQueued     FileJobStatus = "queued"
	FileStatusProcessing FileJobStatus = "processing"
	FileStatusCompleted  FileJobStatus = "completed"
	FileStatusFailed     FileJobStatus = "failed"
	FileStatusSkipped    FileJobStatus = "skipped"
)

// FileJob tracks the import of a single file
type FileJob struct {
	FilePath     string
	Schema       domain.ImportSchema
	Status       FileJobStatus
	Attempts     int
	Result       *domain.ImportResult
	ErrorMessage string
	ProcessedAt  *time.Time
}

// Summary totals a batch run
type Summary struct {
	Jobs      []*FileJob
	Completed int
	Failed    int
	Skipped   int
	Inserted  int
	Rejected  int
	Duration  time.Duration
}

func (s *Summary) add(job *FileJob) {
	switch job.Status {
	case FileStatusCompleted:
		s.Completed++
	case FileStatusFailed:
		s.Failed++
	case FileStatusSkipped:
		s.Skipped++
	}
	if job.Result != nil {
		s.Inserted += job.Result.Inserted
		s.Rejected += len(job.Result.Rejected)
	}
}
