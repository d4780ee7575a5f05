package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/pipeline"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// SyncOptions controls how files are pulled from Google Drive.
type SyncOptions struct {
	FolderID    string
	DownloadDir string
}

// SyncStatus describes the most recent sync.
type SyncStatus struct {
	LastRun    time.Time `json:"last_run"`
	Downloaded int       `json:"downloaded"`
	Completed  int       `json:"completed"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	Inserted   int       `json:"inserted"`
	Error      string    `json:"error,omitempty"`
}

// Syncer downloads new or changed spreadsheets from a Drive folder and imports them.
type Syncer struct {
	source       Source
	orchestrator *pipeline.Orchestrator
	opts         SyncOptions

	mu      sync.Mutex
	seen    map[string]string
	status  SyncStatus
	running bool
}

func NewSyncer(source Source, orchestrator *pipeline.Orchestrator, opts SyncOptions) *Syncer {
	return &Syncer{
		source:       source,
		orchestrator: orchestrator,
		opts:         opts,
		seen:         make(map[string]string),
	}
}

// ErrSyncRunning is returned when a sync is requested while one is in flight.
var ErrSyncRunning = fmt.Errorf("drive sync already running")

// Sync runs one download-and-import cycle.
func (s *Syncer) Sync(ctx context.Context) (SyncStatus, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return SyncStatus{}, ErrSyncRunning
	}
	s.running = true
	s.mu.Unlock()

	status, err := s.sync(ctx)
	status.LastRun = time.Now()
	if err != nil {
		status.Error = err.Error()
	}

	s.mu.Lock()
	s.running = false
	s.status = status
	s.mu.Unlock()
	return status, err
}

// Status returns the outcome of the last sync.
func (s *Syncer) Status() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Syncer) sync(ctx context.Context) (SyncStatus, error) {
	var status SyncStatus

	if s.opts.DownloadDir == "" {
		return status, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(s.opts.DownloadDir, 0755); err != nil {
		return status, fmt.Errorf("failed to create download dir: %w", err)
	}

	files, err := s.source.ListFiles(ctx, s.opts.FolderID)
	if err != nil {
		return status, err
	}

	var localPaths []string
	fetched := make(map[string]string)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return status, err
		}

		ext := strings.ToLower(filepath.Ext(f.Name))
		if ext != ".csv" && ext != ".xlsx" && ext != ".xlsm" {
			continue
		}
		if s.unchanged(f) {
			continue
		}

		localPath := filepath.Join(s.opts.DownloadDir, filepath.Base(f.Name))
		if err := s.download(ctx, f, localPath); err != nil {
			return status, err
		}
		localPaths = append(localPaths, localPath)
		fetched[localPath] = f.ID + "\x00" + f.ModifiedTime
	}

	status.Downloaded = len(localPaths)
	if len(localPaths) == 0 {
		log.Info().Str("folder", s.opts.FolderID).Msg("drive sync: nothing new")
		return status, nil
	}

	summary, err := s.orchestrator.Run(ctx, "", localPaths)
	if summary != nil {
		status.Completed = summary.Completed
		status.Failed = summary.Failed
		status.Skipped = summary.Skipped
		status.Inserted = summary.Inserted
		s.remember(summary, fetched)
	}
	return status, err
}

// download writes f to localPath. A partial file is removed on failure so the
// pipeline never picks it up.
func (s *Syncer) download(ctx context.Context, f *File, localPath string) (err error) {
	out, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local file %s: %w", localPath, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to write %s: %w", localPath, cerr)
		}
		if err != nil {
			os.Remove(localPath)
		}
	}()

	if err := s.source.DownloadFile(ctx, f.ID, out); err != nil {
		return fmt.Errorf("failed to download %s: %w", f.Name, err)
	}
	return nil
}

func (s *Syncer) unchanged(f *File) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	modified, ok := s.seen[f.ID]
	return ok && modified == f.ModifiedTime
}

// remember marks completed and skipped files as seen so failed ones are retried next cycle.
func (s *Syncer) remember(summary *pipeline.Summary, fetched map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range summary.Jobs {
		if job.Status == pipeline.FileStatusFailed {
			continue
		}
		id, modified, ok := strings.Cut(fetched[job.FilePath], "\x00")
		if ok {
			s.seen[id] = modified
		}
	}
}

// Schedule runs Sync on a cron spec until the returned stop function is called.
func (s *Syncer) Schedule(ctx context.Context, spec string) (func(), error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := s.Sync(ctx); err != nil {
			log.Error().Err(err).Msg("scheduled drive sync failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sync schedule %q: %w", spec, err)
	}
	c.Start()
	log.Info().Str("schedule", spec).Msg("drive sync scheduled")

	return func() {
		<-c.Stop().Done()
	}, nil
}
