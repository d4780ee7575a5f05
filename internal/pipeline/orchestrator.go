package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

var schemaHints = []struct {
	schema domain.ImportSchema
	hints  []string
}{
	{domain.SchemaAgreements, []string{"agreement", "wbc"}},
	{domain.SchemaCustomers, []string{"customer", "master"}},
	{domain.SchemaStock, []string{"stock", "inventory"}},
	{domain.SchemaOrders, []string{"order"}},
	{domain.SchemaInvoices, []string{"invoice", "sales", "billing"}},
}

// DetectSchema guesses the import schema from a file name.
func DetectSchema(fileName string) (domain.ImportSchema, bool) {
	name := strings.ToLower(filepath.Base(fileName))
	for _, h := range schemaHints {
		for _, hint := range h.hints {
			if strings.Contains(name, hint) {
				return h.schema, true
			}
		}
	}
	return "", false
}

// Orchestrator plans and runs a batch of file imports.
type Orchestrator struct {
	cfg    Config
	worker *Worker
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(importer Importer, cfg Config) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		worker: NewWorker(importer, cfg),
	}
}

// OnFileDone forwards per-file completion to fn.
func (o *Orchestrator) OnFileDone(fn func(*FileJob)) {
	o.worker.OnFileDone(fn)
}

// Plan assigns a schema to every file. When schema is empty it is detected from the
// name. Datasets that are replaced on import keep only their last file by name, the
// rest are skipped since they would be overwritten anyway.
func Plan(schema domain.ImportSchema, files []string) []*FileJob {
	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	jobs := make([]*FileJob, 0, len(sorted))
	lastReplace := make(map[domain.ImportSchema]*FileJob)
	for _, f := range sorted {
		job := &FileJob{FilePath: f, Status: FileStatusQueued, Schema: schema}
		if job.Schema == "" {
			detected, ok := DetectSchema(f)
			if !ok {
				job.Status = FileStatusSkipped
				job.ErrorMessage = "cannot detect import schema from file name"
				jobs = append(jobs, job)
				continue
			}
			job.Schema = detected
		}
		if job.Schema.Replaces() {
			if prev, ok := lastReplace[job.Schema]; ok {
				prev.Status = FileStatusSkipped
				prev.ErrorMessage = fmt.Sprintf("superseded by %s", filepath.Base(f))
			}
			lastReplace[job.Schema] = job
		}
		jobs = append(jobs, job)
	}
	return jobs
}

// Run imports files and returns the per-file outcome.
func (o *Orchestrator) Run(ctx context.Context, schema domain.ImportSchema, files []string) (*Summary, error) {
	start := time.Now()
	summary := &Summary{}
	if len(files) == 0 {
		return summary, nil
	}

	jobs := Plan(schema, files)
	queued := make([]*FileJob, 0, len(jobs))
	for _, job := range jobs {
		if job.Status == FileStatusQueued {
			queued = append(queued, job)
			continue
		}
		log.Info().Str("pipeline", o.cfg.Name).Str("file", job.FilePath).Msg(job.ErrorMessage)
		o.worker.finish(job)
	}

	log.Info().Str("pipeline", o.cfg.Name).Int("files", len(queued)).Msg("starting batch import")
	err := o.worker.processFilesParallel(ctx, queued)

	summary.Jobs = jobs
	for _, job := range jobs {
		summary.add(job)
	}
	summary.Duration = time.Since(start)

	log.Info().
		Str("pipeline", o.cfg.Name).
		Int("completed", summary.Completed).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Int("inserted", summary.Inserted).
		Dur("took", summary.Duration).
		Msg("batch import finished")

	if err != nil {
		return summary, err
	}
	return summary, nil
}
