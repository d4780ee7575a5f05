package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/salesperf/backend-go/internal/config"
	"github.com/andresuchdata/salesperf/backend-go/internal/domain"
	"github.com/andresuchdata/salesperf/backend-go/internal/pipeline"
	"github.com/andresuchdata/salesperf/backend-go/internal/service"
	"github.com/andresuchdata/salesperf/backend-go/internal/storage"
	"github.com/andresuchdata/salesperf/backend-go/pkg/logger"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
)

func pipelineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "schema",
			Usage: "Target dataset (invoices, customers, stock, orders, agreements); detected from file names when empty",
		},
		&cli.BoolFlag{
			Name:  "historical",
			Usage: "Mark imported invoice lines as previous-year history",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Number of files imported in parallel",
			Value: pipeline.DefaultConfig("").WorkerCount,
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import CSV or Excel files from disk",
		ArgsUsage: "<file or directory>...",
		Flags:     append(dbFlags(), pipelineFlags()...),
		Before:    initDB,
		After:     closeDB,
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("at least one file or directory is required")
			}
			files, err := collectFiles(c.Args().Slice())
			if err != nil {
				return err
			}
			return runPipeline(c, "import", files)
		},
	}
}

func importS3Command() *cli.Command {
	return &cli.Command{
		Name:  "import-s3",
		Usage: "Download files from the configured object storage and import them",
		Flags: append(append(dbFlags(), pipelineFlags()...),
			&cli.StringFlag{
				Name:    "prefix",
				Usage:   "Object key prefix to import",
				EnvVars: []string{"STORAGE_IMPORT_PREFIX"},
			},
			&cli.StringFlag{
				Name:  "download-dir",
				Usage: "Local directory for downloaded objects",
				Value: "./data/tmp/s3",
			},
		),
		Before: initDB,
		After:  closeDB,
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			client, err := storage.New(c.Context, cfg.Storage)
			if err != nil {
				return err
			}
			if client == nil {
				return fmt.Errorf("STORAGE_BACKEND is not configured")
			}

			prefix := strings.TrimSpace(c.String("prefix"))
			objects, err := client.ListObjects(c.Context, prefix)
			if err != nil {
				return fmt.Errorf("failed to list objects for prefix %s: %w", prefix, err)
			}

			var files []string
			for _, obj := range objects {
				if !importable(obj.Key) {
					continue
				}
				localPath := filepath.Join(c.String("download-dir"), objectRelativePath(prefix, obj.Key))
				if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
					return fmt.Errorf("failed to prepare directory for %s: %w", localPath, err)
				}
				if err := client.DownloadObject(c.Context, obj.Key, localPath); err != nil {
					return err
				}
				files = append(files, localPath)
			}
			if len(files) == 0 {
				return fmt.Errorf("no CSV or Excel files found for prefix %s", prefix)
			}
			return runPipeline(c, "import-s3", files)
		},
	}
}

// runPipeline imports files through the batch orchestrator with a progress bar.
func runPipeline(c *cli.Context, name string, files []string) error {
	cfg := config.Load()

	var schema domain.ImportSchema
	if raw := c.String("schema"); raw != "" {
		s, ok := domain.ParseImportSchema(raw)
		if !ok {
			return fmt.Errorf("unknown schema %q", raw)
		}
		schema = s
	}

	pcfg := pipeline.DefaultConfig(name)
	pcfg.WorkerCount = c.Int("workers")
	pcfg.IsCurrentYear = !c.Bool("historical")

	archive, err := storage.New(c.Context, cfg.Storage)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("upload archive unavailable, files will not be archived")
	}

	importer := service.NewImportService(storeFrom(c), storeFrom(c), storeFrom(c), archive, cfg.Storage.Prefix, reportCache())
	orchestrator := pipeline.NewOrchestrator(importer, pcfg)

	bar := progressbar.Default(int64(len(files)), "importing")
	orchestrator.OnFileDone(func(*pipeline.FileJob) {
		bar.Add(1)
	})

	summary, err := orchestrator.Run(c.Context, schema, files)
	bar.Finish()
	if summary != nil {
		printSummary(summary)
	}
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", summary.Failed, len(summary.Jobs))
	}
	return nil
}

func printSummary(summary *pipeline.Summary) {
	for _, job := range summary.Jobs {
		line := fmt.Sprintf("%-10s %-10s %s", job.Status, job.Schema, filepath.Base(job.FilePath))
		if job.Result != nil {
			line += fmt.Sprintf("  inserted=%d rejected=%d", job.Result.Inserted, len(job.Result.Rejected))
		}
		if job.ErrorMessage != "" {
			line += "  " + job.ErrorMessage
		}
		fmt.Println(line)
	}
	fmt.Printf("completed=%d failed=%d skipped=%d inserted=%d rejected=%d took=%s\n",
		summary.Completed, summary.Failed, summary.Skipped, summary.Inserted, summary.Rejected, summary.Duration.Round(time.Millisecond))
}

// collectFiles expands directories into the importable files below them.
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && importable(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

func importable(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx", ".xlsm":
		return true
	}
	return false
}

func objectRelativePath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	prefixTrimmed := strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	rel := strings.TrimPrefix(key, prefixTrimmed+"/")
	if rel == "" {
		return filepath.Base(key)
	}
	return rel
}
