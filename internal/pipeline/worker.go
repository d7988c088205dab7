package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dgallion1/rfc2texi/internal/config"
	"github.com/dgallion1/rfc2texi/internal/convert"
	"github.com/dgallion1/rfc2texi/internal/fetch"
)

// Worker processes a single conversion job.
type Worker struct {
	fetcher *fetch.Client
	cfg     config.Config
	stats   *ConversionStats
	log     *slog.Logger
}

func NewWorker(fetcher *fetch.Client, cfg config.Config, stats *ConversionStats, log *slog.Logger) *Worker {
	return &Worker{
		fetcher: fetcher,
		cfg:     cfg,
		stats:   stats,
		log:     log,
	}
}

// Process runs the full conversion pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "source", job.Source)

	// Phase 1: Acquire the source text.
	data := job.FileData()
	hint := job.Source
	if spec := job.Spec(); spec != nil {
		job.SetStatus(StatusFetching, "fetching document")
		path, err := w.fetchSpec(ctx, *spec)
		if err != nil {
			log.Error("fetch failed", "error", err)
			w.fail(job, "fetching", fmt.Sprintf("fetch: %s", err))
			return
		}
		hint = filepath.Base(path)
		data, err = os.ReadFile(path)
		if err != nil {
			log.Error("read cached document failed", "error", err)
			w.fail(job, "fetching", fmt.Sprintf("read: %s", err))
			return
		}
	}

	// Phase 2: Convert.
	job.SetStatus(StatusConverting, "converting")
	start := time.Now()
	res, err := convert.Convert(data, convert.Options{
		Format:          job.Format(),
		FilenameHint:    hint,
		UnresolvedFatal: w.cfg.UnresolvedFatal,
		DirCategory:     w.cfg.DirCategory,
	})
	if err != nil {
		log.Error("conversion failed", "error", err)
		w.fail(job, "converting", err.Error())
		return
	}

	// Phase 3: Write the output file.
	outputPath, err := w.writeOutput(res.InfoName+".texi", res.Texinfo)
	if err != nil {
		log.Error("write output failed", "error", err)
		w.fail(job, "writing output", err.Error())
		return
	}

	job.AddDiagnostics(res.Report.Diagnostics)
	job.SetResult(res.Title, res.DocID, res.InfoName, outputPath)
	w.stats.Record(time.Since(start))
	log.Info("conversion complete",
		"doc_id", res.DocID,
		"output", outputPath,
		"diagnostics", res.Report.Len(),
	)
	job.SetStatus(StatusCompleted, "done")
}

func (w *Worker) fail(job *Job, phase, msg string) {
	w.stats.RecordFailure()
	job.AddError(msg)
	job.SetStatus(StatusFailed, phase)
}

func (w *Worker) fetchSpec(ctx context.Context, spec config.SpecRef) (string, error) {
	switch {
	case spec.RFC > 0:
		return w.fetcher.RFC(ctx, spec.RFC)
	case spec.Draft != "":
		return w.fetcher.Draft(ctx, spec.Draft)
	case spec.URL != "":
		return w.fetcher.URL(ctx, spec.URL, spec.Name)
	}
	return "", fmt.Errorf("empty spec")
}

// writeOutput writes the rendered document into the output directory.
// The file appears atomically under its final name.
func (w *Worker) writeOutput(name string, data []byte) (string, error) {
	if err := os.MkdirAll(w.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	dest := filepath.Join(w.cfg.OutputDir, name)

	tmp, err := os.CreateTemp(w.cfg.OutputDir, name+".tmp*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("move into place: %w", err)
	}
	return dest, nil
}
