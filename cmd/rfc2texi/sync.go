package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/rfc2texi/internal/dirfile"
	"github.com/dgallion1/rfc2texi/internal/fetch"
	"github.com/dgallion1/rfc2texi/internal/pipeline"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch and convert every configured document",
	Long: `Sync fetches each document listed in the configuration (RFC numbers,
draft names, or raw URLs), converts them to Texinfo in parallel, and
regenerates the Info dir menu over the successful conversions.

Fetched XML is cached under cache_dir and not downloaded again;
conversion always re-runs from the cached source.

Example config:
  specs:
    - rfc: 9000
    - draft: draft-ietf-quic-http-34
    - url: https://example.org/spec.xml
      name: example-spec`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

type syncReport struct {
	Converted int          `json:"converted" yaml:"converted"`
	Failed    int          `json:"failed" yaml:"failed"`
	DirFile   string       `json:"dir_file,omitempty" yaml:"dir_file,omitempty"`
	Documents []fileResult `json:"documents" yaml:"documents"`
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Specs) == 0 {
		return errors.New("nothing to sync: add a specs list to the config file")
	}

	log := newLogger()
	ctx := cmd.Context()

	fetcher := fetch.NewClient(cfg.CacheDir, cfg.FetchTimeout, uint(cfg.FetchRetries), log)
	defer fetcher.Close()

	orch := pipeline.NewOrchestrator(cfg, fetcher, log)
	orch.Start(ctx)
	defer orch.Stop()

	jobs := make([]*pipeline.Job, 0, len(cfg.Specs))
	for _, spec := range cfg.Specs {
		job := pipeline.NewSpecJob(spec)
		if err := orch.SubmitWait(ctx, job); err != nil {
			return err
		}
		jobs = append(jobs, job)
	}

	summary := syncReport{Documents: make([]fileResult, 0, len(jobs))}
	var entries []dirfile.Entry
	for _, job := range jobs {
		select {
		case <-job.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
		snap := job.Snapshot()
		summary.Documents = append(summary.Documents, resultFor(snap.Source, snap))
		if snap.Status != pipeline.StatusCompleted {
			summary.Failed++
			continue
		}
		summary.Converted++
		entries = append(entries, dirfile.Entry{
			InfoName: snap.InfoName,
			DocID:    snap.DocID,
			Title:    snap.Title,
		})
	}

	if len(entries) > 0 {
		summary.DirFile, err = dirfile.WriteFile(cfg.OutputDir, entries, cfg.DirCategory)
		if err != nil {
			return fmt.Errorf("write dir file: %w", err)
		}
	}

	if err := writeReport(summary); err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d documents failed", summary.Failed, len(jobs))
	}
	return nil
}
