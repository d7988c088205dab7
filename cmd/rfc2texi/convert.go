package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/dgallion1/rfc2texi/internal/parser"
	"github.com/dgallion1/rfc2texi/internal/pipeline"
)

var (
	convertOutputDir      string
	convertFormat         string
	convertWatch          bool
	convertFailUnresolved bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [file ...]",
	Short: "Convert local documents to Texinfo",
	Long: `Convert reads each file, renders it to Texinfo, and writes the
result into the output directory as <name>.texi. A document either
converts completely or produces no output.

With --watch, the named files are reconverted whenever they change.

Examples:
  rfc2texi convert rfc9000.xml
  rfc2texi convert --watch draft-ietf-quic-http.xml
  rfc2texi convert --format markdown notes.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(
		&convertOutputDir, "output-dir", "o", "", "directory for .texi output (default: config output_dir)",
	)
	convertCmd.Flags().StringVar(
		&convertFormat, "format", "", "source format override: xml or markdown",
	)
	convertCmd.Flags().BoolVar(
		&convertWatch, "watch", false, "reconvert whenever a source file changes",
	)
	convertCmd.Flags().BoolVar(
		&convertFailUnresolved, "fail-unresolved", false, "treat unresolved references as fatal",
	)
	rootCmd.AddCommand(convertCmd)
}

// fileResult is the per-file entry of the conversion report.
type fileResult struct {
	File        string   `json:"file" yaml:"file"`
	Status      string   `json:"status" yaml:"status"`
	Title       string   `json:"title,omitempty" yaml:"title,omitempty"`
	DocID       string   `json:"doc_id,omitempty" yaml:"doc_id,omitempty"`
	Output      string   `json:"output,omitempty" yaml:"output,omitempty"`
	Diagnostics []string `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Errors      []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if convertOutputDir != "" {
		cfg.OutputDir = convertOutputDir
	}
	if convertFailUnresolved {
		cfg.UnresolvedFatal = true
	}

	format := parser.Format(convertFormat)
	if convertFormat != "" {
		if _, err := parser.ForFormat(format); err != nil {
			return err
		}
	} else {
		for _, path := range args {
			if !parser.IsSupportedExtension(path) {
				return fmt.Errorf("unsupported file type: %s", path)
			}
		}
	}

	orch := pipeline.NewOrchestrator(cfg, nil, newLogger())
	orch.Start(cmd.Context())
	defer orch.Stop()

	results, err := convertFiles(cmd.Context(), orch, args, format)
	if err != nil {
		return err
	}
	if err := writeReport(results); err != nil {
		return err
	}

	if convertWatch {
		return watchFiles(cmd, orch, args, format)
	}

	failed := 0
	for _, r := range results {
		if r.Status != string(pipeline.StatusCompleted) {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", failed, len(results))
	}
	return nil
}

// convertFiles submits one upload job per path and waits for all of
// them to finish.
func convertFiles(ctx context.Context, orch *pipeline.Orchestrator, paths []string, format parser.Format) ([]fileResult, error) {
	jobs := make([]*pipeline.Job, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		job := pipeline.NewUploadJob(filepath.Base(path), data)
		if format != "" {
			job.SetFormat(format)
		}
		if err := orch.SubmitWait(ctx, job); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	results := make([]fileResult, 0, len(jobs))
	for i, job := range jobs {
		select {
		case <-job.Done():
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		results = append(results, resultFor(paths[i], job.Snapshot()))
	}
	return results, nil
}

func resultFor(path string, snap pipeline.JobSnapshot) fileResult {
	r := fileResult{
		File:   path,
		Status: string(snap.Status),
		Title:  snap.Title,
		DocID:  snap.DocID,
		Output: snap.OutputPath,
		Errors: snap.Errors,
	}
	for _, d := range snap.Diagnostics {
		r.Diagnostics = append(r.Diagnostics, d.String())
	}
	return r
}

// watchFiles blocks reconverting the named files as they change,
// until the command context ends.
func watchFiles(cmd *cobra.Command, orch *pipeline.Orchestrator, paths []string, format parser.Format) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	watched := make(map[string]bool, len(paths))
	for _, path := range paths {
		watched[filepath.Clean(path)] = true
		// Watch the directory: editors replace files rather than
		// write them in place.
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}
	cmd.PrintErrf("watching %d file(s), Ctrl-C to stop\n", len(paths))

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			path := filepath.Clean(ev.Name)
			if !watched[path] {
				continue
			}
			results, err := convertFiles(ctx, orch, []string{path}, format)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				cmd.PrintErrf("reconvert %s: %v\n", path, err)
				continue
			}
			if err := writeReport(results); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmd.PrintErrf("watch error: %v\n", err)
		}
	}
}
