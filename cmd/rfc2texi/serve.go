package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/rfc2texi/internal/api"
	"github.com/dgallion1/rfc2texi/internal/fetch"
	"github.com/dgallion1/rfc2texi/internal/pipeline"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the conversion HTTP server",
	Long: `Serve starts the HTTP API. Uploaded documents are queued, converted
by a worker pool, and available for download once finished.

Endpoints:
  GET  /health                        - liveness check
  POST /api/convert                   - upload a document, returns a job ID
  GET  /api/convert/{jobID}/status    - poll job state
  GET  /api/convert/{jobID}/result    - download the rendered Texinfo
  GET  /api/documents                 - list converted documents
  GET  /api/stats                     - conversion latency snapshot

Set api_key in the config (or RFC2TEXI_API_KEY) to require bearer
authentication on the /api routes.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "port to listen on (default: config port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	fetcher := fetch.NewClient(cfg.CacheDir, cfg.FetchTimeout, uint(cfg.FetchRetries), log)
	defer fetcher.Close()

	orch := pipeline.NewOrchestrator(cfg, fetcher, log)
	orch.Start(cmd.Context())

	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		<-cmd.Context().Done()
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting rfc2texi", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		return err
	}
	return nil
}
