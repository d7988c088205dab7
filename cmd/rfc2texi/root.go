package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/rfc2texi/internal/config"
	"github.com/dgallion1/rfc2texi/version"
)

var (
	cfgFile      string
	reportFormat string
)

var rootCmd = &cobra.Command{
	Use:   "rfc2texi",
	Short: "Convert RFC and Internet-Draft XML into Texinfo",
	Long: `rfc2texi converts RFC and Internet-Draft sources (RFCXML, with a
Markdown fallback) into GNU Texinfo documents readable in Info.

Each section becomes an Info node with ordered menus, in-document
cross-references become live links, and a dir menu is generated over
the converted set so documents are browsable side by side.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./rfc2texi.yaml or ~/.rfc2texi/rfc2texi.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&reportFormat, "report", "yaml", "report format: yaml or json",
	)

	// Set report format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setOutputFormat(reportFormat)
	}

	rootCmd.AddCommand(versionCmd)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
