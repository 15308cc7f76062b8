package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/vhi-dashboard/internal/config"
	"github.com/couchcryptid/vhi-dashboard/internal/domain"
	"github.com/couchcryptid/vhi-dashboard/internal/ingest"
	"github.com/couchcryptid/vhi-dashboard/internal/observability"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// app is the state shared by every subcommand once the root has loaded
// configuration.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	dataDir string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "vhictl",
		Short:         "Manage NOAA vegetation health source data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = observability.NewLoggerTo(cmd.ErrOrStderr(), cfg)
			a.metrics = observability.NewLocalMetrics()
			if a.dataDir == "" {
				a.dataDir = cfg.DataDir
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "source directory (default $DATA_DIR)")

	cmd.AddCommand(newFetchCmd(a))
	cmd.AddCommand(newIngestCmd(a))
	cmd.AddCommand(newRegionsCmd(a))
	cmd.AddCommand(newExportCmd(a))
	cmd.AddCommand(newPublishCmd(a))
	return cmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		stop()
		os.Exit(1)
	}
}

// load runs one ingestion pass over the data directory.
func (a *app) load(ctx context.Context) (*domain.Dataset, error) {
	loader, err := ingest.NewLoader(a.cfg.DataPattern, domain.Catalog, a.logger, a.metrics)
	if err != nil {
		return nil, err
	}
	return loader.Load(ctx, a.dataDir)
}

// writeStructured encodes v as "json" or "yaml".
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
