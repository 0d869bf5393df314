package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"leadpipe/config"
	"leadpipe/logging"
	"leadpipe/storage"
)

var rootCmd = &cobra.Command{
	Use:           "leadpipe",
	Short:         "Foreclosure lead pipeline: scraping, migration, enrichment, API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app bundles what every command needs: loaded config and the shared logger.
type app struct {
	cfg    *config.Config
	logger *logrus.Logger
	logW   *logging.RotatingWriter
}

func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, rw := logging.New(cfg.LogLevel, cfg.LogPath, cfg.LogJSON)
	return &app{cfg: cfg, logger: logger, logW: rw}, nil
}

func (a *app) Close() {
	if a.logW != nil {
		a.logW.Close()
	}
}

func (a *app) openPostgres(ctx context.Context) (*storage.PostgresStore, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}
	store, err := storage.NewPostgresStore(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := store.InitSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func (a *app) openOps() (*storage.SQLiteStore, error) {
	return storage.NewSQLiteStore(a.cfg.OpsDBPath)
}

// openArchiver returns nil when archival is not configured.
func (a *app) openArchiver(ctx context.Context) (*storage.Archiver, error) {
	if !a.cfg.Archive.Enabled() {
		return nil, nil
	}
	return storage.NewArchiver(ctx, storage.ArchiveConfig{
		Bucket:          a.cfg.Archive.Bucket,
		Region:          a.cfg.Archive.Region,
		Endpoint:        a.cfg.Archive.Endpoint,
		AccessKeyID:     a.cfg.Archive.AccessKeyID,
		SecretAccessKey: a.cfg.Archive.SecretAccessKey,
	})
}
