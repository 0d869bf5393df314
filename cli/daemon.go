package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"leadpipe/httputil"
	"leadpipe/scheduler"
	"leadpipe/scraper"
	"leadpipe/services"
	"leadpipe/workers"
)

const (
	enrichmentBatchSize = 10
	enrichmentInterval  = 5 * time.Minute
	crmBatchSize        = 20
	crmInterval         = 10 * time.Minute
	healthcheckInterval = 1 * time.Hour
	propertyStaleAfter  = 30 * 24 * time.Hour
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run scheduled scrapes and background workers until interrupted",
	RunE:  runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := a.openPostgres(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	ops, err := a.openOps()
	if err != nil {
		return err
	}
	defer ops.Close()

	archiver, err := a.openArchiver(ctx)
	if err != nil {
		return err
	}

	clients := httputil.NewClients()

	ingest := services.NewIngestService(store, a.cfg.Region, a.logger)
	orchestrator := scraper.NewOrchestrator(a.cfg, ops, ingest, archiver, clients, a.logger)

	sched := scheduler.New(a.cfg, orchestrator, a.logger)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	traceClient := services.NewHTTPTraceClient(a.cfg.SkipTrace, clients.API)
	skiptrace := services.NewSkipTraceService(traceClient, store, a.logger,
		services.NewNormalizedSink(store),
		services.NewMirrorSink(store, a.cfg.Flags),
	)

	go workers.NewEnrichmentWorker(store, skiptrace, a.logger).Run(ctx, enrichmentBatchSize, enrichmentInterval)
	go workers.NewHealthcheckWorker(store, propertyStaleAfter, a.logger).Run(ctx, healthcheckInterval)

	if a.cfg.CRM.APIKey != "" {
		crm := services.NewCRMClient(a.cfg.CRM, clients.API)
		go workers.NewCRMWorker(store, crm, a.logger).Run(ctx, crmBatchSize, crmInterval)
	} else {
		a.logger.Info("GHL_API_KEY not set, CRM sync disabled")
	}

	a.logger.Info("Daemon running")
	<-ctx.Done()
	a.logger.Info("Shutting down")
	return nil
}
