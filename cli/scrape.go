package cli

import (
	"context"

	"github.com/spf13/cobra"

	"leadpipe/httputil"
	"leadpipe/scraper"
	"leadpipe/services"
)

var scrapeSource string

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run source scrapes once and ingest the results",
	RunE:  runScrape,
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeSource, "source", "", "scrape a single source id (default: all)")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
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

	ingest := services.NewIngestService(store, a.cfg.Region, a.logger)
	o := scraper.NewOrchestrator(a.cfg, ops, ingest, archiver, httputil.NewClients(), a.logger)

	if scrapeSource != "" {
		return o.RunSource(ctx, scrapeSource)
	}
	return o.RunAll(ctx)
}
