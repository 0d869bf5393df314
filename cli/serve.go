package cli

import (
	"context"

	"github.com/spf13/cobra"

	"leadpipe/api"
	"leadpipe/httputil"
	"leadpipe/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
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

	clients := httputil.NewClients()

	traceClient := services.NewHTTPTraceClient(a.cfg.SkipTrace, clients.API)
	skiptrace := services.NewSkipTraceService(traceClient, store, a.logger,
		services.NewNormalizedSink(store),
		services.NewMirrorSink(store, a.cfg.Flags),
	)
	analysis := services.NewAnalysisService(a.cfg.OpenAI, clients.API)

	server := api.NewServer(a.cfg, store, skiptrace, analysis, a.logger)
	return server.Run()
}
