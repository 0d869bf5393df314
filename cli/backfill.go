package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"leadpipe/backfill"
	"leadpipe/models"
)

var backfillApply bool

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Migrate legacy foreclosure rows into the normalized schema",
	Long: `Reads every legacy foreclosure row, deduplicates by normalized address,
and synthesizes properties, distress events, contacts and pipeline rows.

Runs in dry-run mode by default: full computation and report, no writes.
Pass --apply to persist.`,
	RunE: runBackfill,
}

func init() {
	backfillCmd.Flags().BoolVar(&backfillApply, "apply", false, "write results to the database (default is dry-run)")
	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(cmd *cobra.Command, args []string) error {
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

	run := &models.BackfillRun{
		StartedAt: time.Now(),
		DryRun:    !backfillApply,
		Status:    models.RunStatusRunning,
	}
	runID, err := ops.CreateBackfillRun(run)
	if err != nil {
		return fmt.Errorf("record backfill run: %w", err)
	}
	run.ID = runID

	o := backfill.NewOrchestrator(store, a.cfg.Region, a.logger, backfillApply)
	stats, checks, runErr := o.Run(ctx)

	now := time.Now()
	run.FinishedAt = &now
	run.Status = models.RunStatusCompleted
	if runErr != nil {
		run.Status = models.RunStatusFailed
	}
	if stats != nil {
		run.LegacyRows = stats.LegacyRows
		run.Properties = stats.PropertiesCreated
		run.Events = stats.DistressEventsCreated
		run.Contacts = stats.ContactsCreated
		run.PipelineRows = stats.LeadPipelineCreated
		run.SoftErrors = len(stats.Errors)
	}
	if err := ops.UpdateBackfillRun(run); err != nil {
		a.logger.WithError(err).Warn("Could not update backfill run")
	}

	if runErr != nil {
		return runErr
	}

	fmt.Println(backfill.RenderSummary(stats, checks, backfillApply))
	return nil
}
