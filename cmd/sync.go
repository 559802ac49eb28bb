package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"fieldcheck/internal/bootstrap"
	"fieldcheck/internal/bootstrap/logging"
	domainsync "fieldcheck/internal/domain/datasync"
	domain "fieldcheck/internal/domain/fieldrecord"
	"fieldcheck/internal/errs"
	"fieldcheck/internal/ports"
	"fieldcheck/internal/usecase/syncconsole"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Send finalized records and refresh reference data",
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Send every shift and finalized checklist, deleting each once accepted",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		format, err := formatFlag(cmd)
		if err != nil {
			return err
		}

		var report domainsync.PushReport
		runErr := runSyncFlow(ctx, cmd, "Sending records", format, func(ctx context.Context, progress ports.ProgressReporter) error {
			var err error
			report, err = svc.Sync.SendAll(ctx, progress)
			return err
		})
		exportMetrics(ctx, cmd, app, svc)
		if runErr != nil {
			return errs.Wrap(runErr, "push records")
		}

		if err := writeOutput(cmd.OutOrStdout(), format, report, func(w io.Writer) error {
			if useTUI, _ := cmd.Flags().GetBool("tui"); useTUI {
				_, err := fmt.Fprintln(w, report.Message)
				return err
			}
			return nil
		}); err != nil {
			return err
		}
		if report.Outcome == domainsync.OutcomePartial {
			return fmt.Errorf("%d of %d record(s) failed to send", report.Failed, report.Sent+report.Failed)
		}
		return nil
	}),
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Replace the reference cache with the server's datasets",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		format, err := formatFlag(cmd)
		if err != nil {
			return err
		}
		costCenter, _ := cmd.Flags().GetString("cost-center")
		if !cmd.Flags().Changed("cost-center") {
			costCenter = app.Config.Sync.CostCenterID
		}

		var report domainsync.PullReport
		runErr := runSyncFlow(ctx, cmd, "Updating reference data", format, func(ctx context.Context, progress ports.ProgressReporter) error {
			var err error
			report, err = svc.Sync.SyncAllDataStreaming(ctx, domain.NormalizeRef(costCenter), progress)
			return err
		})
		exportMetrics(ctx, cmd, app, svc)
		if runErr != nil {
			return errs.Wrap(runErr, "pull reference data")
		}

		return writeOutput(cmd.OutOrStdout(), format, report, func(w io.Writer) error {
			if useTUI, _ := cmd.Flags().GetBool("tui"); useTUI {
				_, err := fmt.Fprintln(w, report.Message)
				return err
			}
			return nil
		})
	}),
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pending records and the last push and pull",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		format, err := formatFlag(cmd)
		if err != nil {
			return err
		}
		status, err := svc.Sync.Status(ctx)
		if err != nil {
			logging.Error(ctx, "read sync status failed", logging.Err(err))
			return errs.Wrap(err, "read sync status")
		}

		return writeOutput(cmd.OutOrStdout(), format, status, func(w io.Writer) error {
			_, err := fmt.Fprintf(w,
				"Pending checklists: %d\nDraft checklists: %d\nPending shifts: %d\nLast push: %s (%s)\nLast pull: %s cost_center=%s\n",
				status.PendingChecklists,
				status.DraftChecklists,
				status.PendingShifts,
				dash(status.LastPushAt),
				dash(status.LastPushOutcome),
				dash(status.LastPullAt),
				dash(status.LastPullScope),
			)
			return err
		})
	}),
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.AddCommand(syncPushCmd)
	syncCmd.AddCommand(syncPullCmd)
	syncCmd.AddCommand(syncStatusCmd)

	for _, c := range []*cobra.Command{syncPushCmd, syncPullCmd} {
		c.Flags().Bool("tui", false, "Show progress in a terminal view")
		c.Flags().String("format", formatText, "Report format (text|json|yaml)")
		c.Flags().String("metrics-file", "", "Write sync metrics in Prometheus text format (default: metrics.textfile)")
	}
	syncPullCmd.Flags().String("cost-center", "", "Only refresh rows of this cost center (default: sync.cost_center_id)")
	syncStatusCmd.Flags().String("format", formatText, "Output format (text|json|yaml)")
}

// runSyncFlow renders progress in the terminal view with --tui, as styled
// lines for the text format, and not at all for json or yaml.
func runSyncFlow(ctx context.Context, cmd *cobra.Command, title string, format string, flow syncconsole.Flow) error {
	if useTUI, _ := cmd.Flags().GetBool("tui"); useTUI {
		return syncconsole.Run(ctx, title, flow, tea.WithOutput(cmd.ErrOrStderr()))
	}
	var progress ports.ProgressReporter = ports.NopProgress{}
	if format == formatText {
		progress = syncconsole.NewLineReporter(cmd.OutOrStdout())
	}
	return flow(ctx, progress)
}

func exportMetrics(ctx context.Context, cmd *cobra.Command, app *bootstrap.App, svc services) {
	path, _ := cmd.Flags().GetString("metrics-file")
	if !cmd.Flags().Changed("metrics-file") {
		path = app.Config.Metrics.Textfile
	}
	if err := svc.Metrics.WriteTextfile(path); err != nil {
		logging.Warn(ctx, "write metrics textfile failed", slog.String("path", path), logging.Err(err))
	}
}
