package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"fieldcheck/internal/bootstrap"
	"fieldcheck/internal/bootstrap/logging"
	"fieldcheck/internal/domain/datasync"
	domain "fieldcheck/internal/domain/fieldrecord"
	"fieldcheck/internal/errs"
)

var referenceCmd = &cobra.Command{
	Use:   "reference",
	Short: "Inspect the cached reference data",
}

var referenceListCmd = &cobra.Command{
	Use:   "list <dataset>",
	Short: "List the cached rows of one dataset",
	Long:  "Datasets: cost_centers, cities, templates, structures, structure_items, risks, controls, employees, vehicles, teams.",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		format, err := formatFlag(cmd)
		if err != nil {
			return err
		}
		dataset := datasync.Dataset(strings.ToLower(strings.TrimSpace(cmd.Flags().Arg(0))))
		costCenter, _ := cmd.Flags().GetString("cost-center")
		if !cmd.Flags().Changed("cost-center") {
			costCenter = app.Config.Sync.CostCenterID
		}

		entries, err := svc.Records.ListReference(ctx, dataset, domain.NormalizeRef(costCenter))
		if err != nil {
			logging.Error(ctx, "list reference failed", slog.String("dataset", string(dataset)), logging.Err(err))
			return errs.Wrap(err, "list reference")
		}
		return writeOutput(cmd.OutOrStdout(), format, entries, func(w io.Writer) error {
			if len(entries) == 0 {
				_, err := fmt.Fprintf(w, "no %s cached\n", dataset)
				return err
			}
			for _, entry := range entries {
				scope := "-"
				if entry.CostCenterID != nil {
					scope = fmt.Sprint(*entry.CostCenterID)
				}
				if _, err := fmt.Fprintf(w, "%d %s cost_center=%s\n", entry.ID, entry.Label, scope); err != nil {
					return err
				}
			}
			return nil
		})
	}),
}

func init() {
	rootCmd.AddCommand(referenceCmd)
	referenceCmd.AddCommand(referenceListCmd)

	referenceListCmd.Flags().String("cost-center", "", "Only rows of this cost center (default: sync.cost_center_id)")
	referenceListCmd.Flags().String("format", formatText, "Output format (text|json|yaml)")
}
