package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"fieldcheck/internal/bootstrap"
	"fieldcheck/internal/bootstrap/logging"
	domain "fieldcheck/internal/domain/fieldrecord"
	"fieldcheck/internal/errs"
	"fieldcheck/internal/ports"
	"fieldcheck/internal/usecase/fieldrecord"
)

var shiftCmd = &cobra.Command{
	Use:   "shift",
	Short: "Record and inspect team shifts",
}

var shiftCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Record a team's shift for a day",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		team, _ := cmd.Flags().GetString("team")
		date, _ := cmd.Flags().GetString("date")
		vehicle, _ := cmd.Flags().GetString("vehicle")
		costCenter, _ := cmd.Flags().GetString("cost-center")
		employees, _ := cmd.Flags().GetStringSlice("employee")
		leaders, _ := cmd.Flags().GetStringSlice("leader")

		graph, err := svc.Records.CreateShift(ctx, fieldrecord.CreateShiftInput{
			TeamID:       domain.NormalizeRef(team),
			Date:         date,
			VehicleID:    domain.NormalizeRef(vehicle),
			CostCenterID: domain.NormalizeRef(costCenter),
			Employees:    shiftSelections(employees, leaders),
		})
		if err != nil {
			logging.Error(ctx, "create shift failed", logging.Err(err))
			return errs.Wrap(err, "create shift")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "created shift %d (%s) team=%s date=%s employees=%d\n",
			graph.ID, graph.UUID, graph.TeamID, graph.Date, len(graph.Employees)); err != nil {
			return errs.Wrap(err, "write create output")
		}
		return nil
	}),
}

var shiftListCmd = &cobra.Command{
	Use:   "list",
	Short: "List shifts waiting to be sent",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		format, err := formatFlag(cmd)
		if err != nil {
			return err
		}
		team, _ := cmd.Flags().GetString("team")
		date, _ := cmd.Flags().GetString("date")

		items, err := svc.Records.ListShifts(ctx, ports.ShiftFilter{TeamID: domain.NormalizeRef(team), Date: strings.TrimSpace(date)})
		if err != nil {
			logging.Error(ctx, "list shifts failed", logging.Err(err))
			return errs.Wrap(err, "list shifts")
		}
		return writeOutput(cmd.OutOrStdout(), format, items, func(w io.Writer) error {
			if len(items) == 0 {
				_, err := fmt.Fprintln(w, "no shifts")
				return err
			}
			for _, item := range items {
				if _, err := fmt.Fprintf(w, "%d team=%s date=%s vehicle=%s\n", item.ID, item.TeamID, item.Date, dash(item.VehicleID.String())); err != nil {
					return err
				}
			}
			return nil
		})
	}),
}

var shiftShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a shift and its employees",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		format, err := formatFlag(cmd)
		if err != nil {
			return err
		}
		id, _ := cmd.Flags().GetInt64("id")

		graph, err := svc.Records.GetShift(ctx, id)
		if err != nil {
			logging.Error(ctx, "show shift failed", slog.Int64("shift_id", id), logging.Err(err))
			return errs.Wrap(err, "show shift")
		}
		return writeOutput(cmd.OutOrStdout(), format, graph, func(w io.Writer) error {
			if _, err := fmt.Fprintf(w, "Shift: %d (%s)\nTeam: %s date=%s vehicle=%s\n\nEmployees (%d):\n",
				graph.ID, graph.UUID, graph.TeamID, graph.Date, dash(graph.VehicleID.String()), len(graph.Employees)); err != nil {
				return err
			}
			for _, e := range graph.Employees {
				if _, err := fmt.Fprintf(w, "- %s leader=%t\n", e.EmployeeID, e.IsLeader); err != nil {
					return err
				}
			}
			return nil
		})
	}),
}

func init() {
	rootCmd.AddCommand(shiftCmd)
	shiftCmd.AddCommand(shiftCreateCmd)
	shiftCmd.AddCommand(shiftListCmd)
	shiftCmd.AddCommand(shiftShowCmd)

	shiftCreateCmd.Flags().String("team", "", "Team id")
	shiftCreateCmd.Flags().String("date", "", "Date as YYYY-MM-DD")
	shiftCreateCmd.Flags().String("vehicle", "", "Vehicle id")
	shiftCreateCmd.Flags().String("cost-center", "", "Cost center id")
	shiftCreateCmd.Flags().StringSlice("employee", nil, "Employee id(s) on the shift")
	shiftCreateCmd.Flags().StringSlice("leader", nil, "Employee id(s) leading the shift")
	_ = shiftCreateCmd.MarkFlagRequired("team")
	_ = shiftCreateCmd.MarkFlagRequired("date")

	shiftListCmd.Flags().String("team", "", "Filter by team id")
	shiftListCmd.Flags().String("date", "", "Filter by date")
	shiftListCmd.Flags().String("format", formatText, "Output format (text|json|yaml)")

	shiftShowCmd.Flags().Int64("id", 0, "Shift id")
	shiftShowCmd.Flags().String("format", formatText, "Output format (text|json|yaml)")
	_ = shiftShowCmd.MarkFlagRequired("id")
}

// shiftSelections merges --employee and --leader; a leader not listed as an
// employee is added.
func shiftSelections(employees []string, leaders []string) []domain.EmployeeSelection {
	isLeader := make(map[domain.Ref]bool, len(leaders))
	for _, raw := range leaders {
		if ref := domain.NormalizeRef(raw); ref.Present() {
			isLeader[ref] = true
		}
	}

	var selections []domain.EmployeeSelection
	seen := make(map[domain.Ref]bool, len(employees)+len(leaders))
	for _, raw := range append(append([]string{}, employees...), leaders...) {
		ref := domain.NormalizeRef(raw)
		if !ref.Present() || seen[ref] {
			continue
		}
		seen[ref] = true
		selections = append(selections, domain.EmployeeSelection{EmployeeID: ref, IsLeader: isLeader[ref]})
	}
	return selections
}
