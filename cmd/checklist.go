package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"fieldcheck/internal/bootstrap"
	"fieldcheck/internal/bootstrap/logging"
	domain "fieldcheck/internal/domain/fieldrecord"
	"fieldcheck/internal/errs"
	"fieldcheck/internal/ports"
	"fieldcheck/internal/usecase/fieldrecord"
)

var checklistCmd = &cobra.Command{
	Use:   "checklist",
	Short: "Create, fill, finalize and inspect checklist records",
}

var checklistCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a draft checklist from a cached structure",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		flag := func(name string) domain.Ref {
			value, _ := cmd.Flags().GetString(name)
			return domain.NormalizeRef(value)
		}
		date, _ := cmd.Flags().GetString("date")
		note, _ := cmd.Flags().GetString("note")

		result, err := svc.Records.CreateChecklist(ctx, fieldrecord.CreateChecklistInput{
			General: domain.GeneralData{
				StructureID: flag("structure"),
				CityID:      flag("city"),
				TeamID:      flag("team"),
				VehicleID:   flag("vehicle"),
				Area:        flag("area"),
				Date:        date,
				Note:        note,
			},
			CostCenterID: flag("cost-center"),
		})
		if err != nil {
			logging.Error(ctx, "create checklist failed", logging.Err(err))
			return errs.Wrap(err, "create checklist")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "created checklist %d (%s) kind=%s items=%d\n",
			result.Checklist.ID, result.Checklist.UUID, result.Checklist.Kind, result.ItemCount); err != nil {
			return errs.Wrap(err, "write create output")
		}
		return nil
	}),
}

var checklistApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a YAML form document to a draft checklist in one transaction",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		id, _ := cmd.Flags().GetInt64("id")
		formFile, _ := cmd.Flags().GetString("form")
		form, err := loadForm(formFile)
		if err != nil {
			return err
		}

		if err := svc.Records.ApplyForm(ctx, id, form); err != nil {
			logging.Error(ctx, "apply checklist form failed", slog.Int64("checklist_id", id), logging.Err(err))
			return errs.Wrap(err, "apply checklist form")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "applied form to checklist %d\n", id); err != nil {
			return errs.Wrap(err, "write apply output")
		}
		return nil
	}),
}

var checklistShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a checklist with its employees, items and risks",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		format, err := formatFlag(cmd)
		if err != nil {
			return err
		}
		id, _ := cmd.Flags().GetInt64("id")

		graph, err := svc.Records.GetChecklist(ctx, id)
		if err != nil {
			logging.Error(ctx, "show checklist failed", slog.Int64("checklist_id", id), logging.Err(err))
			return errs.Wrap(err, "show checklist")
		}
		return writeOutput(cmd.OutOrStdout(), format, graph, func(w io.Writer) error {
			return writeChecklistGraph(w, graph)
		})
	}),
}

var checklistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List local checklists",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		format, err := formatFlag(cmd)
		if err != nil {
			return err
		}
		state, _ := cmd.Flags().GetString("state")
		filter, err := checklistFilter(state)
		if err != nil {
			return err
		}

		items, err := svc.Records.ListChecklists(ctx, filter)
		if err != nil {
			logging.Error(ctx, "list checklists failed", logging.Err(err))
			return errs.Wrap(err, "list checklists")
		}
		return writeOutput(cmd.OutOrStdout(), format, items, func(w io.Writer) error {
			if len(items) == 0 {
				_, err := fmt.Fprintln(w, "no checklists")
				return err
			}
			for _, item := range items {
				if _, err := fmt.Fprintf(w, "%d [%s] kind=%s structure=%s team=%s date=%s\n",
					item.ID, item.State(), item.Kind, dash(item.StructureID.String()), dash(item.TeamID.String()), dash(item.Date)); err != nil {
					return err
				}
			}
			return nil
		})
	}),
}

var checklistFinalizeCmd = &cobra.Command{
	Use:   "finalize",
	Short: "Run the finalize gates and mark the checklist ready to send",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		id, _ := cmd.Flags().GetInt64("id")
		actorID, _ := cmd.Flags().GetString("actor")
		role, _ := cmd.Flags().GetString("role")
		actor, err := parseActor(actorID, role)
		if err != nil {
			return err
		}

		result, err := svc.Records.FinalizeChecklist(ctx, id, actor)
		if err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "checklist %d stays a draft: %s\n", id, verr.UserMessage())
			}
			return errs.Wrap(err, "finalize checklist")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "finalized checklist %d nonconformity=%t\n",
			result.Checklist.ID, result.Checklist.HasNonconformity); err != nil {
			return errs.Wrap(err, "write finalize output")
		}
		return nil
	}),
}

var checklistDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a local checklist and all of its rows",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc services) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		id, _ := cmd.Flags().GetInt64("id")
		if err := svc.Records.DeleteChecklist(ctx, id); err != nil {
			logging.Error(ctx, "delete checklist failed", slog.Int64("checklist_id", id), logging.Err(err))
			return errs.Wrap(err, "delete checklist")
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "deleted checklist %d\n", id); err != nil {
			return errs.Wrap(err, "write delete output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(checklistCmd)
	checklistCmd.AddCommand(checklistCreateCmd)
	checklistCmd.AddCommand(checklistApplyCmd)
	checklistCmd.AddCommand(checklistShowCmd)
	checklistCmd.AddCommand(checklistListCmd)
	checklistCmd.AddCommand(checklistFinalizeCmd)
	checklistCmd.AddCommand(checklistDeleteCmd)

	checklistCreateCmd.Flags().String("structure", "", "Checklist structure id from the reference cache")
	checklistCreateCmd.Flags().String("city", "", "City id")
	checklistCreateCmd.Flags().String("team", "", "Team id")
	checklistCreateCmd.Flags().String("vehicle", "", "Vehicle id")
	checklistCreateCmd.Flags().String("area", "", "Area (urbana|rural)")
	checklistCreateCmd.Flags().String("date", "", "Date as YYYY-MM-DD")
	checklistCreateCmd.Flags().String("note", "", "Free-text note")
	checklistCreateCmd.Flags().String("cost-center", "", "Cost center id (default: the structure's)")
	_ = checklistCreateCmd.MarkFlagRequired("structure")

	checklistApplyCmd.Flags().Int64("id", 0, "Checklist id")
	checklistApplyCmd.Flags().String("form", "", "Path to the YAML form document")
	_ = checklistApplyCmd.MarkFlagRequired("id")
	_ = checklistApplyCmd.MarkFlagRequired("form")

	checklistShowCmd.Flags().Int64("id", 0, "Checklist id")
	checklistShowCmd.Flags().String("format", formatText, "Output format (text|json|yaml)")
	_ = checklistShowCmd.MarkFlagRequired("id")

	checklistListCmd.Flags().String("state", "", "Filter by state (draft|finalized)")
	checklistListCmd.Flags().String("format", formatText, "Output format (text|json|yaml)")

	checklistFinalizeCmd.Flags().Int64("id", 0, "Checklist id")
	checklistFinalizeCmd.Flags().String("actor", "", "User id recorded as finalizado_by")
	checklistFinalizeCmd.Flags().String("role", string(domain.ActorRoleField), "Actor role (campo|escritorio)")
	_ = checklistFinalizeCmd.MarkFlagRequired("id")
	_ = checklistFinalizeCmd.MarkFlagRequired("actor")

	checklistDeleteCmd.Flags().Int64("id", 0, "Checklist id")
	_ = checklistDeleteCmd.MarkFlagRequired("id")
}

func formatFlag(cmd *cobra.Command) (string, error) {
	raw, _ := cmd.Flags().GetString("format")
	return parseFormat(raw)
}

func checklistFilter(state string) (ports.ChecklistFilter, error) {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "":
		return ports.ChecklistFilter{}, nil
	case string(domain.StateDraft):
		return ports.ChecklistFilter{DraftOnly: true}, nil
	case string(domain.StateFinalized):
		return ports.ChecklistFilter{FinalizedOnly: true}, nil
	default:
		return ports.ChecklistFilter{}, fmt.Errorf("unknown checklist state %q (draft|finalized)", state)
	}
}

func parseActor(id string, role string) (domain.Actor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Actor{}, errors.New("actor is required")
	}
	switch r := domain.ActorRole(strings.ToLower(strings.TrimSpace(role))); r {
	case domain.ActorRoleField, domain.ActorRoleOffice:
		return domain.Actor{ID: id, Role: r}, nil
	default:
		return domain.Actor{}, fmt.Errorf("unknown actor role %q (campo|escritorio)", role)
	}
}

func writeChecklistGraph(w io.Writer, graph domain.ChecklistGraph) error {
	lines := []string{
		"Checklist: " + strconv.FormatInt(graph.ID, 10) + " (" + graph.UUID + ")",
		"State: " + string(graph.State()),
		"Kind: " + string(graph.Kind),
		"Structure: " + dash(graph.StructureID.String()) + " template=" + dash(graph.TemplateID.String()),
		"Team: " + dash(graph.TeamID.String()) + " vehicle=" + dash(graph.VehicleID.String()) + " city=" + dash(graph.CityID.String()),
		"Area: " + dash(graph.Area.String()) + " date=" + dash(graph.Date),
		"Leadership: foreman=" + dash(graph.ForemanID.String()) + " supervisor=" + dash(graph.SupervisorID.String()) +
			" coordinator=" + dash(graph.CoordinatorID.String()) + " safety=" + dash(graph.SafetyOfficerID.String()),
	}
	if graph.FinalizedAt != nil {
		lines = append(lines, "FinalizedAt: "+*graph.FinalizedAt)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\nEmployees (%d):\n", len(graph.Employees)); err != nil {
		return err
	}
	for _, e := range graph.Employees {
		if _, err := fmt.Fprintf(w, "- %s leader=%t signed=%t\n", e.Label(), e.IsLeader, len(e.Signature) > 0); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\nItems (%d):\n", len(graph.Items)); err != nil {
		return err
	}
	for _, item := range graph.Items {
		status := "pending"
		switch {
		case item.IsNonconforming:
			status = "nonconforming"
		case item.IsAnswered:
			status = "ok"
		}
		if _, err := fmt.Fprintf(w, "- [%d] %s: %s %s\n", item.ID, item.Label(), status, item.Description); err != nil {
			return err
		}
	}

	if len(graph.Risks) > 0 {
		if _, err := fmt.Fprintf(w, "\nRisks (%d):\n", len(graph.Risks)); err != nil {
			return err
		}
		for _, risk := range graph.Risks {
			if _, err := fmt.Fprintf(w, "- risk %d controls=%d\n", risk.StructureRiskID, len(risk.Controls)); err != nil {
				return err
			}
		}
	}
	return nil
}
