package fieldrecord

import (
	"context"
	"log/slog"

	"fieldcheck/internal/bootstrap/logging"
	domain "fieldcheck/internal/domain/fieldrecord"
)

type FinalizeResult struct {
	Checklist  domain.Checklist
	Evaluation domain.Evaluation
}

// FinalizeChecklist runs the gates over the stored graph and stamps the
// root when they all pass. A finalized root may be finalized again: the
// gates re-run and the stamp is rewritten, child rows are not touched.
//
// A failing gate leaves the record unchanged and returns a
// *fieldrecord.ValidationError together with the evaluation.
func (s *Service) FinalizeChecklist(ctx context.Context, checklistID int64, actor domain.Actor) (FinalizeResult, error) {
	if err := s.ready(ctx); err != nil {
		return FinalizeResult{}, err
	}
	logCtx := logging.WithRecord(logging.WithComponent(ctx, "usecase.fieldrecord"), "checklist", checklistID)

	var result FinalizeResult
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		graph, _, err := s.assembler.AssembleChecklist(txCtx, checklistID)
		if err != nil {
			return err
		}

		eval := domain.EvaluateFinalize(graph, actor)
		result.Evaluation = eval
		result.Checklist = graph.Checklist
		if err := eval.Err(); err != nil {
			return err
		}

		now := s.nowString()
		stamp := domain.FinalizeStamp{
			FinalizedAt:       now,
			FinalizedBy:       actor.ID,
			HasNonconformity:  eval.HasNonconformity,
			DeclaredCompliant: graph.DeclaredCompliant,
		}
		if err := s.checklists.MarkFinalized(txCtx, checklistID, stamp); err != nil {
			return err
		}

		updated, err := s.checklists.GetChecklist(txCtx, checklistID)
		if err != nil {
			return err
		}
		result.Checklist = updated
		return nil
	})
	if err != nil {
		if failure, blocked := result.Evaluation.Failure(); blocked {
			logging.Info(logCtx, "finalize blocked",
				slog.String("gate", string(failure.Gate)),
				slog.String("reason", failure.Reason),
			)
		}
		return result, err
	}

	logging.Info(logCtx, "checklist finalized",
		slog.String("finalized_by", actor.ID),
		slog.Bool("has_nonconformity", result.Checklist.HasNonconformity),
	)
	return result, nil
}
