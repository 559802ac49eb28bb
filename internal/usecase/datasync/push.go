package datasync

import (
	"context"
	"log/slog"
	"time"

	"fieldcheck/internal/bootstrap/logging"
	domain "fieldcheck/internal/domain/datasync"
	"fieldcheck/internal/errs"
	"fieldcheck/internal/ports"
)

const flowPush = "push"

type pushTarget struct {
	kind domain.RecordKind
	id   int64
	uuid string
}

// SendAll uploads every shift and every finalized checklist, one at a time.
// A record is deleted locally only after its own transfer succeeded. A
// failed transfer is recorded and the batch moves on; an update-required
// or store error stops the batch and is returned.
func (s *Service) SendAll(ctx context.Context, progress ports.ProgressReporter) (domain.PushReport, error) {
	progress = reporterOrNop(progress)
	release, err := s.begin(ctx)
	if err != nil {
		progress.OnError(errs.UserMessage(err))
		return domain.PushReport{}, err
	}
	defer release()

	ctx = logging.WithComponent(ctx, "datasync.push")
	started := time.Now()
	defer func() { s.deps.Metrics.ObserveDuration(flowPush, time.Since(started)) }()

	progress.OnProgressChange("Checking connection", 0)
	if err := s.preflight(ctx, progress); err != nil {
		logging.Warn(ctx, "push aborted by connectivity preflight", logging.Err(err))
		return domain.PushReport{}, err
	}

	targets, err := s.selectPushTargets(ctx)
	if err != nil {
		progress.OnError(errs.UserMessage(err))
		return domain.PushReport{}, err
	}
	logging.Info(ctx, "push selected records", slog.Int("records", len(targets)))

	var report domain.PushReport
	for i, target := range targets {
		progress.OnProgressChange(pushStepLabel(target, i+1, len(targets)), domain.Percent(i, len(targets)))

		recordCtx := logging.WithRecord(ctx, string(target.kind), target.id)
		err := s.pushOne(recordCtx, target)
		if err == nil {
			report.RecordSuccess()
			s.deps.Metrics.PushRecord(string(target.kind), resultSuccess)
			progress.OnProgressUpdate(string(target.kind) + " " + formatID(target.id) + " sent")
			continue
		}

		s.deps.Metrics.PushRecord(string(target.kind), resultFailure)
		if domain.IsFatalToBatch(err) {
			logging.Error(recordCtx, "push stopped", logging.Err(err))
			progress.OnError(errs.UserMessage(err))
			return report, err
		}

		msg := errs.UserMessage(err)
		report.RecordFailure(domain.Failure{Kind: target.kind, RecordID: target.id, UUID: target.uuid, Message: msg})
		logging.Warn(recordCtx, "record transfer failed", logging.Err(err))
		progress.OnProgressUpdate(string(target.kind) + " " + formatID(target.id) + " failed: " + msg)
	}

	report.Finish()
	progress.OnProgressChange("Done", 100)
	s.setMetaBestEffort(ctx, cacheKeyLastPushAt, s.nowString())
	s.setMetaBestEffort(ctx, cacheKeyLastPushOutcome, string(report.Outcome))
	logging.Info(ctx, "push finished",
		slog.Int("sent", report.Sent),
		slog.Int("failed", report.Failed),
		slog.String("outcome", string(report.Outcome)),
	)

	if report.Outcome == domain.OutcomePartial {
		progress.OnError(report.Message)
	} else {
		progress.OnSuccess(report.Message)
	}
	return report, nil
}

// selectPushTargets lists shifts first, then finalized checklists.
func (s *Service) selectPushTargets(ctx context.Context) ([]pushTarget, error) {
	shifts, err := s.deps.Shifts.ListShifts(ctx, ports.ShiftFilter{})
	if err != nil {
		return nil, domain.NewStoreError("select shifts", err)
	}
	checklists, err := s.deps.Checklists.ListChecklists(ctx, ports.ChecklistFilter{FinalizedOnly: true})
	if err != nil {
		return nil, domain.NewStoreError("select checklists", err)
	}

	targets := make([]pushTarget, 0, len(shifts)+len(checklists))
	for _, shift := range shifts {
		targets = append(targets, pushTarget{kind: domain.RecordKindShift, id: shift.ID, uuid: shift.UUID})
	}
	for _, checklist := range checklists {
		targets = append(targets, pushTarget{kind: domain.RecordKindChecklist, id: checklist.ID, uuid: checklist.UUID})
	}
	return targets, nil
}

func (s *Service) pushOne(ctx context.Context, target pushTarget) error {
	switch target.kind {
	case domain.RecordKindShift:
		return s.pushShift(ctx, target.id)
	default:
		return s.pushChecklist(ctx, target.id)
	}
}

func (s *Service) pushShift(ctx context.Context, shiftID int64) error {
	graph, err := s.assembler.AssembleShift(ctx, shiftID)
	if err != nil {
		return domain.NewStoreError("assemble shift", err)
	}
	if _, err := s.deps.Remote.Post(ctx, s.shiftPath, graph); err != nil {
		return err
	}
	if err := s.deps.Shifts.DeleteShift(ctx, shiftID); err != nil {
		return domain.NewStoreError("delete shift", err)
	}
	return nil
}

func (s *Service) pushChecklist(ctx context.Context, checklistID int64) error {
	graph, files, err := s.assembler.AssembleChecklist(ctx, checklistID)
	if err != nil {
		return domain.NewStoreError("assemble checklist", err)
	}

	if graph.HasAttachments {
		_, err = s.deps.Remote.PostWithFiles(ctx, s.checklistPath, graph, files)
	} else {
		_, err = s.deps.Remote.Post(ctx, s.checklistPath, graph)
	}
	if err != nil {
		return err
	}

	if err := s.deps.Checklists.DeleteChecklist(ctx, checklistID); err != nil {
		return domain.NewStoreError("delete checklist", err)
	}
	return nil
}

func pushStepLabel(target pushTarget, index int, total int) string {
	return domain.StepLabel(domain.PlanStep{Name: "Sending " + string(target.kind) + " " + formatID(target.id)}, index, total)
}
