package datasync

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"fieldcheck/internal/bootstrap/logging"
	domain "fieldcheck/internal/domain/datasync"
	"fieldcheck/internal/domain/fieldrecord"
	"fieldcheck/internal/errs"
	"fieldcheck/internal/ports"
)

const (
	flowPull = "pull"

	resultSuccess = "success"
	resultFailure = "failure"

	costCenterQueryParam = "centro_custo_id"
)

// SyncAllDataStreaming runs the pull plan in order. Each step replaces one
// dataset atomically. The first failing step stops the run; steps already
// applied stay applied.
func (s *Service) SyncAllDataStreaming(ctx context.Context, costCenter fieldrecord.Ref, progress ports.ProgressReporter) (domain.PullReport, error) {
	progress = reporterOrNop(progress)
	release, err := s.begin(ctx)
	if err != nil {
		progress.OnError(errs.UserMessage(err))
		return domain.PullReport{}, err
	}
	defer release()

	ctx = logging.WithComponent(ctx, "datasync.pull")
	started := time.Now()
	defer func() { s.deps.Metrics.ObserveDuration(flowPull, time.Since(started)) }()

	var scope *int64
	if costCenter.Present() {
		id, ok := costCenter.Int64()
		if !ok {
			err := fmt.Errorf("cost center %q is not a numeric id", costCenter.String())
			progress.OnError(err.Error())
			return domain.PullReport{}, err
		}
		scope = &id
	}

	if err := s.preflight(ctx, progress); err != nil {
		logging.Warn(ctx, "pull aborted by connectivity preflight", logging.Err(err))
		return domain.PullReport{}, err
	}

	report := domain.PullReport{CostCenterID: costCenter.String()}
	total := len(s.plan.Steps)
	for i, step := range s.plan.Steps {
		progress.OnProgressChange(domain.StepLabel(step, i+1, total), domain.Percent(i, total))

		stepCtx := logging.WithDataset(ctx, string(step.Dataset), i+1)
		rows, err := s.pullStep(stepCtx, step, scope)
		if err != nil {
			s.deps.Metrics.PullStep(string(step.Dataset), resultFailure, 0)
			logging.Error(stepCtx, "pull step failed", logging.Err(err))
			progress.OnError(errs.UserMessage(err))
			return report, err
		}

		s.deps.Metrics.PullStep(string(step.Dataset), resultSuccess, rows)
		report.Steps = append(report.Steps, domain.PullStepResult{Step: step.Name, Dataset: step.Dataset, Rows: rows})
		progress.OnProgressUpdate(fmt.Sprintf("%s: %d row(s)", domain.StepLabel(step, i+1, total), rows))
	}

	report.Finish()
	progress.OnProgressChange("Done", 100)
	s.setMetaBestEffort(ctx, cacheKeyLastPullAt, s.nowString())
	s.setMetaBestEffort(ctx, cacheKeyLastPullScope, costCenter.String())
	logging.Info(ctx, "pull finished", slog.Int("steps", len(report.Steps)))
	progress.OnSuccess(report.Message)
	return report, nil
}

func (s *Service) pullStep(ctx context.Context, step domain.PlanStep, scope *int64) (int, error) {
	var query url.Values
	if scope != nil && step.Dataset.Scoped() {
		query = url.Values{}
		query.Set(costCenterQueryParam, strconv.FormatInt(*scope, 10))
	}

	payload, err := s.deps.Remote.Get(ctx, step.Path, query)
	if err != nil {
		return 0, err
	}

	stepScope := scope
	if !step.Dataset.Scoped() {
		stepScope = nil
	}
	rows, err := s.deps.Reference.ReplaceDataset(ctx, step.Dataset, stepScope, payload)
	if err != nil {
		return 0, domain.NewStoreError("replace "+string(step.Dataset), err)
	}
	return rows, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
