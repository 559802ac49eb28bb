package datasync

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"fieldcheck/internal/bootstrap/logging"
	domain "fieldcheck/internal/domain/datasync"
	"fieldcheck/internal/errs"
	"fieldcheck/internal/ports"
	"fieldcheck/internal/usecase/recordgraph"
)

const (
	DefaultChecklistPath = "/checklist-realizados"
	DefaultShiftPath     = "/equipe-turnos"

	cacheKeyLastPushAt      = "sync.last_push_at"
	cacheKeyLastPushOutcome = "sync.last_push_outcome"
	cacheKeyLastPullAt      = "sync.last_pull_at"
	cacheKeyLastPullScope   = "sync.last_pull_cost_center"
)

type Dependencies struct {
	Checklists   ports.ChecklistRepository
	Shifts       ports.ShiftRepository
	Reference    ports.ReferenceRepository
	Remote       ports.RemoteClient
	Connectivity ports.ConnectivityChecker
	Cache        ports.Cache
	Metrics      ports.SyncMetrics
}

type Options struct {
	Plan          domain.Plan
	ChecklistPath string
	ShiftPath     string
}

// Service runs push and pull. It owns the in-progress flag; one flow runs
// at a time per Service.
type Service struct {
	deps      Dependencies
	assembler *recordgraph.Assembler
	plan      domain.Plan

	checklistPath string
	shiftPath     string

	syncing atomic.Bool
	now     func() time.Time
}

func NewService(deps Dependencies, opts Options) (*Service, error) {
	if deps.Checklists == nil || deps.Shifts == nil || deps.Reference == nil {
		return nil, errors.New("record repositories are required")
	}
	if deps.Remote == nil {
		return nil, errors.New("remote client is required")
	}
	if deps.Connectivity == nil {
		return nil, errors.New("connectivity checker is required")
	}
	if deps.Metrics == nil {
		deps.Metrics = ports.NopMetrics{}
	}

	plan := opts.Plan
	if len(plan.Steps) == 0 {
		plan = domain.DefaultPlan()
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	return &Service{
		deps:          deps,
		assembler:     recordgraph.NewAssembler(deps.Checklists, deps.Shifts),
		plan:          plan,
		checklistPath: pathOrDefault(opts.ChecklistPath, DefaultChecklistPath),
		shiftPath:     pathOrDefault(opts.ShiftPath, DefaultShiftPath),
		now:           time.Now,
	}, nil
}

func pathOrDefault(path string, fallback string) string {
	if p := strings.TrimSpace(path); p != "" {
		return p
	}
	return fallback
}

// IsSyncing reports whether a push or pull is running.
func (s *Service) IsSyncing() bool {
	return s.syncing.Load()
}

func (s *Service) Plan() domain.Plan {
	return s.plan
}

func (s *Service) begin(ctx context.Context) (func(), error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if !s.syncing.CompareAndSwap(false, true) {
		return nil, domain.ErrSyncInProgress
	}
	return func() { s.syncing.Store(false) }, nil
}

// preflight fails before any record is read when the device is offline.
func (s *Service) preflight(ctx context.Context, progress ports.ProgressReporter) error {
	status, err := s.deps.Connectivity.Check(ctx)
	if err == nil && !status.IsConnected {
		err = &domain.ConnectivityError{Reason: "device is offline"}
	}
	if err != nil {
		var connErr *domain.ConnectivityError
		if !errors.As(err, &connErr) {
			err = &domain.ConnectivityError{Reason: "connection check failed", Err: err}
		}
		progress.OnError(errs.UserMessage(err))
		return err
	}

	progress.OnProgressUpdate("Connected via " + status.ConnectionType)
	return nil
}

func (s *Service) setMetaBestEffort(ctx context.Context, key string, value string) {
	if s.deps.Cache == nil {
		return
	}
	if err := s.deps.Cache.Set(ctx, key, value, 0); err != nil {
		logging.Warn(ctx, "sync meta write failed", slog.String("key", key), logging.Err(err))
	}
}

func (s *Service) nowString() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func reporterOrNop(progress ports.ProgressReporter) ports.ProgressReporter {
	if progress == nil {
		return ports.NopProgress{}
	}
	return progress
}
