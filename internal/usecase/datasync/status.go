package datasync

import (
	"context"
	"errors"

	domain "fieldcheck/internal/domain/datasync"
	"fieldcheck/internal/ports"
)

type Status struct {
	PendingChecklists int64  `json:"pending_checklists" yaml:"pending_checklists"`
	DraftChecklists   int64  `json:"draft_checklists" yaml:"draft_checklists"`
	PendingShifts     int64  `json:"pending_shifts" yaml:"pending_shifts"`
	LastPushAt        string `json:"last_push_at,omitempty" yaml:"last_push_at,omitempty"`
	LastPushOutcome   string `json:"last_push_outcome,omitempty" yaml:"last_push_outcome,omitempty"`
	LastPullAt        string `json:"last_pull_at,omitempty" yaml:"last_pull_at,omitempty"`
	LastPullScope     string `json:"last_pull_cost_center,omitempty" yaml:"last_pull_cost_center,omitempty"`
	IsSyncing         bool   `json:"is_syncing" yaml:"is_syncing"`
}

// Status counts what a push would send and reads the last run bookkeeping.
func (s *Service) Status(ctx context.Context) (Status, error) {
	if ctx == nil {
		return Status{}, errors.New("context is required")
	}

	pending, err := s.deps.Checklists.CountChecklists(ctx, ports.ChecklistFilter{FinalizedOnly: true})
	if err != nil {
		return Status{}, domain.NewStoreError("count checklists", err)
	}
	drafts, err := s.deps.Checklists.CountChecklists(ctx, ports.ChecklistFilter{DraftOnly: true})
	if err != nil {
		return Status{}, domain.NewStoreError("count drafts", err)
	}
	shifts, err := s.deps.Shifts.CountShifts(ctx)
	if err != nil {
		return Status{}, domain.NewStoreError("count shifts", err)
	}

	status := Status{
		PendingChecklists: pending,
		DraftChecklists:   drafts,
		PendingShifts:     shifts,
		IsSyncing:         s.IsSyncing(),
	}
	if s.deps.Cache == nil {
		return status, nil
	}
	for key, dst := range map[string]*string{
		cacheKeyLastPushAt:      &status.LastPushAt,
		cacheKeyLastPushOutcome: &status.LastPushOutcome,
		cacheKeyLastPullAt:      &status.LastPullAt,
		cacheKeyLastPullScope:   &status.LastPullScope,
	} {
		value, found, err := s.deps.Cache.Get(ctx, key)
		if err != nil {
			return Status{}, domain.NewStoreError("read sync meta", err)
		}
		if found {
			*dst = value
		}
	}
	return status, nil
}
