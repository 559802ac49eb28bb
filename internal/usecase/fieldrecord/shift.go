package fieldrecord

import (
	"context"
	"strings"

	domain "fieldcheck/internal/domain/fieldrecord"
	"fieldcheck/internal/ports"
)

type CreateShiftInput struct {
	TeamID       domain.Ref
	Date         string
	VehicleID    domain.Ref
	CostCenterID domain.Ref
	Employees    []domain.EmployeeSelection
}

// CreateShift records the team's shift for the day. Only one shift per
// team and date may exist.
func (s *Service) CreateShift(ctx context.Context, input CreateShiftInput) (domain.ShiftGraph, error) {
	if err := s.ready(ctx); err != nil {
		return domain.ShiftGraph{}, err
	}

	shift := domain.Shift{
		UUID:         s.newUUID(),
		TeamID:       input.TeamID,
		Date:         strings.TrimSpace(input.Date),
		VehicleID:    input.VehicleID,
		CostCenterID: input.CostCenterID,
		CreatedAt:    s.nowString(),
	}
	if err := domain.ValidateNewShift(shift, input.Employees); err != nil {
		return domain.ShiftGraph{}, err
	}

	var graph domain.ShiftGraph
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		created, err := s.shifts.CreateShift(txCtx, shift, input.Employees)
		if err != nil {
			return err
		}
		graph, err = s.assembler.AssembleShift(txCtx, created.ID)
		return err
	})
	if err != nil {
		return domain.ShiftGraph{}, err
	}
	return graph, nil
}

func (s *Service) GetShift(ctx context.Context, shiftID int64) (domain.ShiftGraph, error) {
	if err := s.ready(ctx); err != nil {
		return domain.ShiftGraph{}, err
	}
	return s.assembler.AssembleShift(ctx, shiftID)
}

func (s *Service) ListShifts(ctx context.Context, filter ports.ShiftFilter) ([]domain.Shift, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.shifts.ListShifts(ctx, filter)
}
