package fieldrecord

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "fieldcheck/internal/domain/fieldrecord"
	"fieldcheck/internal/errs"
	"fieldcheck/internal/ports"
	"fieldcheck/internal/usecase/recordgraph"
)

type Service struct {
	checklists ports.ChecklistRepository
	shifts     ports.ShiftRepository
	reference  ports.ReferenceRepository
	uow        ports.UnitOfWork
	assembler  *recordgraph.Assembler

	now     func() time.Time
	newUUID func() string
}

// NewService wires checklist and shift usecases over the local store.
func NewService(
	checklists ports.ChecklistRepository,
	shifts ports.ShiftRepository,
	reference ports.ReferenceRepository,
	uow ports.UnitOfWork,
) *Service {
	return &Service{
		checklists: checklists,
		shifts:     shifts,
		reference:  reference,
		uow:        uow,
		assembler:  recordgraph.NewAssembler(checklists, shifts),
		now:        time.Now,
		newUUID:    uuid.NewString,
	}
}

func (s *Service) ready(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.checklists == nil || s.shifts == nil || s.reference == nil {
		return errors.New("record repositories are required")
	}
	if s.uow == nil {
		return errors.New("unit of work is required")
	}
	return nil
}

func (s *Service) nowString() string {
	return domain.NowString(s.now())
}

func validateDate(date string) error {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil
	}
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return domain.ErrInvalidDate
	}
	return nil
}
