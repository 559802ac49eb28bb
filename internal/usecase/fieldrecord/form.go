package fieldrecord

import (
	"context"

	domain "fieldcheck/internal/domain/fieldrecord"
)

// Form collects the screens of a checklist edited together. Nil sections
// are left untouched; Employees and Risks replace the current rows only
// when their Replace flag is set.
type Form struct {
	General           *domain.GeneralData
	Leadership        *domain.Leadership
	ReplaceEmployees  bool
	Employees         []domain.EmployeeSelection
	Answers           []domain.ItemAnswer
	ReplaceRisks      bool
	Risks             []domain.RiskSelection
	DeclaredCompliant *bool
}

// ApplyForm writes every section in one transaction.
func (s *Service) ApplyForm(ctx context.Context, checklistID int64, form Form) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	return s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if form.General != nil {
			if err := s.UpdateGeneralData(txCtx, checklistID, *form.General); err != nil {
				return err
			}
		}
		if form.Leadership != nil {
			if err := s.UpdateLeadership(txCtx, checklistID, *form.Leadership); err != nil {
				return err
			}
		}
		if form.ReplaceEmployees {
			if err := s.SetEmployees(txCtx, checklistID, form.Employees); err != nil {
				return err
			}
		}
		for _, answer := range form.Answers {
			if err := s.AnswerItem(txCtx, checklistID, answer); err != nil {
				return err
			}
		}
		if form.ReplaceRisks {
			if err := s.SetRisks(txCtx, checklistID, form.Risks); err != nil {
				return err
			}
		}
		if form.DeclaredCompliant != nil {
			if err := s.DeclareCompliance(txCtx, checklistID, *form.DeclaredCompliant); err != nil {
				return err
			}
		}
		return nil
	})
}
