package fieldrecord

import (
	"context"
	"strings"

	domain "fieldcheck/internal/domain/fieldrecord"
	"fieldcheck/internal/ports"
)

type CreateChecklistInput struct {
	General      domain.GeneralData
	CostCenterID domain.Ref
}

type CreateChecklistResult struct {
	Checklist domain.Checklist
	ItemCount int
}

// CreateChecklist starts a draft from the structure's current template and
// snapshots its items.
func (s *Service) CreateChecklist(ctx context.Context, input CreateChecklistInput) (CreateChecklistResult, error) {
	if err := s.ready(ctx); err != nil {
		return CreateChecklistResult{}, err
	}

	structureID, ok := input.General.StructureID.Int64()
	if !ok {
		return CreateChecklistResult{}, domain.ErrStructureRequired
	}
	if err := validateDate(input.General.Date); err != nil {
		return CreateChecklistResult{}, err
	}

	template, err := s.reference.GetTemplate(ctx, structureID)
	if err != nil {
		return CreateChecklistResult{}, err
	}

	now := s.nowString()
	root := domain.Checklist{
		UUID:                 s.newUUID(),
		TemplateID:           input.General.TemplateID,
		StructureID:          domain.RefFromInt64(template.StructureID),
		CityID:               input.General.CityID,
		TeamID:               input.General.TeamID,
		VehicleID:            input.General.VehicleID,
		Area:                 input.General.Area,
		Date:                 strings.TrimSpace(input.General.Date),
		Note:                 input.General.Note,
		CostCenterID:         input.CostCenterID,
		Kind:                 template.Kind,
		RequiresAnswers:      template.RequiresAnswers,
		RequiresDescriptions: template.RequiresDescriptions,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if !root.TemplateID.Present() && template.TemplateID > 0 {
		root.TemplateID = domain.RefFromInt64(template.TemplateID)
	}
	if !root.CostCenterID.Present() && template.CostCenterID != nil {
		root.CostCenterID = domain.RefFromInt64(*template.CostCenterID)
	}

	created, count, err := s.checklists.CreateChecklist(ctx, root)
	if err != nil {
		return CreateChecklistResult{}, err
	}
	return CreateChecklistResult{Checklist: created, ItemCount: count}, nil
}

// editDraft runs fn inside a transaction after checking the root is still
// a draft.
func (s *Service) editDraft(ctx context.Context, checklistID int64, fn func(txCtx context.Context, root domain.Checklist) error) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.uow.WithTx(ctx, func(txCtx context.Context) error {
		root, err := s.checklists.GetChecklist(txCtx, checklistID)
		if err != nil {
			return err
		}
		if root.IsFinalized {
			return domain.ErrChecklistFinalized
		}
		return fn(txCtx, root)
	})
}

func (s *Service) UpdateGeneralData(ctx context.Context, checklistID int64, data domain.GeneralData) error {
	if err := validateDate(data.Date); err != nil {
		return err
	}
	return s.editDraft(ctx, checklistID, func(txCtx context.Context, root domain.Checklist) error {
		if data.StructureID.Present() && data.StructureID.String() != root.StructureID.String() {
			return domain.ErrStructureChange
		}
		data.StructureID = root.StructureID
		if !data.TemplateID.Present() {
			data.TemplateID = root.TemplateID
		}
		data.Date = strings.TrimSpace(data.Date)
		return s.checklists.UpdateGeneralData(txCtx, checklistID, data, s.nowString())
	})
}

func (s *Service) UpdateLeadership(ctx context.Context, checklistID int64, leadership domain.Leadership) error {
	return s.editDraft(ctx, checklistID, func(txCtx context.Context, _ domain.Checklist) error {
		return s.checklists.UpdateLeadership(txCtx, checklistID, leadership, s.nowString())
	})
}

func (s *Service) DeclareCompliance(ctx context.Context, checklistID int64, compliant bool) error {
	return s.editDraft(ctx, checklistID, func(txCtx context.Context, _ domain.Checklist) error {
		return s.checklists.SetDeclaredCompliance(txCtx, checklistID, compliant, s.nowString())
	})
}

func (s *Service) AnswerItem(ctx context.Context, checklistID int64, answer domain.ItemAnswer) error {
	return s.editDraft(ctx, checklistID, func(txCtx context.Context, _ domain.Checklist) error {
		answer.Description = strings.TrimSpace(answer.Description)
		if answer.PhotoPath != nil && strings.TrimSpace(*answer.PhotoPath) == "" {
			answer.PhotoPath = nil
		}
		return s.checklists.UpdateItemAnswer(txCtx, checklistID, answer)
	})
}

// SetEmployees replaces the attached employees. Names are copied from the
// reference cache when the id is known there.
func (s *Service) SetEmployees(ctx context.Context, checklistID int64, selections []domain.EmployeeSelection) error {
	return s.editDraft(ctx, checklistID, func(txCtx context.Context, _ domain.Checklist) error {
		seen := make(map[domain.Ref]struct{}, len(selections))
		ids := make([]int64, 0, len(selections))
		for _, sel := range selections {
			if !sel.EmployeeID.Present() {
				return domain.ErrEmployeeNotAttached
			}
			if _, dup := seen[sel.EmployeeID]; dup {
				return domain.ErrDuplicateEmployee
			}
			seen[sel.EmployeeID] = struct{}{}
			if id, ok := sel.EmployeeID.Int64(); ok {
				ids = append(ids, id)
			}
		}

		names, err := s.reference.EmployeeNames(txCtx, ids)
		if err != nil {
			return err
		}

		employees := make([]domain.ChecklistEmployee, 0, len(selections))
		for _, sel := range selections {
			employee := domain.ChecklistEmployee{
				EmployeeID: sel.EmployeeID,
				IsLeader:   sel.IsLeader,
				Signature:  sel.Signature,
			}
			if id, ok := sel.EmployeeID.Int64(); ok {
				employee.Name = names[id]
			}
			employees = append(employees, employee)
		}
		return s.checklists.ReplaceEmployees(txCtx, checklistID, employees)
	})
}

func (s *Service) SetSignature(ctx context.Context, checklistID int64, employeeID domain.Ref, signature []byte) error {
	return s.editDraft(ctx, checklistID, func(txCtx context.Context, _ domain.Checklist) error {
		return s.checklists.SetEmployeeSignature(txCtx, checklistID, employeeID, signature)
	})
}

// SetRisks replaces the risk assessment selection after checking it
// against the structure's risk catalog.
func (s *Service) SetRisks(ctx context.Context, checklistID int64, risks []domain.RiskSelection) error {
	return s.editDraft(ctx, checklistID, func(txCtx context.Context, root domain.Checklist) error {
		if root.Kind != domain.KindRiskAssessment {
			if len(risks) == 0 {
				return nil
			}
			return domain.ErrRisksNotAllowed
		}

		structureID, ok := root.StructureID.Int64()
		if !ok {
			return domain.ErrStructureRequired
		}
		catalog, err := s.reference.ListTemplateRisks(txCtx, structureID)
		if err != nil {
			return err
		}
		if err := checkRiskSelection(catalog, risks); err != nil {
			return err
		}
		return s.checklists.ReplaceRisks(txCtx, checklistID, risks)
	})
}

func checkRiskSelection(catalog []domain.TemplateRisk, risks []domain.RiskSelection) error {
	controlsByRisk := make(map[int64]map[int64]struct{}, len(catalog))
	for _, risk := range catalog {
		controls := make(map[int64]struct{}, len(risk.ControlIDs))
		for _, id := range risk.ControlIDs {
			controls[id] = struct{}{}
		}
		controlsByRisk[risk.ID] = controls
	}

	for _, risk := range risks {
		controls, ok := controlsByRisk[risk.StructureRiskID]
		if !ok {
			return domain.ErrUnknownRisk
		}
		for _, controlID := range risk.StructureControlIDs {
			if _, ok := controls[controlID]; !ok {
				return domain.ErrControlNotInRisk
			}
		}
	}
	return nil
}

func (s *Service) GetChecklist(ctx context.Context, checklistID int64) (domain.ChecklistGraph, error) {
	if err := s.ready(ctx); err != nil {
		return domain.ChecklistGraph{}, err
	}
	graph, _, err := s.assembler.AssembleChecklist(ctx, checklistID)
	return graph, err
}

func (s *Service) ListChecklists(ctx context.Context, filter ports.ChecklistFilter) ([]domain.Checklist, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	return s.checklists.ListChecklists(ctx, filter)
}

// DeleteChecklist discards a local record and all of its children.
func (s *Service) DeleteChecklist(ctx context.Context, checklistID int64) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.checklists.DeleteChecklist(ctx, checklistID)
}
