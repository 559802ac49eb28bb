package ports

import (
	"context"

	"fieldcheck/internal/domain/fieldrecord"
)

type ChecklistFilter struct {
	FinalizedOnly bool
	DraftOnly     bool
}

// ChecklistRepository owns checklist_realizados and its child tables.
//
// Multi-statement writes (create, delete, replace) run in the transaction
// found in ctx, or in one they open themselves.
type ChecklistRepository interface {
	CreateChecklist(ctx context.Context, root fieldrecord.Checklist) (fieldrecord.Checklist, int, error)
	GetChecklist(ctx context.Context, checklistID int64) (fieldrecord.Checklist, error)
	ListChecklists(ctx context.Context, filter ChecklistFilter) ([]fieldrecord.Checklist, error)
	CountChecklists(ctx context.Context, filter ChecklistFilter) (int64, error)

	UpdateGeneralData(ctx context.Context, checklistID int64, data fieldrecord.GeneralData, updatedAt string) error
	UpdateLeadership(ctx context.Context, checklistID int64, leadership fieldrecord.Leadership, updatedAt string) error
	SetDeclaredCompliance(ctx context.Context, checklistID int64, compliant bool, updatedAt string) error
	MarkFinalized(ctx context.Context, checklistID int64, stamp fieldrecord.FinalizeStamp) error

	ListItems(ctx context.Context, checklistID int64) ([]fieldrecord.ChecklistItem, error)
	CountItems(ctx context.Context, checklistID int64) (int64, error)
	UpdateItemAnswer(ctx context.Context, checklistID int64, answer fieldrecord.ItemAnswer) error

	ListEmployees(ctx context.Context, checklistID int64) ([]fieldrecord.ChecklistEmployee, error)
	ReplaceEmployees(ctx context.Context, checklistID int64, employees []fieldrecord.ChecklistEmployee) error
	SetEmployeeSignature(ctx context.Context, checklistID int64, employeeID fieldrecord.Ref, signature []byte) error

	ListRisks(ctx context.Context, checklistID int64) ([]fieldrecord.ChecklistRisk, error)
	ReplaceRisks(ctx context.Context, checklistID int64, risks []fieldrecord.RiskSelection) error

	DeleteChecklist(ctx context.Context, checklistID int64) error
}

type ShiftFilter struct {
	TeamID fieldrecord.Ref
	Date   string
}

// ShiftRepository owns equipe_turnos and equipe_turno_funcionarios.
type ShiftRepository interface {
	CreateShift(ctx context.Context, shift fieldrecord.Shift, employees []fieldrecord.EmployeeSelection) (fieldrecord.Shift, error)
	GetShift(ctx context.Context, shiftID int64) (fieldrecord.Shift, error)
	FindShift(ctx context.Context, teamID fieldrecord.Ref, date string) (fieldrecord.Shift, bool, error)
	ListShifts(ctx context.Context, filter ShiftFilter) ([]fieldrecord.Shift, error)
	CountShifts(ctx context.Context) (int64, error)
	ListShiftEmployees(ctx context.Context, shiftID int64) ([]fieldrecord.ShiftEmployee, error)
	DeleteShift(ctx context.Context, shiftID int64) error
}
