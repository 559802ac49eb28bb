package fieldrecord

import (
	"strings"
	"time"
)

// Shift is the root row of a team's daily shift record (turno).
type Shift struct {
	ID           int64  `json:"id"`
	UUID         string `json:"uuid"`
	TeamID       Ref    `json:"equipe_id"`
	Date         string `json:"data"`
	VehicleID    Ref    `json:"veiculo_id"`
	CostCenterID Ref    `json:"centro_custo_id"`
	CreatedAt    string `json:"created_at"`
	IsSynced     bool   `json:"is_synced"`
}

type ShiftEmployee struct {
	ID         int64 `json:"id"`
	ShiftID    int64 `json:"equipe_turno_id"`
	EmployeeID Ref   `json:"funcionario_id"`
	IsLeader   bool  `json:"is_lider"`
}

// ShiftGraph carries no binary attachments.
type ShiftGraph struct {
	Shift
	Employees []ShiftEmployee `json:"funcionarios"`
}

// ValidateNewShift checks a shift before the store's uniqueness check runs.
func ValidateNewShift(shift Shift, employees []EmployeeSelection) error {
	if !shift.TeamID.Present() {
		return ErrShiftTeamRequired
	}
	if _, err := time.Parse(DateLayout, strings.TrimSpace(shift.Date)); err != nil {
		return ErrInvalidDate
	}
	if len(employees) == 0 {
		return ErrShiftWithoutEmployees
	}

	seen := make(map[Ref]struct{}, len(employees))
	for _, employee := range employees {
		if !employee.EmployeeID.Present() {
			return ErrShiftWithoutEmployees
		}
		if _, ok := seen[employee.EmployeeID]; ok {
			return ErrDuplicateShiftEmployee
		}
		seen[employee.EmployeeID] = struct{}{}
	}
	return nil
}
