package fieldrecord

import (
	"errors"
	"fmt"
)

var (
	ErrChecklistNotFound    = errors.New("checklist not found")
	ErrChecklistFinalized   = errors.New("checklist is finalized and can no longer be edited")
	ErrStructureRequired    = errors.New("checklist structure is required")
	ErrTemplateNotFound     = errors.New("checklist structure not found in reference data")
	ErrTemplateWithoutItems = errors.New("checklist structure has no items")
	ErrStructureChange      = errors.New("checklist structure cannot change after creation")
	ErrItemNotInChecklist   = errors.New("item does not belong to checklist")
	ErrEmployeeNotAttached  = errors.New("employee is not attached to checklist")
	ErrDuplicateEmployee    = errors.New("employee listed twice on checklist")
	ErrRisksNotAllowed      = errors.New("risks can only be recorded on risk assessment checklists")
	ErrUnknownRisk          = errors.New("risk is not part of the structure catalog")
	ErrControlNotInRisk     = errors.New("control does not belong to the selected risk")
	ErrInvalidDate          = errors.New("date must use YYYY-MM-DD")

	ErrShiftNotFound          = errors.New("shift not found")
	ErrShiftAlreadyExists     = errors.New("a shift already exists for this team and date")
	ErrShiftTeamRequired      = errors.New("shift team is required")
	ErrShiftWithoutEmployees  = errors.New("shift requires at least one employee")
	ErrDuplicateShiftEmployee = errors.New("employee listed twice on shift")
)

// ValidationError reports the first finalize gate that failed. It never
// leaves the device.
type ValidationError struct {
	Gate   Gate
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("finalize blocked by %s gate: %s", e.Gate, e.Reason)
}

func (e *ValidationError) UserMessage() string { return e.Reason }
