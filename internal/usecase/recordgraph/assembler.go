package recordgraph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fieldcheck/internal/domain/fieldrecord"
	"fieldcheck/internal/ports"
)

// Assembler loads a root and all of its child rows. It does not validate.
type Assembler struct {
	checklists ports.ChecklistRepository
	shifts     ports.ShiftRepository
}

func NewAssembler(checklists ports.ChecklistRepository, shifts ports.ShiftRepository) *Assembler {
	return &Assembler{checklists: checklists, shifts: shifts}
}

// AssembleChecklist returns the graph and one file reference per item photo
// stored on the device.
func (a *Assembler) AssembleChecklist(ctx context.Context, checklistID int64) (fieldrecord.ChecklistGraph, []ports.FileRef, error) {
	if a.checklists == nil {
		return fieldrecord.ChecklistGraph{}, nil, errors.New("checklist repository is required")
	}

	root, err := a.checklists.GetChecklist(ctx, checklistID)
	if err != nil {
		return fieldrecord.ChecklistGraph{}, nil, err
	}
	employees, err := a.checklists.ListEmployees(ctx, checklistID)
	if err != nil {
		return fieldrecord.ChecklistGraph{}, nil, err
	}
	items, err := a.checklists.ListItems(ctx, checklistID)
	if err != nil {
		return fieldrecord.ChecklistGraph{}, nil, err
	}
	risks, err := a.checklists.ListRisks(ctx, checklistID)
	if err != nil {
		return fieldrecord.ChecklistGraph{}, nil, err
	}

	graph := fieldrecord.ChecklistGraph{
		Checklist: root,
		Employees: employees,
		Items:     items,
		Risks:     risks,
	}
	files := PhotoFiles(items)
	graph.HasAttachments = len(files) > 0
	return graph, files, nil
}

func (a *Assembler) AssembleShift(ctx context.Context, shiftID int64) (fieldrecord.ShiftGraph, error) {
	if a.shifts == nil {
		return fieldrecord.ShiftGraph{}, errors.New("shift repository is required")
	}

	root, err := a.shifts.GetShift(ctx, shiftID)
	if err != nil {
		return fieldrecord.ShiftGraph{}, err
	}
	employees, err := a.shifts.ListShiftEmployees(ctx, shiftID)
	if err != nil {
		return fieldrecord.ShiftGraph{}, err
	}
	return fieldrecord.ShiftGraph{Shift: root, Employees: employees}, nil
}

// PhotoFiles maps each on-device item photo to the form field fotos[<item id>].
func PhotoFiles(items []fieldrecord.ChecklistItem) []ports.FileRef {
	var files []ports.FileRef
	for _, item := range items {
		if item.PhotoPath == nil || !strings.HasPrefix(*item.PhotoPath, ports.FileScheme) {
			continue
		}
		files = append(files, ports.FileRef{
			Field: fmt.Sprintf("fotos[%d]", item.ID),
			Path:  *item.PhotoPath,
		})
	}
	return files
}
