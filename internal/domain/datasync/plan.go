package datasync

import (
	"errors"
	"fmt"
	"strings"
)

// Dataset is one reference table family replaced by a pull step.
type Dataset string

const (
	DatasetCostCenters    Dataset = "cost_centers"
	DatasetCities         Dataset = "cities"
	DatasetTemplates      Dataset = "templates"
	DatasetStructures     Dataset = "structures"
	DatasetStructureItems Dataset = "structure_items"
	DatasetRisks          Dataset = "risks"
	DatasetControls       Dataset = "controls"
	DatasetEmployees      Dataset = "employees"
	DatasetVehicles       Dataset = "vehicles"
	DatasetTeams          Dataset = "teams"
)

var scopedDatasets = map[Dataset]struct{}{
	DatasetStructures:     {},
	DatasetStructureItems: {},
	DatasetRisks:          {},
	DatasetControls:       {},
	DatasetEmployees:      {},
	DatasetVehicles:       {},
	DatasetTeams:          {},
}

var knownDatasets = map[Dataset]struct{}{
	DatasetCostCenters: {},
	DatasetCities:      {},
	DatasetTemplates:   {},
}

func init() {
	for d := range scopedDatasets {
		knownDatasets[d] = struct{}{}
	}
}

// Scoped datasets are replaced per cost center when one is requested.
func (d Dataset) Scoped() bool {
	_, ok := scopedDatasets[d]
	return ok
}

func (d Dataset) Known() bool {
	_, ok := knownDatasets[d]
	return ok
}

var (
	ErrEmptyPlan        = errors.New("sync plan has no steps")
	ErrUnknownDataset   = errors.New("sync plan references an unknown dataset")
	ErrDuplicateDataset = errors.New("sync plan lists a dataset twice")
	ErrStepPathRequired = errors.New("sync plan step requires a path")
)

type PlanStep struct {
	Name    string
	Dataset Dataset
	Path    string
}

// Plan is the ordered list of pull steps. The order is stable and reported.
type Plan struct {
	Steps []PlanStep
}

func DefaultPlan() Plan {
	return Plan{Steps: []PlanStep{
		{Name: "Cost centers", Dataset: DatasetCostCenters, Path: "/centros-custo"},
		{Name: "Cities", Dataset: DatasetCities, Path: "/cidades"},
		{Name: "Templates", Dataset: DatasetTemplates, Path: "/checklist-tipos"},
		{Name: "Structures", Dataset: DatasetStructures, Path: "/checklist-estruturas"},
		{Name: "Template items", Dataset: DatasetStructureItems, Path: "/checklist-estrutura-items"},
		{Name: "Risk catalog", Dataset: DatasetRisks, Path: "/checklist-estrutura-riscos"},
		{Name: "Control catalog", Dataset: DatasetControls, Path: "/checklist-estrutura-controle-riscos"},
		{Name: "Employees", Dataset: DatasetEmployees, Path: "/funcionarios"},
		{Name: "Vehicles", Dataset: DatasetVehicles, Path: "/veiculos"},
		{Name: "Teams", Dataset: DatasetTeams, Path: "/equipes"},
	}}
}

func (p Plan) Validate() error {
	if len(p.Steps) == 0 {
		return ErrEmptyPlan
	}
	seen := make(map[Dataset]struct{}, len(p.Steps))
	for _, step := range p.Steps {
		if !step.Dataset.Known() {
			return fmt.Errorf("%w: %q", ErrUnknownDataset, step.Dataset)
		}
		if _, ok := seen[step.Dataset]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateDataset, step.Dataset)
		}
		seen[step.Dataset] = struct{}{}
		if strings.TrimSpace(step.Path) == "" {
			return fmt.Errorf("%w: %q", ErrStepPathRequired, step.Dataset)
		}
	}
	return nil
}

// StepLabel renders "Name (i/total)" for progress reporting.
func StepLabel(step PlanStep, index, total int) string {
	name := strings.TrimSpace(step.Name)
	if name == "" {
		name = string(step.Dataset)
	}
	return fmt.Sprintf("%s (%d/%d)", name, index, total)
}
