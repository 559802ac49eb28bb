package datasync

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	domain "fieldcheck/internal/domain/datasync"
	"fieldcheck/internal/errs"
)

type planFileStep struct {
	Name    string `toml:"name"`
	Dataset string `toml:"dataset"`
	Path    string `toml:"path"`
}

type planFile struct {
	Version int            `toml:"version"`
	Steps   []planFileStep `toml:"steps"`
}

// LoadPlan reads a pull plan from TOML. An empty path yields the built-in
// plan.
//
//	version = 1
//	[[steps]]
//	name = "Teams"
//	dataset = "teams"
//	path = "/equipes"
func LoadPlan(planPath string) (domain.Plan, error) {
	path := strings.TrimSpace(planPath)
	if path == "" {
		return domain.DefaultPlan(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Plan{}, errs.Wrapf(err, "read sync plan %q", path)
	}
	return ParsePlan(raw)
}

func ParsePlan(raw []byte) (domain.Plan, error) {
	var file planFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return domain.Plan{}, errs.Wrap(err, "decode sync plan")
	}
	if file.Version != 1 {
		return domain.Plan{}, errors.New("unsupported sync plan version: expected version = 1")
	}

	plan := domain.Plan{Steps: make([]domain.PlanStep, 0, len(file.Steps))}
	for i, step := range file.Steps {
		dataset := domain.Dataset(strings.ToLower(strings.TrimSpace(step.Dataset)))
		if dataset == "" {
			return domain.Plan{}, fmt.Errorf("steps[%d].dataset is required", i)
		}
		plan.Steps = append(plan.Steps, domain.PlanStep{
			Name:    strings.TrimSpace(step.Name),
			Dataset: dataset,
			Path:    strings.TrimSpace(step.Path),
		})
	}
	if err := plan.Validate(); err != nil {
		return domain.Plan{}, err
	}
	return plan, nil
}
