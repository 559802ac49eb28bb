package fieldrecord

import (
	"fmt"
	"strings"
	"time"
)

// Gate names one finalize validation step.
type Gate string

const (
	GateGeneralData Gate = "general-data"
	GateLeadership  Gate = "leadership"
	GateEmployees   Gate = "employees"
	GateItems       Gate = "items"
	GateCompliance  Gate = "compliance"
	GateSignatures  Gate = "signatures"
)

// GateOrder is the fixed evaluation order; the first failure wins.
var GateOrder = []Gate{
	GateGeneralData,
	GateLeadership,
	GateEmployees,
	GateItems,
	GateCompliance,
	GateSignatures,
}

// PendingDescriptionPrefix starts the reason reported when nonconforming
// items still lack the description their structure asks for.
const PendingDescriptionPrefix = "pending description"

type GateResult struct {
	Gate   Gate
	OK     bool
	Reason string
}

func passed(gate Gate) GateResult {
	return GateResult{Gate: gate, OK: true}
}

func failed(gate Gate, format string, args ...any) GateResult {
	return GateResult{Gate: gate, Reason: fmt.Sprintf(format, args...)}
}

// CheckGeneralData requires every identifier of the first form screen.
func CheckGeneralData(c Checklist) GateResult {
	required := []struct {
		name  string
		value Ref
	}{
		{"template", c.TemplateID},
		{"structure", c.StructureID},
		{"locality", c.CityID},
		{"date", Ref(c.Date)},
		{"area", c.Area},
		{"team", c.TeamID},
	}
	for _, field := range required {
		if !field.value.Present() {
			return failed(GateGeneralData, "%s is required", field.name)
		}
	}
	if _, err := time.Parse(DateLayout, strings.TrimSpace(c.Date)); err != nil {
		return failed(GateGeneralData, "date %q is not a valid YYYY-MM-DD date", c.Date)
	}
	return passed(GateGeneralData)
}

func CheckLeadership(c Checklist) GateResult {
	roles := []struct {
		name  string
		value Ref
	}{
		{"foreman", c.ForemanID},
		{"supervisor", c.SupervisorID},
		{"coordinator", c.CoordinatorID},
		{"safety officer", c.SafetyOfficerID},
	}
	for _, role := range roles {
		if !role.value.Present() {
			return failed(GateLeadership, "leadership role %s is required", role.name)
		}
	}
	return passed(GateLeadership)
}

func CheckEmployees(employees []ChecklistEmployee) GateResult {
	if len(employees) == 0 {
		return failed(GateEmployees, "at least one employee must be attached")
	}
	return passed(GateEmployees)
}

// CheckItems applies the structure's answer rules captured at creation.
func CheckItems(c Checklist, items []ChecklistItem) GateResult {
	if !c.RequiresAnswers {
		return passed(GateItems)
	}

	for _, item := range items {
		if !item.IsAnswered {
			return failed(GateItems, "%s is not answered", item.Label())
		}
	}

	if !c.RequiresDescriptions {
		return passed(GateItems)
	}

	required := 0
	filled := 0
	var firstPending *ChecklistItem
	for i := range items {
		item := items[i]
		if item.RequiresDescription && item.IsNonconforming {
			required++
			if firstPending == nil && strings.TrimSpace(item.Description) == "" {
				firstPending = &items[i]
			}
		}
		if strings.TrimSpace(item.Description) != "" {
			filled++
		}
	}

	if required > 0 && filled < required {
		label := "a nonconforming item"
		if firstPending != nil {
			label = firstPending.Label()
		}
		return failed(GateItems, "%s: %s is nonconforming and needs a description (%d of %d filled)",
			PendingDescriptionPrefix, label, filled, required)
	}
	return passed(GateItems)
}

// HasNonconformity reports whether any item was marked nonconforming.
func HasNonconformity(items []ChecklistItem) bool {
	for _, item := range items {
		if item.IsNonconforming {
			return true
		}
	}
	return false
}

// CheckCompliance only applies to behavioral observations: declared
// compliance and a found nonconformity are mutually exclusive, and one of
// them must hold.
func CheckCompliance(c Checklist, items []ChecklistItem) GateResult {
	if c.Kind != KindBehavioralObservation {
		return passed(GateCompliance)
	}

	for _, item := range items {
		if item.IsNonconforming && c.DeclaredCompliant {
			return failed(GateCompliance, "compliance cannot be declared: %s is nonconforming", item.Label())
		}
	}
	if !HasNonconformity(items) && !c.DeclaredCompliant {
		return failed(GateCompliance, "no nonconformity was found: declare compliance to finalize")
	}
	return passed(GateCompliance)
}

// CheckSignatures applies to risk assessments finalized by field users.
func CheckSignatures(c Checklist, employees []ChecklistEmployee, actor Actor) GateResult {
	if c.Kind != KindRiskAssessment || !actor.IsFieldUser() {
		return passed(GateSignatures)
	}
	for _, employee := range employees {
		if len(employee.Signature) == 0 {
			return failed(GateSignatures, "%s has not signed", employee.Label())
		}
	}
	return passed(GateSignatures)
}

// Evaluation is the outcome of running the gates over one record graph.
type Evaluation struct {
	Results          []GateResult
	HasNonconformity bool
}

func (e Evaluation) OK() bool {
	_, blocked := e.Failure()
	return !blocked
}

func (e Evaluation) Failure() (GateResult, bool) {
	for _, result := range e.Results {
		if !result.OK {
			return result, true
		}
	}
	return GateResult{}, false
}

// Err returns a *ValidationError for the failing gate, or nil.
func (e Evaluation) Err() error {
	result, blocked := e.Failure()
	if !blocked {
		return nil
	}
	return &ValidationError{Gate: result.Gate, Reason: result.Reason}
}

// EvaluateFinalize runs the gates in GateOrder and stops at the first failure.
func EvaluateFinalize(graph ChecklistGraph, actor Actor) Evaluation {
	eval := Evaluation{
		Results:          make([]GateResult, 0, len(GateOrder)),
		HasNonconformity: HasNonconformity(graph.Items),
	}

	for _, gate := range GateOrder {
		var result GateResult
		switch gate {
		case GateGeneralData:
			result = CheckGeneralData(graph.Checklist)
		case GateLeadership:
			result = CheckLeadership(graph.Checklist)
		case GateEmployees:
			result = CheckEmployees(graph.Employees)
		case GateItems:
			result = CheckItems(graph.Checklist, graph.Items)
		case GateCompliance:
			result = CheckCompliance(graph.Checklist, graph.Items)
		case GateSignatures:
			result = CheckSignatures(graph.Checklist, graph.Employees, actor)
		}

		eval.Results = append(eval.Results, result)
		if !result.OK {
			break
		}
	}
	return eval
}
