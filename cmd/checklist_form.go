package cmd

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	domain "fieldcheck/internal/domain/fieldrecord"
	"fieldcheck/internal/errs"
	"fieldcheck/internal/ports"
	"fieldcheck/internal/usecase/fieldrecord"
)

// formDocument is the YAML shape accepted by `checklist apply`. Identifier
// fields take a number, a string, an {id: ...} object or null.
type formDocument struct {
	General    *generalDocument    `yaml:"general"`
	Leadership *leadershipDocument `yaml:"leadership"`
	Employees  *[]employeeDocument `yaml:"employees"`
	Answers    []answerDocument    `yaml:"answers"`
	Risks      *[]riskDocument     `yaml:"risks"`
	Compliant  *bool               `yaml:"compliant"`
}

type generalDocument struct {
	Template  any    `yaml:"template"`
	Structure any    `yaml:"structure"`
	City      any    `yaml:"city"`
	Team      any    `yaml:"team"`
	Vehicle   any    `yaml:"vehicle"`
	Area      any    `yaml:"area"`
	Date      string `yaml:"date"`
	Note      string `yaml:"note"`
}

type leadershipDocument struct {
	Foreman       any `yaml:"foreman"`
	Supervisor    any `yaml:"supervisor"`
	Coordinator   any `yaml:"coordinator"`
	SafetyOfficer any `yaml:"safety_officer"`
}

type employeeDocument struct {
	ID            any    `yaml:"id"`
	Leader        bool   `yaml:"leader"`
	Signature     string `yaml:"signature"`
	SignatureFile string `yaml:"signature_file"`
}

type answerDocument struct {
	Item          int64  `yaml:"item"`
	Answered      *bool  `yaml:"answered"`
	Nonconforming bool   `yaml:"nonconforming"`
	Description   string `yaml:"description"`
	Photo         string `yaml:"photo"`
}

type riskDocument struct {
	Risk     int64   `yaml:"risk"`
	Controls []int64 `yaml:"controls"`
}

// loadForm reads a form document. Relative signature and photo paths are
// resolved against the document's directory.
func loadForm(path string) (fieldrecord.Form, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fieldrecord.Form{}, errs.Wrapf(err, "read form %q", path)
	}
	return parseForm(raw, filepath.Dir(path))
}

func parseForm(raw []byte, baseDir string) (fieldrecord.Form, error) {
	var doc formDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fieldrecord.Form{}, errs.Wrap(err, "decode form")
	}

	form := fieldrecord.Form{DeclaredCompliant: doc.Compliant}
	if g := doc.General; g != nil {
		form.General = &domain.GeneralData{
			TemplateID:  domain.NormalizeRef(g.Template),
			StructureID: domain.NormalizeRef(g.Structure),
			CityID:      domain.NormalizeRef(g.City),
			TeamID:      domain.NormalizeRef(g.Team),
			VehicleID:   domain.NormalizeRef(g.Vehicle),
			Area:        domain.NormalizeRef(g.Area),
			Date:        strings.TrimSpace(g.Date),
			Note:        g.Note,
		}
	}
	if l := doc.Leadership; l != nil {
		form.Leadership = &domain.Leadership{
			ForemanID:       domain.NormalizeRef(l.Foreman),
			SupervisorID:    domain.NormalizeRef(l.Supervisor),
			CoordinatorID:   domain.NormalizeRef(l.Coordinator),
			SafetyOfficerID: domain.NormalizeRef(l.SafetyOfficer),
		}
	}

	if doc.Employees != nil {
		form.ReplaceEmployees = true
		for i, e := range *doc.Employees {
			signature, err := readSignature(e, baseDir)
			if err != nil {
				return fieldrecord.Form{}, fmt.Errorf("employees[%d]: %w", i, err)
			}
			form.Employees = append(form.Employees, domain.EmployeeSelection{
				EmployeeID: domain.NormalizeRef(e.ID),
				IsLeader:   e.Leader,
				Signature:  signature,
			})
		}
	}

	for i, a := range doc.Answers {
		if a.Item <= 0 {
			return fieldrecord.Form{}, fmt.Errorf("answers[%d].item is required", i)
		}
		answered := true
		if a.Answered != nil {
			answered = *a.Answered
		}
		answer := domain.ItemAnswer{
			ItemID:          a.Item,
			IsAnswered:      answered,
			IsNonconforming: a.Nonconforming,
			Description:     a.Description,
		}
		if photo := photoPath(a.Photo, baseDir); photo != "" {
			answer.PhotoPath = &photo
		}
		form.Answers = append(form.Answers, answer)
	}

	if doc.Risks != nil {
		form.ReplaceRisks = true
		for _, r := range *doc.Risks {
			form.Risks = append(form.Risks, domain.RiskSelection{StructureRiskID: r.Risk, StructureControlIDs: r.Controls})
		}
	}
	return form, nil
}

func readSignature(e employeeDocument, baseDir string) ([]byte, error) {
	inline := strings.TrimSpace(e.Signature)
	file := strings.TrimSpace(e.SignatureFile)
	switch {
	case inline != "" && file != "":
		return nil, errors.New("signature and signature_file are mutually exclusive")
	case inline != "":
		decoded, err := base64.StdEncoding.DecodeString(inline)
		if err != nil {
			return nil, errs.Wrap(err, "decode signature")
		}
		return decoded, nil
	case file != "":
		if !filepath.IsAbs(file) {
			file = filepath.Join(baseDir, file)
		}
		raw, err := os.ReadFile(file)
		if err != nil {
			return nil, errs.Wrapf(err, "read signature %q", file)
		}
		return raw, nil
	default:
		return nil, nil
	}
}

// photoPath keeps remote URLs and file:// paths as given and turns a bare
// path into a file:// reference.
func photoPath(raw string, baseDir string) string {
	p := strings.TrimSpace(raw)
	if p == "" || strings.Contains(p, "://") {
		return p
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(baseDir, p)
	}
	return ports.FileScheme + p
}
