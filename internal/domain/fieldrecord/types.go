package fieldrecord

import (
	"strconv"
	"strings"
	"time"
)

// Kind is the checklist variant, taken from the template the record was created from.
type Kind string

const (
	KindStandard              Kind = "padrao"
	KindRiskAssessment        Kind = "apr"
	KindBehavioralObservation Kind = "observacao_comportamental"
)

func NormalizeKind(raw string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindRiskAssessment:
		return KindRiskAssessment
	case KindBehavioralObservation:
		return KindBehavioralObservation
	default:
		return KindStandard
	}
}

// ActorRole distinguishes crew members in the field from office staff.
type ActorRole string

const (
	ActorRoleField  ActorRole = "campo"
	ActorRoleOffice ActorRole = "escritorio"
)

type Actor struct {
	ID   string
	Role ActorRole
}

func (a Actor) IsFieldUser() bool {
	return a.Role == ActorRoleField
}

// DateLayout is the calendar date format used by roots and shifts.
const DateLayout = "2006-01-02"

// Checklist is the root row of a checklist record graph.
type Checklist struct {
	ID          int64  `json:"id"`
	UUID        string `json:"uuid"`
	TemplateID  Ref    `json:"checklist_tipo_id"`
	StructureID Ref    `json:"checklist_estrutura_id"`
	CityID      Ref    `json:"cidade_id"`
	TeamID      Ref    `json:"equipe_id"`
	VehicleID   Ref    `json:"veiculo_id"`
	Area        Ref    `json:"area"`
	Date        string `json:"data"`
	Note        string `json:"observacao"`

	ForemanID       Ref `json:"encarregado_id"`
	SupervisorID    Ref `json:"supervisor_id"`
	CoordinatorID   Ref `json:"coordenador_id"`
	SafetyOfficerID Ref `json:"tecnico_seguranca_id"`
	CostCenterID    Ref `json:"centro_custo_id"`

	Kind                 Kind `json:"tipo"`
	RequiresAnswers      bool `json:"is_resposta_obrigatoria"`
	RequiresDescriptions bool `json:"is_descricao_inconformidade_obrigatoria"`

	IsFinalized       bool    `json:"is_finalizado"`
	DeclaredCompliant bool    `json:"is_conforme"`
	HasNonconformity  bool    `json:"has_inconformidade"`
	FinalizedAt       *string `json:"finalizado_at"`
	FinalizedBy       *string `json:"finalizado_by"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

func (c Checklist) State() State {
	if c.IsFinalized {
		return StateFinalized
	}
	return StateDraft
}

type ChecklistItem struct {
	ID                  int64   `json:"id"`
	ChecklistID         int64   `json:"checklist_realizado_id"`
	StructureItemID     int64   `json:"checklist_estrutura_item_id"`
	Question            string  `json:"pergunta"`
	Order               int     `json:"ordem"`
	RequiresDescription bool    `json:"is_descricao_obrigatoria"`
	IsAnswered          bool    `json:"is_respondido"`
	IsNonconforming     bool    `json:"is_inconforme"`
	Description         string  `json:"descricao"`
	PhotoPath           *string `json:"foto_path"`
}

// Label names the item the way a crew member sees it on the form.
func (i ChecklistItem) Label() string {
	if q := strings.TrimSpace(i.Question); q != "" {
		return "item " + strconv.Itoa(i.Order) + " \"" + q + "\""
	}
	return "item " + strconv.Itoa(i.Order)
}

type ChecklistEmployee struct {
	ID          int64  `json:"id"`
	ChecklistID int64  `json:"checklist_realizado_id"`
	EmployeeID  Ref    `json:"funcionario_id"`
	Name        string `json:"nome"`
	IsLeader    bool   `json:"is_lider"`
	Signature   []byte `json:"assinatura,omitempty"`
}

func (e ChecklistEmployee) Label() string {
	if n := strings.TrimSpace(e.Name); n != "" {
		return "employee \"" + n + "\" (" + e.EmployeeID.String() + ")"
	}
	return "employee " + e.EmployeeID.String()
}

type ChecklistRisk struct {
	ID              int64                  `json:"id"`
	ChecklistID     int64                  `json:"checklist_realizado_id"`
	StructureRiskID int64                  `json:"checklist_estrutura_risco_id"`
	Controls        []ChecklistRiskControl `json:"controles"`
}

type ChecklistRiskControl struct {
	ID                 int64 `json:"id"`
	ChecklistID        int64 `json:"checklist_realizado_id"`
	ChecklistRiskID    int64 `json:"checklist_realizado_apr_risco_id"`
	StructureControlID int64 `json:"checklist_estrutura_controle_risco_id"`
}

// ChecklistGraph is a root plus every child row, sent upstream as one payload.
type ChecklistGraph struct {
	Checklist
	Employees []ChecklistEmployee `json:"funcionarios"`
	Items     []ChecklistItem     `json:"items"`
	Risks     []ChecklistRisk     `json:"riscos"`

	HasAttachments bool `json:"-"`
}

// GeneralData is the first form screen of a checklist.
type GeneralData struct {
	TemplateID  Ref
	StructureID Ref
	CityID      Ref
	TeamID      Ref
	VehicleID   Ref
	Area        Ref
	Date        string
	Note        string
}

type Leadership struct {
	ForemanID       Ref
	SupervisorID    Ref
	CoordinatorID   Ref
	SafetyOfficerID Ref
}

type ItemAnswer struct {
	ItemID          int64
	IsAnswered      bool
	IsNonconforming bool
	Description     string
	PhotoPath       *string
}

type EmployeeSelection struct {
	EmployeeID Ref
	IsLeader   bool
	Signature  []byte
}

type RiskSelection struct {
	StructureRiskID     int64
	StructureControlIDs []int64
}

// FinalizeStamp is written on the root when every gate passes.
type FinalizeStamp struct {
	FinalizedAt       string
	FinalizedBy       string
	HasNonconformity  bool
	DeclaredCompliant bool
}

// Template is the reference snapshot a checklist is created from: a
// structure joined with its template type.
type Template struct {
	StructureID          int64
	TemplateID           int64
	Name                 string
	Kind                 Kind
	CostCenterID         *int64
	RequiresAnswers      bool
	RequiresDescriptions bool
}

type TemplateItem struct {
	ID                  int64
	StructureID         int64
	Question            string
	Order               int
	RequiresDescription bool
}

type TemplateRisk struct {
	ID          int64
	StructureID int64
	Name        string
	ControlIDs  []int64
}

func NowString(now time.Time) string {
	return now.UTC().Format(time.RFC3339Nano)
}
