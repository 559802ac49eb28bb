package model

// Reference rows mirror the server's JSON field names so a downloaded
// dataset decodes straight into them.

type CentroCusto struct {
	ID     int64  `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Nome   string `gorm:"column:nome;type:text;not null;default:''" json:"nome"`
	Codigo string `gorm:"column:codigo;type:text;not null;default:''" json:"codigo"`
}

func (CentroCusto) TableName() string { return "centros_custo" }

type Cidade struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Nome string `gorm:"column:nome;type:text;not null;default:''" json:"nome"`
	UF   string `gorm:"column:uf;type:text;not null;default:''" json:"uf"`
}

func (Cidade) TableName() string { return "cidades" }

type ChecklistTipo struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Nome string `gorm:"column:nome;type:text;not null;default:''" json:"nome"`
	Tipo string `gorm:"column:tipo;type:text;not null;default:''" json:"tipo"`
}

func (ChecklistTipo) TableName() string { return "checklist_tipos" }

type ChecklistEstrutura struct {
	ID                                   int64  `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	ChecklistTipoID                      int64  `gorm:"column:checklist_tipo_id;not null;index" json:"checklist_tipo_id"`
	Nome                                 string `gorm:"column:nome;type:text;not null;default:''" json:"nome"`
	CentroCustoID                        *int64 `gorm:"column:centro_custo_id;index" json:"centro_custo_id"`
	IsRespostaObrigatoria                bool   `gorm:"column:is_resposta_obrigatoria;not null;default:0" json:"is_resposta_obrigatoria"`
	IsDescricaoInconformidadeObrigatoria bool   `gorm:"column:is_descricao_inconformidade_obrigatoria;not null;default:0" json:"is_descricao_inconformidade_obrigatoria"`
}

func (ChecklistEstrutura) TableName() string { return "checklist_estruturas" }

type ChecklistEstruturaItem struct {
	ID                     int64  `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	ChecklistEstruturaID   int64  `gorm:"column:checklist_estrutura_id;not null;index" json:"checklist_estrutura_id"`
	Pergunta               string `gorm:"column:pergunta;type:text;not null;default:''" json:"pergunta"`
	Ordem                  int    `gorm:"column:ordem;not null;default:0" json:"ordem"`
	IsDescricaoObrigatoria bool   `gorm:"column:is_descricao_obrigatoria;not null;default:0" json:"is_descricao_obrigatoria"`
	CentroCustoID          *int64 `gorm:"column:centro_custo_id;index" json:"centro_custo_id"`
}

func (ChecklistEstruturaItem) TableName() string { return "checklist_estrutura_items" }

type ChecklistEstruturaRisco struct {
	ID                   int64  `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	ChecklistEstruturaID int64  `gorm:"column:checklist_estrutura_id;not null;index" json:"checklist_estrutura_id"`
	Nome                 string `gorm:"column:nome;type:text;not null;default:''" json:"nome"`
	CentroCustoID        *int64 `gorm:"column:centro_custo_id;index" json:"centro_custo_id"`
}

func (ChecklistEstruturaRisco) TableName() string { return "checklist_estrutura_riscos" }

type ChecklistEstruturaControleRisco struct {
	ID                        int64  `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	ChecklistEstruturaRiscoID int64  `gorm:"column:checklist_estrutura_risco_id;not null;index" json:"checklist_estrutura_risco_id"`
	Nome                      string `gorm:"column:nome;type:text;not null;default:''" json:"nome"`
	CentroCustoID             *int64 `gorm:"column:centro_custo_id;index" json:"centro_custo_id"`
}

func (ChecklistEstruturaControleRisco) TableName() string { return "checklist_estrutura_controle_riscos" }

type Funcionario struct {
	ID            int64  `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Nome          string `gorm:"column:nome;type:text;not null;default:''" json:"nome"`
	Matricula     string `gorm:"column:matricula;type:text;not null;default:''" json:"matricula"`
	CentroCustoID *int64 `gorm:"column:centro_custo_id;index" json:"centro_custo_id"`
}

func (Funcionario) TableName() string { return "funcionarios" }

type Veiculo struct {
	ID            int64  `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Placa         string `gorm:"column:placa;type:text;not null;default:''" json:"placa"`
	Descricao     string `gorm:"column:descricao;type:text;not null;default:''" json:"descricao"`
	CentroCustoID *int64 `gorm:"column:centro_custo_id;index" json:"centro_custo_id"`
}

func (Veiculo) TableName() string { return "veiculos" }

type Equipe struct {
	ID            int64  `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Nome          string `gorm:"column:nome;type:text;not null;default:''" json:"nome"`
	CentroCustoID *int64 `gorm:"column:centro_custo_id;index" json:"centro_custo_id"`
}

func (Equipe) TableName() string { return "equipes" }
