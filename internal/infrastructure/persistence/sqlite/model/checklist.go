package model

type ChecklistRealizado struct {
	ID                                   int64   `gorm:"column:id;primaryKey;autoIncrement"`
	UUID                                 string  `gorm:"column:uuid;type:text;not null;uniqueIndex"`
	ChecklistTipoID                      *string `gorm:"column:checklist_tipo_id;type:text"`
	ChecklistEstruturaID                 *string `gorm:"column:checklist_estrutura_id;type:text"`
	CidadeID                             *string `gorm:"column:cidade_id;type:text"`
	EquipeID                             *string `gorm:"column:equipe_id;type:text"`
	VeiculoID                            *string `gorm:"column:veiculo_id;type:text"`
	Area                                 *string `gorm:"column:area;type:text"`
	Data                                 string  `gorm:"column:data;type:text;not null;default:''"`
	Observacao                           string  `gorm:"column:observacao;type:text;not null;default:''"`
	EncarregadoID                        *string `gorm:"column:encarregado_id;type:text"`
	SupervisorID                         *string `gorm:"column:supervisor_id;type:text"`
	CoordenadorID                        *string `gorm:"column:coordenador_id;type:text"`
	TecnicoSegurancaID                   *string `gorm:"column:tecnico_seguranca_id;type:text"`
	CentroCustoID                        *string `gorm:"column:centro_custo_id;type:text"`
	Tipo                                 string  `gorm:"column:tipo;type:text;not null"`
	IsRespostaObrigatoria                bool    `gorm:"column:is_resposta_obrigatoria;not null;default:0"`
	IsDescricaoInconformidadeObrigatoria bool    `gorm:"column:is_descricao_inconformidade_obrigatoria;not null;default:0"`
	IsFinalizado                         bool    `gorm:"column:is_finalizado;not null;default:0;index"`
	IsConforme                           bool    `gorm:"column:is_conforme;not null;default:0"`
	HasInconformidade                    bool    `gorm:"column:has_inconformidade;not null;default:0"`
	FinalizadoAt                         *string `gorm:"column:finalizado_at;type:text"`
	FinalizadoBy                         *string `gorm:"column:finalizado_by;type:text"`
	CreatedAt                            string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt                            string  `gorm:"column:updated_at;type:text;not null"`
}

func (ChecklistRealizado) TableName() string {
	return "checklist_realizados"
}

type ChecklistRealizadoItem struct {
	ID                       int64   `gorm:"column:id;primaryKey;autoIncrement"`
	ChecklistRealizadoID     int64   `gorm:"column:checklist_realizado_id;not null;index"`
	ChecklistEstruturaItemID int64   `gorm:"column:checklist_estrutura_item_id;not null"`
	Pergunta                 string  `gorm:"column:pergunta;type:text;not null"`
	Ordem                    int     `gorm:"column:ordem;not null;default:0"`
	IsDescricaoObrigatoria   bool    `gorm:"column:is_descricao_obrigatoria;not null;default:0"`
	IsRespondido             bool    `gorm:"column:is_respondido;not null;default:0"`
	IsInconforme             bool    `gorm:"column:is_inconforme;not null;default:0"`
	Descricao                string  `gorm:"column:descricao;type:text;not null;default:''"`
	FotoPath                 *string `gorm:"column:foto_path;type:text"`
}

func (ChecklistRealizadoItem) TableName() string {
	return "checklist_realizado_items"
}

type ChecklistRealizadoFuncionario struct {
	ID                   int64  `gorm:"column:id;primaryKey;autoIncrement"`
	ChecklistRealizadoID int64  `gorm:"column:checklist_realizado_id;not null;index"`
	FuncionarioID        string `gorm:"column:funcionario_id;type:text;not null"`
	Nome                 string `gorm:"column:nome;type:text;not null;default:''"`
	IsLider              bool   `gorm:"column:is_lider;not null;default:0"`
	Assinatura           []byte `gorm:"column:assinatura;type:blob"`
}

func (ChecklistRealizadoFuncionario) TableName() string {
	return "checklist_realizado_funcionarios"
}

type ChecklistRealizadoAprRisco struct {
	ID                        int64 `gorm:"column:id;primaryKey;autoIncrement"`
	ChecklistRealizadoID      int64 `gorm:"column:checklist_realizado_id;not null;index"`
	ChecklistEstruturaRiscoID int64 `gorm:"column:checklist_estrutura_risco_id;not null"`
}

func (ChecklistRealizadoAprRisco) TableName() string {
	return "checklist_realizado_apr_riscos"
}

type ChecklistRealizadoAprControleRisco struct {
	ID                                int64 `gorm:"column:id;primaryKey;autoIncrement"`
	ChecklistRealizadoID              int64 `gorm:"column:checklist_realizado_id;not null;index"`
	ChecklistRealizadoAprRiscoID      int64 `gorm:"column:checklist_realizado_apr_risco_id;not null;index"`
	ChecklistEstruturaControleRiscoID int64 `gorm:"column:checklist_estrutura_controle_risco_id;not null"`
}

func (ChecklistRealizadoAprControleRisco) TableName() string {
	return "checklist_realizado_apr_controle_riscos"
}
