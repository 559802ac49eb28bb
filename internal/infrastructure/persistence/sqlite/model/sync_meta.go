package model

type SyncMeta struct {
	Key       string `gorm:"column:key;type:text;primaryKey"`
	Value     string `gorm:"column:value;type:text;not null"`
	UpdatedAt string `gorm:"column:updated_at;type:text;not null"`
}

func (SyncMeta) TableName() string {
	return "sync_meta"
}

// All lists every table the application migrates.
func All() []any {
	return []any{
		&ChecklistRealizado{},
		&ChecklistRealizadoItem{},
		&ChecklistRealizadoFuncionario{},
		&ChecklistRealizadoAprRisco{},
		&ChecklistRealizadoAprControleRisco{},
		&EquipeTurno{},
		&EquipeTurnoFuncionario{},
		&CentroCusto{},
		&Cidade{},
		&ChecklistTipo{},
		&ChecklistEstrutura{},
		&ChecklistEstruturaItem{},
		&ChecklistEstruturaRisco{},
		&ChecklistEstruturaControleRisco{},
		&Funcionario{},
		&Veiculo{},
		&Equipe{},
		&SyncMeta{},
	}
}
