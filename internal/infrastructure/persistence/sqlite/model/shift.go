package model

type EquipeTurno struct {
	ID            int64   `gorm:"column:id;primaryKey;autoIncrement"`
	UUID          string  `gorm:"column:uuid;type:text;not null;uniqueIndex"`
	EquipeID      string  `gorm:"column:equipe_id;type:text;not null;index:idx_equipe_turnos_equipe_data"`
	Data          string  `gorm:"column:data;type:text;not null;index:idx_equipe_turnos_equipe_data"`
	VeiculoID     *string `gorm:"column:veiculo_id;type:text"`
	CentroCustoID *string `gorm:"column:centro_custo_id;type:text"`
	CreatedAt     string  `gorm:"column:created_at;type:text;not null"`
	IsSynced      bool    `gorm:"column:is_synced;not null;default:0"`
}

func (EquipeTurno) TableName() string {
	return "equipe_turnos"
}

type EquipeTurnoFuncionario struct {
	ID            int64  `gorm:"column:id;primaryKey;autoIncrement"`
	EquipeTurnoID int64  `gorm:"column:equipe_turno_id;not null;index"`
	FuncionarioID string `gorm:"column:funcionario_id;type:text;not null"`
	IsLider       bool   `gorm:"column:is_lider;not null;default:0"`
}

func (EquipeTurnoFuncionario) TableName() string {
	return "equipe_turno_funcionarios"
}
