package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"fieldcheck/internal/domain/fieldrecord"
	"fieldcheck/internal/errs"
	"fieldcheck/internal/infrastructure/persistence/sqlite/model"
	"fieldcheck/internal/ports"
)

type ChecklistRepository struct {
	db *gorm.DB
}

var _ ports.ChecklistRepository = (*ChecklistRepository)(nil)

func NewChecklistRepository(db *gorm.DB) *ChecklistRepository {
	return &ChecklistRepository{db: db}
}

// CreateChecklist inserts the root and snapshots one item per reference item
// of its structure. A structure without items rolls the insert back.
func (r *ChecklistRepository) CreateChecklist(ctx context.Context, root fieldrecord.Checklist) (fieldrecord.Checklist, int, error) {
	structureID, ok := root.StructureID.Int64()
	if !ok {
		return fieldrecord.Checklist{}, 0, fieldrecord.ErrStructureRequired
	}

	var created fieldrecord.Checklist
	var itemCount int
	err := inTx(ctx, r.db, func(_ context.Context, db *gorm.DB) error {
		var templateItems []model.ChecklistEstruturaItem
		if err := db.
			Where("checklist_estrutura_id = ?", structureID).
			Order("ordem asc, id asc").
			Find(&templateItems).Error; err != nil {
			return errs.Wrap(err, "query structure items")
		}
		if len(templateItems) == 0 {
			return fieldrecord.ErrTemplateWithoutItems
		}

		row := toChecklistRow(root)
		if err := db.Create(&row).Error; err != nil {
			return errs.Wrap(err, "insert checklist")
		}

		items := make([]model.ChecklistRealizadoItem, 0, len(templateItems))
		for _, item := range templateItems {
			items = append(items, model.ChecklistRealizadoItem{
				ChecklistRealizadoID:     row.ID,
				ChecklistEstruturaItemID: item.ID,
				Pergunta:                 item.Pergunta,
				Ordem:                    item.Ordem,
				IsDescricaoObrigatoria:   item.IsDescricaoObrigatoria,
			})
		}
		if err := db.Create(&items).Error; err != nil {
			return errs.Wrap(err, "insert checklist items")
		}

		created = mapChecklist(row)
		itemCount = len(items)
		return nil
	})
	if err != nil {
		return fieldrecord.Checklist{}, 0, err
	}
	return created, itemCount, nil
}

func (r *ChecklistRepository) GetChecklist(ctx context.Context, checklistID int64) (fieldrecord.Checklist, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return fieldrecord.Checklist{}, err
	}

	var row model.ChecklistRealizado
	if err := db.Where("id = ?", checklistID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fieldrecord.Checklist{}, fieldrecord.ErrChecklistNotFound
		}
		return fieldrecord.Checklist{}, errs.Wrap(err, "query checklist")
	}
	return mapChecklist(row), nil
}

func (r *ChecklistRepository) ListChecklists(ctx context.Context, filter ports.ChecklistFilter) ([]fieldrecord.Checklist, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.ChecklistRealizado
	if err := applyChecklistFilter(db.Model(&model.ChecklistRealizado{}), filter).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query checklists")
	}

	out := make([]fieldrecord.Checklist, 0, len(rows))
	for _, row := range rows {
		out = append(out, mapChecklist(row))
	}
	return out, nil
}

func (r *ChecklistRepository) CountChecklists(ctx context.Context, filter ports.ChecklistFilter) (int64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := applyChecklistFilter(db.Model(&model.ChecklistRealizado{}), filter).Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count checklists")
	}
	return count, nil
}

func applyChecklistFilter(query *gorm.DB, filter ports.ChecklistFilter) *gorm.DB {
	switch {
	case filter.FinalizedOnly:
		return query.Where("is_finalizado = ?", true)
	case filter.DraftOnly:
		return query.Where("is_finalizado = ?", false)
	default:
		return query
	}
}

func (r *ChecklistRepository) UpdateGeneralData(ctx context.Context, checklistID int64, data fieldrecord.GeneralData, updatedAt string) error {
	return r.updateRoot(ctx, checklistID, "update checklist general data", map[string]any{
		"checklist_tipo_id":      data.TemplateID.Ptr(),
		"checklist_estrutura_id": data.StructureID.Ptr(),
		"cidade_id":              data.CityID.Ptr(),
		"equipe_id":              data.TeamID.Ptr(),
		"veiculo_id":             data.VehicleID.Ptr(),
		"area":                   data.Area.Ptr(),
		"data":                   data.Date,
		"observacao":             data.Note,
		"updated_at":             updatedAt,
	})
}

func (r *ChecklistRepository) UpdateLeadership(ctx context.Context, checklistID int64, leadership fieldrecord.Leadership, updatedAt string) error {
	return r.updateRoot(ctx, checklistID, "update checklist leadership", map[string]any{
		"encarregado_id":       leadership.ForemanID.Ptr(),
		"supervisor_id":        leadership.SupervisorID.Ptr(),
		"coordenador_id":       leadership.CoordinatorID.Ptr(),
		"tecnico_seguranca_id": leadership.SafetyOfficerID.Ptr(),
		"updated_at":           updatedAt,
	})
}

func (r *ChecklistRepository) SetDeclaredCompliance(ctx context.Context, checklistID int64, compliant bool, updatedAt string) error {
	return r.updateRoot(ctx, checklistID, "update checklist compliance", map[string]any{
		"is_conforme": compliant,
		"updated_at":  updatedAt,
	})
}

func (r *ChecklistRepository) MarkFinalized(ctx context.Context, checklistID int64, stamp fieldrecord.FinalizeStamp) error {
	return r.updateRoot(ctx, checklistID, "finalize checklist", map[string]any{
		"is_finalizado":      true,
		"finalizado_at":      stamp.FinalizedAt,
		"finalizado_by":      stamp.FinalizedBy,
		"has_inconformidade": stamp.HasNonconformity,
		"is_conforme":        stamp.DeclaredCompliant,
		"updated_at":         stamp.FinalizedAt,
	})
}

func (r *ChecklistRepository) updateRoot(ctx context.Context, checklistID int64, op string, values map[string]any) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Model(&model.ChecklistRealizado{}).Where("id = ?", checklistID).Updates(values)
	if result.Error != nil {
		return errs.Wrap(result.Error, op)
	}
	if result.RowsAffected == 0 {
		return fieldrecord.ErrChecklistNotFound
	}
	return nil
}

func (r *ChecklistRepository) ListItems(ctx context.Context, checklistID int64) ([]fieldrecord.ChecklistItem, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.ChecklistRealizadoItem
	if err := db.
		Where("checklist_realizado_id = ?", checklistID).
		Order("ordem asc, id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query checklist items")
	}

	items := make([]fieldrecord.ChecklistItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, fieldrecord.ChecklistItem{
			ID:                  row.ID,
			ChecklistID:         row.ChecklistRealizadoID,
			StructureItemID:     row.ChecklistEstruturaItemID,
			Question:            row.Pergunta,
			Order:               row.Ordem,
			RequiresDescription: row.IsDescricaoObrigatoria,
			IsAnswered:          row.IsRespondido,
			IsNonconforming:     row.IsInconforme,
			Description:         row.Descricao,
			PhotoPath:           row.FotoPath,
		})
	}
	return items, nil
}

func (r *ChecklistRepository) CountItems(ctx context.Context, checklistID int64) (int64, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.ChecklistRealizadoItem{}).
		Where("checklist_realizado_id = ?", checklistID).
		Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count checklist items")
	}
	return count, nil
}

func (r *ChecklistRepository) UpdateItemAnswer(ctx context.Context, checklistID int64, answer fieldrecord.ItemAnswer) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Model(&model.ChecklistRealizadoItem{}).
		Where("id = ? AND checklist_realizado_id = ?", answer.ItemID, checklistID).
		Updates(map[string]any{
			"is_respondido": answer.IsAnswered,
			"is_inconforme": answer.IsNonconforming,
			"descricao":     answer.Description,
			"foto_path":     answer.PhotoPath,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update checklist item")
	}
	if result.RowsAffected == 0 {
		return fieldrecord.ErrItemNotInChecklist
	}
	return nil
}

func (r *ChecklistRepository) ListEmployees(ctx context.Context, checklistID int64) ([]fieldrecord.ChecklistEmployee, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.ChecklistRealizadoFuncionario
	if err := db.
		Where("checklist_realizado_id = ?", checklistID).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query checklist employees")
	}

	employees := make([]fieldrecord.ChecklistEmployee, 0, len(rows))
	for _, row := range rows {
		employees = append(employees, fieldrecord.ChecklistEmployee{
			ID:          row.ID,
			ChecklistID: row.ChecklistRealizadoID,
			EmployeeID:  fieldrecord.Ref(row.FuncionarioID),
			Name:        row.Nome,
			IsLeader:    row.IsLider,
			Signature:   row.Assinatura,
		})
	}
	return employees, nil
}

func (r *ChecklistRepository) ReplaceEmployees(ctx context.Context, checklistID int64, employees []fieldrecord.ChecklistEmployee) error {
	return inTx(ctx, r.db, func(_ context.Context, db *gorm.DB) error {
		if err := db.Where("checklist_realizado_id = ?", checklistID).
			Delete(&model.ChecklistRealizadoFuncionario{}).Error; err != nil {
			return errs.Wrap(err, "delete checklist employees")
		}
		if len(employees) == 0 {
			return nil
		}

		rows := make([]model.ChecklistRealizadoFuncionario, 0, len(employees))
		for _, employee := range employees {
			rows = append(rows, model.ChecklistRealizadoFuncionario{
				ChecklistRealizadoID: checklistID,
				FuncionarioID:        employee.EmployeeID.String(),
				Nome:                 employee.Name,
				IsLider:              employee.IsLeader,
				Assinatura:           employee.Signature,
			})
		}
		if err := db.Create(&rows).Error; err != nil {
			return errs.Wrap(err, "insert checklist employees")
		}
		return nil
	})
}

func (r *ChecklistRepository) SetEmployeeSignature(ctx context.Context, checklistID int64, employeeID fieldrecord.Ref, signature []byte) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	result := db.Model(&model.ChecklistRealizadoFuncionario{}).
		Where("checklist_realizado_id = ? AND funcionario_id = ?", checklistID, employeeID.String()).
		Update("assinatura", signature)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update employee signature")
	}
	if result.RowsAffected == 0 {
		return fieldrecord.ErrEmployeeNotAttached
	}
	return nil
}

func (r *ChecklistRepository) ListRisks(ctx context.Context, checklistID int64) ([]fieldrecord.ChecklistRisk, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var riskRows []model.ChecklistRealizadoAprRisco
	if err := db.
		Where("checklist_realizado_id = ?", checklistID).
		Order("id asc").
		Find(&riskRows).Error; err != nil {
		return nil, errs.Wrap(err, "query checklist risks")
	}

	var controlRows []model.ChecklistRealizadoAprControleRisco
	if err := db.
		Where("checklist_realizado_id = ?", checklistID).
		Order("id asc").
		Find(&controlRows).Error; err != nil {
		return nil, errs.Wrap(err, "query checklist risk controls")
	}

	controlsByRisk := make(map[int64][]fieldrecord.ChecklistRiskControl, len(riskRows))
	for _, row := range controlRows {
		controlsByRisk[row.ChecklistRealizadoAprRiscoID] = append(controlsByRisk[row.ChecklistRealizadoAprRiscoID], fieldrecord.ChecklistRiskControl{
			ID:                 row.ID,
			ChecklistID:        row.ChecklistRealizadoID,
			ChecklistRiskID:    row.ChecklistRealizadoAprRiscoID,
			StructureControlID: row.ChecklistEstruturaControleRiscoID,
		})
	}

	risks := make([]fieldrecord.ChecklistRisk, 0, len(riskRows))
	for _, row := range riskRows {
		risks = append(risks, fieldrecord.ChecklistRisk{
			ID:              row.ID,
			ChecklistID:     row.ChecklistRealizadoID,
			StructureRiskID: row.ChecklistEstruturaRiscoID,
			Controls:        controlsByRisk[row.ID],
		})
	}
	return risks, nil
}

func (r *ChecklistRepository) ReplaceRisks(ctx context.Context, checklistID int64, risks []fieldrecord.RiskSelection) error {
	return inTx(ctx, r.db, func(_ context.Context, db *gorm.DB) error {
		if err := deleteRiskRows(db, checklistID); err != nil {
			return err
		}

		for _, risk := range risks {
			row := model.ChecklistRealizadoAprRisco{
				ChecklistRealizadoID:      checklistID,
				ChecklistEstruturaRiscoID: risk.StructureRiskID,
			}
			if err := db.Create(&row).Error; err != nil {
				return errs.Wrap(err, "insert checklist risk")
			}
			if len(risk.StructureControlIDs) == 0 {
				continue
			}

			controls := make([]model.ChecklistRealizadoAprControleRisco, 0, len(risk.StructureControlIDs))
			for _, controlID := range risk.StructureControlIDs {
				controls = append(controls, model.ChecklistRealizadoAprControleRisco{
					ChecklistRealizadoID:              checklistID,
					ChecklistRealizadoAprRiscoID:      row.ID,
					ChecklistEstruturaControleRiscoID: controlID,
				})
			}
			if err := db.Create(&controls).Error; err != nil {
				return errs.Wrap(err, "insert checklist risk controls")
			}
		}
		return nil
	})
}

func deleteRiskRows(db *gorm.DB, checklistID int64) error {
	if err := db.Where("checklist_realizado_id = ?", checklistID).
		Delete(&model.ChecklistRealizadoAprControleRisco{}).Error; err != nil {
		return errs.Wrap(err, "delete checklist risk controls")
	}
	if err := db.Where("checklist_realizado_id = ?", checklistID).
		Delete(&model.ChecklistRealizadoAprRisco{}).Error; err != nil {
		return errs.Wrap(err, "delete checklist risks")
	}
	return nil
}

// DeleteChecklist removes every child row and then the root.
func (r *ChecklistRepository) DeleteChecklist(ctx context.Context, checklistID int64) error {
	return inTx(ctx, r.db, func(_ context.Context, db *gorm.DB) error {
		if err := deleteRiskRows(db, checklistID); err != nil {
			return err
		}
		if err := db.Where("checklist_realizado_id = ?", checklistID).
			Delete(&model.ChecklistRealizadoFuncionario{}).Error; err != nil {
			return errs.Wrap(err, "delete checklist employees")
		}
		if err := db.Where("checklist_realizado_id = ?", checklistID).
			Delete(&model.ChecklistRealizadoItem{}).Error; err != nil {
			return errs.Wrap(err, "delete checklist items")
		}

		result := db.Where("id = ?", checklistID).Delete(&model.ChecklistRealizado{})
		if result.Error != nil {
			return errs.Wrap(result.Error, "delete checklist")
		}
		if result.RowsAffected == 0 {
			return fieldrecord.ErrChecklistNotFound
		}
		return nil
	})
}

func toChecklistRow(c fieldrecord.Checklist) model.ChecklistRealizado {
	return model.ChecklistRealizado{
		UUID:                                 c.UUID,
		ChecklistTipoID:                      c.TemplateID.Ptr(),
		ChecklistEstruturaID:                 c.StructureID.Ptr(),
		CidadeID:                             c.CityID.Ptr(),
		EquipeID:                             c.TeamID.Ptr(),
		VeiculoID:                            c.VehicleID.Ptr(),
		Area:                                 c.Area.Ptr(),
		Data:                                 c.Date,
		Observacao:                           c.Note,
		EncarregadoID:                        c.ForemanID.Ptr(),
		SupervisorID:                         c.SupervisorID.Ptr(),
		CoordenadorID:                        c.CoordinatorID.Ptr(),
		TecnicoSegurancaID:                   c.SafetyOfficerID.Ptr(),
		CentroCustoID:                        c.CostCenterID.Ptr(),
		Tipo:                                 string(c.Kind),
		IsRespostaObrigatoria:                c.RequiresAnswers,
		IsDescricaoInconformidadeObrigatoria: c.RequiresDescriptions,
		IsFinalizado:                         c.IsFinalized,
		IsConforme:                           c.DeclaredCompliant,
		HasInconformidade:                    c.HasNonconformity,
		FinalizadoAt:                         c.FinalizedAt,
		FinalizadoBy:                         c.FinalizedBy,
		CreatedAt:                            c.CreatedAt,
		UpdatedAt:                            c.UpdatedAt,
	}
}

func mapChecklist(row model.ChecklistRealizado) fieldrecord.Checklist {
	return fieldrecord.Checklist{
		ID:                   row.ID,
		UUID:                 row.UUID,
		TemplateID:           fieldrecord.RefFromPtr(row.ChecklistTipoID),
		StructureID:          fieldrecord.RefFromPtr(row.ChecklistEstruturaID),
		CityID:               fieldrecord.RefFromPtr(row.CidadeID),
		TeamID:               fieldrecord.RefFromPtr(row.EquipeID),
		VehicleID:            fieldrecord.RefFromPtr(row.VeiculoID),
		Area:                 fieldrecord.RefFromPtr(row.Area),
		Date:                 row.Data,
		Note:                 row.Observacao,
		ForemanID:            fieldrecord.RefFromPtr(row.EncarregadoID),
		SupervisorID:         fieldrecord.RefFromPtr(row.SupervisorID),
		CoordinatorID:        fieldrecord.RefFromPtr(row.CoordenadorID),
		SafetyOfficerID:      fieldrecord.RefFromPtr(row.TecnicoSegurancaID),
		CostCenterID:         fieldrecord.RefFromPtr(row.CentroCustoID),
		Kind:                 fieldrecord.NormalizeKind(row.Tipo),
		RequiresAnswers:      row.IsRespostaObrigatoria,
		RequiresDescriptions: row.IsDescricaoInconformidadeObrigatoria,
		IsFinalized:          row.IsFinalizado,
		DeclaredCompliant:    row.IsConforme,
		HasNonconformity:     row.HasInconformidade,
		FinalizedAt:          row.FinalizadoAt,
		FinalizedBy:          row.FinalizadoBy,
		CreatedAt:            row.CreatedAt,
		UpdatedAt:            row.UpdatedAt,
	}
}
