package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"fieldcheck/internal/domain/datasync"
	"fieldcheck/internal/domain/fieldrecord"
	"fieldcheck/internal/errs"
	"fieldcheck/internal/infrastructure/persistence/sqlite/model"
	"fieldcheck/internal/ports"
)

const insertBatchSize = 200

type ReferenceRepository struct {
	db *gorm.DB
}

var _ ports.ReferenceRepository = (*ReferenceRepository)(nil)

func NewReferenceRepository(db *gorm.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// GetTemplate joins a structure with its template type.
func (r *ReferenceRepository) GetTemplate(ctx context.Context, structureID int64) (fieldrecord.Template, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return fieldrecord.Template{}, err
	}

	var structure model.ChecklistEstrutura
	if err := db.Where("id = ?", structureID).Take(&structure).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fieldrecord.Template{}, fieldrecord.ErrTemplateNotFound
		}
		return fieldrecord.Template{}, errs.Wrap(err, "query structure")
	}

	template := fieldrecord.Template{
		StructureID:          structure.ID,
		TemplateID:           structure.ChecklistTipoID,
		Name:                 structure.Nome,
		Kind:                 fieldrecord.KindStandard,
		CostCenterID:         structure.CentroCustoID,
		RequiresAnswers:      structure.IsRespostaObrigatoria,
		RequiresDescriptions: structure.IsDescricaoInconformidadeObrigatoria,
	}

	var kinds []model.ChecklistTipo
	if err := db.Where("id = ?", structure.ChecklistTipoID).Limit(1).Find(&kinds).Error; err != nil {
		return fieldrecord.Template{}, errs.Wrap(err, "query template type")
	}
	if len(kinds) == 1 {
		template.Kind = fieldrecord.NormalizeKind(kinds[0].Tipo)
		if strings.TrimSpace(template.Name) == "" {
			template.Name = kinds[0].Nome
		}
	}
	return template, nil
}

func (r *ReferenceRepository) ListTemplateItems(ctx context.Context, structureID int64) ([]fieldrecord.TemplateItem, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.ChecklistEstruturaItem
	if err := db.
		Where("checklist_estrutura_id = ?", structureID).
		Order("ordem asc, id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query structure items")
	}

	items := make([]fieldrecord.TemplateItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, fieldrecord.TemplateItem{
			ID:                  row.ID,
			StructureID:         row.ChecklistEstruturaID,
			Question:            row.Pergunta,
			Order:               row.Ordem,
			RequiresDescription: row.IsDescricaoObrigatoria,
		})
	}
	return items, nil
}

// ListTemplateRisks returns the risk catalog of a structure with the
// control ids that belong to each risk.
func (r *ReferenceRepository) ListTemplateRisks(ctx context.Context, structureID int64) ([]fieldrecord.TemplateRisk, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var risks []model.ChecklistEstruturaRisco
	if err := db.
		Where("checklist_estrutura_id = ?", structureID).
		Order("id asc").
		Find(&risks).Error; err != nil {
		return nil, errs.Wrap(err, "query structure risks")
	}
	if len(risks) == 0 {
		return nil, nil
	}

	riskIDs := make([]int64, 0, len(risks))
	for _, risk := range risks {
		riskIDs = append(riskIDs, risk.ID)
	}

	var controls []model.ChecklistEstruturaControleRisco
	if err := db.
		Where("checklist_estrutura_risco_id IN ?", riskIDs).
		Order("id asc").
		Find(&controls).Error; err != nil {
		return nil, errs.Wrap(err, "query risk controls")
	}

	controlsByRisk := make(map[int64][]int64, len(risks))
	for _, control := range controls {
		controlsByRisk[control.ChecklistEstruturaRiscoID] = append(controlsByRisk[control.ChecklistEstruturaRiscoID], control.ID)
	}

	out := make([]fieldrecord.TemplateRisk, 0, len(risks))
	for _, risk := range risks {
		out = append(out, fieldrecord.TemplateRisk{
			ID:          risk.ID,
			StructureID: risk.ChecklistEstruturaID,
			Name:        risk.Nome,
			ControlIDs:  controlsByRisk[risk.ID],
		})
	}
	return out, nil
}

func (r *ReferenceRepository) EmployeeNames(ctx context.Context, employeeIDs []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return names, nil
	}

	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.Funcionario
	if err := db.Where("id IN ?", employeeIDs).Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query employees")
	}
	for _, row := range rows {
		names[row.ID] = row.Nome
	}
	return names, nil
}

// ListEntries renders one dataset as id/label pairs for selection lists.
func (r *ReferenceRepository) ListEntries(ctx context.Context, dataset datasync.Dataset, costCenterID *int64) ([]ports.ReferenceEntry, error) {
	table, ok := referenceTables[dataset]
	if !ok {
		return nil, fmt.Errorf("%w: %q", datasync.ErrUnknownDataset, dataset)
	}

	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}
	return table.list(db, scopeFor(dataset, costCenterID))
}

// ReplaceDataset never merges: the previous rows of the dataset (or of the
// cost center, for scoped datasets) are deleted before the download is
// inserted. A scoped replace also drops any stored row carrying a downloaded
// id, whatever cost center it was stored under.
func (r *ReferenceRepository) ReplaceDataset(ctx context.Context, dataset datasync.Dataset, costCenterID *int64, payload json.RawMessage) (int, error) {
	table, ok := referenceTables[dataset]
	if !ok {
		return 0, fmt.Errorf("%w: %q", datasync.ErrUnknownDataset, dataset)
	}

	var inserted int
	err := inTx(ctx, r.db, func(_ context.Context, db *gorm.DB) error {
		n, err := table.replace(db, payload, scopeFor(dataset, costCenterID))
		if err != nil {
			return errs.Wrapf(err, "replace %s", dataset)
		}
		inserted = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func scopeFor(dataset datasync.Dataset, costCenterID *int64) *int64 {
	if !dataset.Scoped() {
		return nil
	}
	return costCenterID
}

type referenceTable struct {
	replace func(db *gorm.DB, payload json.RawMessage, scope *int64) (int, error)
	list    func(db *gorm.DB, scope *int64) ([]ports.ReferenceEntry, error)
}

var referenceTables = map[datasync.Dataset]referenceTable{
	datasync.DatasetCostCenters: table(nil, func(row model.CentroCusto) ports.ReferenceEntry {
		return ports.ReferenceEntry{ID: row.ID, Label: joinLabel(row.Codigo, row.Nome)}
	}),
	datasync.DatasetCities: table(nil, func(row model.Cidade) ports.ReferenceEntry {
		return ports.ReferenceEntry{ID: row.ID, Label: joinLabel(row.Nome, row.UF)}
	}),
	datasync.DatasetTemplates: table(nil, func(row model.ChecklistTipo) ports.ReferenceEntry {
		return ports.ReferenceEntry{ID: row.ID, Label: joinLabel(row.Nome, row.Tipo)}
	}),
	datasync.DatasetStructures: table(
		func(row *model.ChecklistEstrutura) **int64 { return &row.CentroCustoID },
		func(row model.ChecklistEstrutura) ports.ReferenceEntry {
			return ports.ReferenceEntry{ID: row.ID, Label: row.Nome, CostCenterID: row.CentroCustoID}
		}),
	datasync.DatasetStructureItems: table(
		func(row *model.ChecklistEstruturaItem) **int64 { return &row.CentroCustoID },
		func(row model.ChecklistEstruturaItem) ports.ReferenceEntry {
			return ports.ReferenceEntry{ID: row.ID, Label: fmt.Sprintf("%d. %s", row.Ordem, row.Pergunta), CostCenterID: row.CentroCustoID}
		}),
	datasync.DatasetRisks: table(
		func(row *model.ChecklistEstruturaRisco) **int64 { return &row.CentroCustoID },
		func(row model.ChecklistEstruturaRisco) ports.ReferenceEntry {
			return ports.ReferenceEntry{ID: row.ID, Label: row.Nome, CostCenterID: row.CentroCustoID}
		}),
	datasync.DatasetControls: table(
		func(row *model.ChecklistEstruturaControleRisco) **int64 { return &row.CentroCustoID },
		func(row model.ChecklistEstruturaControleRisco) ports.ReferenceEntry {
			return ports.ReferenceEntry{ID: row.ID, Label: row.Nome, CostCenterID: row.CentroCustoID}
		}),
	datasync.DatasetEmployees: table(
		func(row *model.Funcionario) **int64 { return &row.CentroCustoID },
		func(row model.Funcionario) ports.ReferenceEntry {
			return ports.ReferenceEntry{ID: row.ID, Label: joinLabel(row.Matricula, row.Nome), CostCenterID: row.CentroCustoID}
		}),
	datasync.DatasetVehicles: table(
		func(row *model.Veiculo) **int64 { return &row.CentroCustoID },
		func(row model.Veiculo) ports.ReferenceEntry {
			return ports.ReferenceEntry{ID: row.ID, Label: joinLabel(row.Placa, row.Descricao), CostCenterID: row.CentroCustoID}
		}),
	datasync.DatasetTeams: table(
		func(row *model.Equipe) **int64 { return &row.CentroCustoID },
		func(row model.Equipe) ports.ReferenceEntry {
			return ports.ReferenceEntry{ID: row.ID, Label: row.Nome, CostCenterID: row.CentroCustoID}
		}),
}

// table builds the replace and list functions of one reference model.
// scopeField is nil for datasets that are never filtered by cost center.
func table[T any](scopeField func(*T) **int64, entry func(T) ports.ReferenceEntry) referenceTable {
	return referenceTable{
		replace: func(db *gorm.DB, payload json.RawMessage, scope *int64) (int, error) {
			rows, err := decodeRows[T](payload)
			if err != nil {
				return 0, err
			}

			del := db.Session(&gorm.Session{AllowGlobalUpdate: true})
			if scope != nil && scopeField != nil {
				del = db.Where("centro_custo_id = ?", *scope)
			}
			if err := del.Delete(new(T)).Error; err != nil {
				return 0, errs.Wrap(err, "delete previous rows")
			}

			if scope != nil && scopeField != nil {
				ids := make([]int64, 0, len(rows))
				for i := range rows {
					field := scopeField(&rows[i])
					if *field == nil {
						value := *scope
						*field = &value
					}
					ids = append(ids, entry(rows[i]).ID)
				}
				// Downloaded ids may still be stored under another cost center or none.
				if err := deleteByIDs[T](db, ids); err != nil {
					return 0, err
				}
			}
			if len(rows) == 0 {
				return 0, nil
			}
			if err := db.CreateInBatches(&rows, insertBatchSize).Error; err != nil {
				return 0, errs.Wrap(err, "insert rows")
			}
			return len(rows), nil
		},
		list: func(db *gorm.DB, scope *int64) ([]ports.ReferenceEntry, error) {
			query := db.Model(new(T))
			if scope != nil && scopeField != nil {
				query = query.Where("centro_custo_id = ?", *scope)
			}

			var rows []T
			if err := query.Order("id asc").Find(&rows).Error; err != nil {
				return nil, errs.Wrap(err, "query reference rows")
			}
			entries := make([]ports.ReferenceEntry, 0, len(rows))
			for _, row := range rows {
				entries = append(entries, entry(row))
			}
			return entries, nil
		},
	}
}

func deleteByIDs[T any](db *gorm.DB, ids []int64) error {
	for start := 0; start < len(ids); start += insertBatchSize {
		end := min(start+insertBatchSize, len(ids))
		if err := db.Where("id IN ?", ids[start:end]).Delete(new(T)).Error; err != nil {
			return errs.Wrap(err, "delete moved rows")
		}
	}
	return nil
}

func decodeRows[T any](payload json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var rows []T
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, errs.Wrap(err, "decode dataset rows")
	}
	return rows, nil
}

func joinLabel(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " - ")
}
