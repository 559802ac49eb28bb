package repository

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fieldcheck/internal/domain/datasync"
	"fieldcheck/internal/domain/fieldrecord"
	"fieldcheck/internal/infrastructure/persistence/sqlite/model"
	"fieldcheck/internal/infrastructure/persistence/sqlite/uow"
	"fieldcheck/internal/ports"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "fieldcheck.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func seedStructure(t *testing.T, db *gorm.DB, structureID int64, questions ...string) {
	t.Helper()

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.ChecklistTipo{ID: 1, Nome: "APR", Tipo: "apr"}).Error; err != nil {
		t.Fatalf("seed template type: %v", err)
	}
	if err := db.Create(&model.ChecklistEstrutura{
		ID:                                   structureID,
		ChecklistTipoID:                      1,
		Nome:                                 "Structure",
		IsRespostaObrigatoria:                true,
		IsDescricaoInconformidadeObrigatoria: true,
	}).Error; err != nil {
		t.Fatalf("seed structure: %v", err)
	}
	for i, q := range questions {
		if err := db.Create(&model.ChecklistEstruturaItem{
			ID:                     structureID*100 + int64(i+1),
			ChecklistEstruturaID:   structureID,
			Pergunta:               q,
			Ordem:                  i + 1,
			IsDescricaoObrigatoria: i == 0,
		}).Error; err != nil {
			t.Fatalf("seed structure item: %v", err)
		}
	}
}

func newChecklist(structureID string) fieldrecord.Checklist {
	return fieldrecord.Checklist{
		UUID:        "uuid-" + structureID,
		TemplateID:  "1",
		StructureID: fieldrecord.Ref(structureID),
		TeamID:      "7",
		Date:        "2026-10-19",
		Kind:        fieldrecord.KindRiskAssessment,
		CreatedAt:   "2026-10-19T08:00:00Z",
		UpdatedAt:   "2026-10-19T08:00:00Z",
	}
}

func TestCreateChecklistSnapshotsOneItemPerTemplateItem(t *testing.T) {
	db := setupDB(t)
	seedStructure(t, db, 10, "PPE in use", "Area isolated", "Tools inspected")
	repo := NewChecklistRepository(db)
	ctx := context.Background()

	created, count, err := repo.CreateChecklist(ctx, newChecklist("10"))
	if err != nil {
		t.Fatalf("CreateChecklist() error = %v", err)
	}
	if count != 3 {
		t.Fatalf("CreateChecklist() item count = %d, want 3", count)
	}

	items, err := repo.ListItems(ctx, created.ID)
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("ListItems() len = %d, want 3", len(items))
	}
	if items[0].Question != "PPE in use" || !items[0].RequiresDescription || items[2].Order != 3 {
		t.Fatalf("ListItems() snapshot = %#v", items)
	}

	// changing the template afterwards does not touch the snapshot
	if err := db.Model(&model.ChecklistEstruturaItem{}).Where("id = ?", 1001).Update("pergunta", "changed").Error; err != nil {
		t.Fatalf("update template: %v", err)
	}
	items, err = repo.ListItems(ctx, created.ID)
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if items[0].Question != "PPE in use" {
		t.Fatalf("snapshot changed with template: %q", items[0].Question)
	}
}

func TestCreateChecklistWithoutTemplateItemsRollsBack(t *testing.T) {
	db := setupDB(t)
	seedStructure(t, db, 20)
	repo := NewChecklistRepository(db)
	ctx := context.Background()

	if _, _, err := repo.CreateChecklist(ctx, newChecklist("20")); !errors.Is(err, fieldrecord.ErrTemplateWithoutItems) {
		t.Fatalf("CreateChecklist() error = %v, want ErrTemplateWithoutItems", err)
	}
	count, err := repo.CountChecklists(ctx, ports.ChecklistFilter{})
	if err != nil {
		t.Fatalf("CountChecklists() error = %v", err)
	}
	if count != 0 {
		t.Fatalf("CountChecklists() = %d, want 0", count)
	}
}

func TestUnitOfWorkRollsBackCreateOnLaterFailure(t *testing.T) {
	db := setupDB(t)
	seedStructure(t, db, 10, "PPE in use")
	repo := NewChecklistRepository(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := uow.NewUnitOfWork(db).WithTx(ctx, func(txCtx context.Context) error {
		if _, _, err := repo.CreateChecklist(txCtx, newChecklist("10")); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want boom", err)
	}

	var roots, items int64
	db.Model(&model.ChecklistRealizado{}).Count(&roots)
	db.Model(&model.ChecklistRealizadoItem{}).Count(&items)
	if roots != 0 || items != 0 {
		t.Fatalf("rows after rollback: roots=%d items=%d", roots, items)
	}
}

func TestDeleteChecklistRemovesEveryChildTable(t *testing.T) {
	db := setupDB(t)
	seedStructure(t, db, 10, "PPE in use", "Area isolated")
	repo := NewChecklistRepository(db)
	ctx := context.Background()

	created, _, err := repo.CreateChecklist(ctx, newChecklist("10"))
	if err != nil {
		t.Fatalf("CreateChecklist() error = %v", err)
	}
	if err := repo.ReplaceEmployees(ctx, created.ID, []fieldrecord.ChecklistEmployee{{EmployeeID: "101", Name: "Ana", IsLeader: true}}); err != nil {
		t.Fatalf("ReplaceEmployees() error = %v", err)
	}
	if err := repo.ReplaceRisks(ctx, created.ID, []fieldrecord.RiskSelection{{StructureRiskID: 5, StructureControlIDs: []int64{50, 51}}}); err != nil {
		t.Fatalf("ReplaceRisks() error = %v", err)
	}

	if err := repo.DeleteChecklist(ctx, created.ID); err != nil {
		t.Fatalf("DeleteChecklist() error = %v", err)
	}

	for _, m := range []any{
		&model.ChecklistRealizado{},
		&model.ChecklistRealizadoItem{},
		&model.ChecklistRealizadoFuncionario{},
		&model.ChecklistRealizadoAprRisco{},
		&model.ChecklistRealizadoAprControleRisco{},
	} {
		var count int64
		if err := db.Model(m).Count(&count).Error; err != nil {
			t.Fatalf("count %T: %v", m, err)
		}
		if count != 0 {
			t.Fatalf("%T rows after delete = %d", m, count)
		}
	}

	if err := repo.DeleteChecklist(ctx, created.ID); !errors.Is(err, fieldrecord.ErrChecklistNotFound) {
		t.Fatalf("DeleteChecklist() twice error = %v", err)
	}
}

func TestReplaceRisksGroupsControls(t *testing.T) {
	db := setupDB(t)
	seedStructure(t, db, 10, "PPE in use")
	repo := NewChecklistRepository(db)
	ctx := context.Background()

	created, _, err := repo.CreateChecklist(ctx, newChecklist("10"))
	if err != nil {
		t.Fatalf("CreateChecklist() error = %v", err)
	}
	if err := repo.ReplaceRisks(ctx, created.ID, []fieldrecord.RiskSelection{{StructureRiskID: 5, StructureControlIDs: []int64{50}}}); err != nil {
		t.Fatalf("ReplaceRisks() error = %v", err)
	}
	if err := repo.ReplaceRisks(ctx, created.ID, []fieldrecord.RiskSelection{
		{StructureRiskID: 6, StructureControlIDs: []int64{60, 61}},
		{StructureRiskID: 7},
	}); err != nil {
		t.Fatalf("ReplaceRisks() error = %v", err)
	}

	risks, err := repo.ListRisks(ctx, created.ID)
	if err != nil {
		t.Fatalf("ListRisks() error = %v", err)
	}
	if len(risks) != 2 {
		t.Fatalf("ListRisks() len = %d, want 2", len(risks))
	}
	if risks[0].StructureRiskID != 6 || len(risks[0].Controls) != 2 || len(risks[1].Controls) != 0 {
		t.Fatalf("ListRisks() = %#v", risks)
	}
}

func TestItemAndSignatureUpdatesCheckOwnership(t *testing.T) {
	db := setupDB(t)
	seedStructure(t, db, 10, "PPE in use")
	repo := NewChecklistRepository(db)
	ctx := context.Background()

	created, _, err := repo.CreateChecklist(ctx, newChecklist("10"))
	if err != nil {
		t.Fatalf("CreateChecklist() error = %v", err)
	}
	items, err := repo.ListItems(ctx, created.ID)
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}

	if err := repo.UpdateItemAnswer(ctx, created.ID+1, fieldrecord.ItemAnswer{ItemID: items[0].ID, IsAnswered: true}); !errors.Is(err, fieldrecord.ErrItemNotInChecklist) {
		t.Fatalf("UpdateItemAnswer(other checklist) error = %v", err)
	}
	if err := repo.UpdateItemAnswer(ctx, created.ID, fieldrecord.ItemAnswer{ItemID: items[0].ID, IsAnswered: true, IsNonconforming: true, Description: "torn glove"}); err != nil {
		t.Fatalf("UpdateItemAnswer() error = %v", err)
	}
	if err := repo.SetEmployeeSignature(ctx, created.ID, "999", []byte("png")); !errors.Is(err, fieldrecord.ErrEmployeeNotAttached) {
		t.Fatalf("SetEmployeeSignature(unknown) error = %v", err)
	}

	items, _ = repo.ListItems(ctx, created.ID)
	if !items[0].IsAnswered || !items[0].IsNonconforming || items[0].Description != "torn glove" {
		t.Fatalf("item after answer = %#v", items[0])
	}
}

func TestCreateShiftRejectsSecondShiftSameTeamAndDay(t *testing.T) {
	db := setupDB(t)
	repo := NewShiftRepository(db)
	ctx := context.Background()

	shift := fieldrecord.Shift{UUID: "s-1", TeamID: "7", Date: "2026-10-19", CreatedAt: "2026-10-19T06:00:00Z"}
	employees := []fieldrecord.EmployeeSelection{{EmployeeID: "101", IsLeader: true}, {EmployeeID: "102"}}

	created, err := repo.CreateShift(ctx, shift, employees)
	if err != nil {
		t.Fatalf("CreateShift() error = %v", err)
	}
	members, err := repo.ListShiftEmployees(ctx, created.ID)
	if err != nil {
		t.Fatalf("ListShiftEmployees() error = %v", err)
	}
	if len(members) != 2 || !members[0].IsLeader {
		t.Fatalf("ListShiftEmployees() = %#v", members)
	}

	shift.UUID = "s-2"
	if _, err := repo.CreateShift(ctx, shift, employees); !errors.Is(err, fieldrecord.ErrShiftAlreadyExists) {
		t.Fatalf("CreateShift() duplicate error = %v", err)
	}

	if err := repo.DeleteShift(ctx, created.ID); err != nil {
		t.Fatalf("DeleteShift() error = %v", err)
	}
	var left int64
	db.Model(&model.EquipeTurnoFuncionario{}).Count(&left)
	if left != 0 {
		t.Fatalf("shift employees after delete = %d", left)
	}
}

func TestReplaceDatasetScopedLeavesNoStaleRows(t *testing.T) {
	db := setupDB(t)
	repo := NewReferenceRepository(db)
	ctx := context.Background()
	scope := int64(3)
	other := int64(4)

	if err := db.Create(&[]model.Equipe{
		{ID: 1, Nome: "stale", CentroCustoID: &scope},
		{ID: 2, Nome: "other center", CentroCustoID: &other},
	}).Error; err != nil {
		t.Fatalf("seed teams: %v", err)
	}

	payload := json.RawMessage(`[{"id":10,"nome":"Team A"},{"id":11,"nome":"Team B","centro_custo_id":3}]`)
	n, err := repo.ReplaceDataset(ctx, datasync.DatasetTeams, &scope, payload)
	if err != nil {
		t.Fatalf("ReplaceDataset() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("ReplaceDataset() rows = %d, want 2", n)
	}

	entries, err := repo.ListEntries(ctx, datasync.DatasetTeams, &scope)
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(entries) != 2 || entries[0].ID != 10 || entries[1].ID != 11 {
		t.Fatalf("scoped entries = %#v", entries)
	}

	all, err := repo.ListEntries(ctx, datasync.DatasetTeams, nil)
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all entries = %#v, want other cost center kept", all)
	}
}

func TestReplaceDatasetScopedMovesRowFromOtherCostCenter(t *testing.T) {
	db := setupDB(t)
	repo := NewReferenceRepository(db)
	ctx := context.Background()
	from := int64(3)
	to := int64(4)

	if _, err := repo.ReplaceDataset(ctx, datasync.DatasetEmployees, &from,
		json.RawMessage(`[{"id":10,"nome":"Ana","centro_custo_id":3},{"id":11,"nome":"Bruno","centro_custo_id":3}]`)); err != nil {
		t.Fatalf("ReplaceDataset(3) error = %v", err)
	}
	if _, err := repo.ReplaceDataset(ctx, datasync.DatasetEmployees, &to,
		json.RawMessage(`[{"id":10,"nome":"Ana","centro_custo_id":4}]`)); err != nil {
		t.Fatalf("ReplaceDataset(4) error = %v", err)
	}

	moved, err := repo.ListEntries(ctx, datasync.DatasetEmployees, &to)
	if err != nil {
		t.Fatalf("ListEntries(4) error = %v", err)
	}
	if len(moved) != 1 || moved[0].ID != 10 {
		t.Fatalf("cost center 4 entries = %#v", moved)
	}
	left, err := repo.ListEntries(ctx, datasync.DatasetEmployees, &from)
	if err != nil {
		t.Fatalf("ListEntries(3) error = %v", err)
	}
	if len(left) != 1 || left[0].ID != 11 {
		t.Fatalf("cost center 3 entries = %#v, want only employee 11", left)
	}
}

func TestReplaceDatasetScopedAfterUnscopedPull(t *testing.T) {
	db := setupDB(t)
	repo := NewReferenceRepository(db)
	ctx := context.Background()
	scope := int64(3)

	if _, err := repo.ReplaceDataset(ctx, datasync.DatasetStructures, nil,
		json.RawMessage(`[{"id":7,"checklist_tipo_id":1,"nome":"Shared"},{"id":8,"checklist_tipo_id":1,"nome":"Other"}]`)); err != nil {
		t.Fatalf("unscoped ReplaceDataset() error = %v", err)
	}
	if _, err := repo.ReplaceDataset(ctx, datasync.DatasetStructures, &scope,
		json.RawMessage(`[{"id":7,"checklist_tipo_id":1,"nome":"Shared"}]`)); err != nil {
		t.Fatalf("scoped ReplaceDataset() error = %v", err)
	}

	scoped, err := repo.ListEntries(ctx, datasync.DatasetStructures, &scope)
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(scoped) != 1 || scoped[0].ID != 7 || scoped[0].CostCenterID == nil || *scoped[0].CostCenterID != 3 {
		t.Fatalf("scoped entries = %#v", scoped)
	}
	all, err := repo.ListEntries(ctx, datasync.DatasetStructures, nil)
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all entries = %#v, want unscoped row 8 kept", all)
	}
}

func TestReplaceDatasetUnscopedReplacesEverything(t *testing.T) {
	db := setupDB(t)
	repo := NewReferenceRepository(db)
	ctx := context.Background()
	scope := int64(3)

	if err := db.Create(&model.Cidade{ID: 1, Nome: "Old"}).Error; err != nil {
		t.Fatalf("seed city: %v", err)
	}
	if _, err := repo.ReplaceDataset(ctx, datasync.DatasetCities, &scope, json.RawMessage(`[{"id":2,"nome":"Recife","uf":"PE"}]`)); err != nil {
		t.Fatalf("ReplaceDataset() error = %v", err)
	}

	entries, err := repo.ListEntries(ctx, datasync.DatasetCities, nil)
	if err != nil {
		t.Fatalf("ListEntries() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Label != "Recife - PE" {
		t.Fatalf("cities = %#v", entries)
	}

	if _, err := repo.ReplaceDataset(ctx, datasync.DatasetCities, nil, json.RawMessage(`{"bad":true}`)); err == nil {
		t.Fatal("ReplaceDataset() with an object payload should fail")
	}
	entries, _ = repo.ListEntries(ctx, datasync.DatasetCities, nil)
	if len(entries) != 1 {
		t.Fatalf("failed replace must keep previous rows, got %#v", entries)
	}

	if _, err := repo.ReplaceDataset(ctx, datasync.Dataset("unknown"), nil, nil); !errors.Is(err, datasync.ErrUnknownDataset) {
		t.Fatalf("ReplaceDataset(unknown) error = %v", err)
	}
}

func TestGetTemplateJoinsTemplateType(t *testing.T) {
	db := setupDB(t)
	seedStructure(t, db, 10, "PPE in use")
	if err := db.Create(&[]model.ChecklistEstruturaRisco{{ID: 5, ChecklistEstruturaID: 10, Nome: "Fall"}}).Error; err != nil {
		t.Fatalf("seed risk: %v", err)
	}
	if err := db.Create(&[]model.ChecklistEstruturaControleRisco{
		{ID: 50, ChecklistEstruturaRiscoID: 5, Nome: "Harness"},
		{ID: 51, ChecklistEstruturaRiscoID: 5, Nome: "Guard rail"},
	}).Error; err != nil {
		t.Fatalf("seed controls: %v", err)
	}
	repo := NewReferenceRepository(db)
	ctx := context.Background()

	template, err := repo.GetTemplate(ctx, 10)
	if err != nil {
		t.Fatalf("GetTemplate() error = %v", err)
	}
	if template.Kind != fieldrecord.KindRiskAssessment || !template.RequiresAnswers || !template.RequiresDescriptions {
		t.Fatalf("GetTemplate() = %#v", template)
	}

	risks, err := repo.ListTemplateRisks(ctx, 10)
	if err != nil {
		t.Fatalf("ListTemplateRisks() error = %v", err)
	}
	if len(risks) != 1 || len(risks[0].ControlIDs) != 2 {
		t.Fatalf("ListTemplateRisks() = %#v", risks)
	}

	if _, err := repo.GetTemplate(ctx, 99); !errors.Is(err, fieldrecord.ErrTemplateNotFound) {
		t.Fatalf("GetTemplate(missing) error = %v", err)
	}
}
