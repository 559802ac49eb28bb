package datasync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	domain "fieldcheck/internal/domain/datasync"
	"fieldcheck/internal/domain/fieldrecord"
	"fieldcheck/internal/infrastructure/cache"
	"fieldcheck/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "fieldcheck/internal/infrastructure/persistence/sqlite/repository"
	"fieldcheck/internal/ports"
)

type remoteCall struct {
	method string
	path   string
	body   any
	files  []ports.FileRef
	query  url.Values
}

// stubRemote answers with the error returned by fail, or success.
type stubRemote struct {
	mu    sync.Mutex
	calls []remoteCall
	fail  func(path string, body any) error
	pulls map[string]string
}

func (r *stubRemote) record(call remoteCall) error {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()
	if r.fail != nil {
		return r.fail(call.path, call.body)
	}
	return nil
}

func (r *stubRemote) Post(_ context.Context, path string, body any) (json.RawMessage, error) {
	if err := r.record(remoteCall{method: "POST", path: path, body: body}); err != nil {
		return nil, err
	}
	return json.RawMessage(`{"ok":true}`), nil
}

func (r *stubRemote) PostWithFiles(_ context.Context, path string, body any, files []ports.FileRef) (json.RawMessage, error) {
	if err := r.record(remoteCall{method: "MULTIPART", path: path, body: body, files: files}); err != nil {
		return nil, err
	}
	return json.RawMessage(`{"ok":true}`), nil
}

func (r *stubRemote) Get(_ context.Context, path string, query url.Values) (json.RawMessage, error) {
	if err := r.record(remoteCall{method: "GET", path: path, query: query}); err != nil {
		return nil, err
	}
	raw, ok := r.pulls[path]
	if !ok {
		return json.RawMessage(`[]`), nil
	}
	return json.RawMessage(raw), nil
}

func (r *stubRemote) Calls() []remoteCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]remoteCall(nil), r.calls...)
}

type stubConnectivity struct {
	err error
}

func (c stubConnectivity) Check(context.Context) (ports.ConnectionStatus, error) {
	if c.err != nil {
		return ports.ConnectionStatus{}, c.err
	}
	return ports.ConnectionStatus{IsConnected: true, ConnectionType: "wifi"}, nil
}

// countingChecklists counts every read that reaches the store.
type countingChecklists struct {
	ports.ChecklistRepository
	reads int
}

func (c *countingChecklists) ListChecklists(ctx context.Context, filter ports.ChecklistFilter) ([]fieldrecord.Checklist, error) {
	c.reads++
	return c.ChecklistRepository.ListChecklists(ctx, filter)
}

func (c *countingChecklists) GetChecklist(ctx context.Context, id int64) (fieldrecord.Checklist, error) {
	c.reads++
	return c.ChecklistRepository.GetChecklist(ctx, id)
}

type countingShifts struct {
	ports.ShiftRepository
	reads int
}

func (c *countingShifts) ListShifts(ctx context.Context, filter ports.ShiftFilter) ([]fieldrecord.Shift, error) {
	c.reads++
	return c.ShiftRepository.ListShifts(ctx, filter)
}

func (c *countingShifts) GetShift(ctx context.Context, id int64) (fieldrecord.Shift, error) {
	c.reads++
	return c.ShiftRepository.GetShift(ctx, id)
}

type recordedProgress struct {
	steps    []string
	percents []float64
	lines    []string
	success  []string
	errors   []string
}

func (p *recordedProgress) OnProgressChange(step string, pct float64) {
	p.steps = append(p.steps, step)
	p.percents = append(p.percents, pct)
}
func (p *recordedProgress) OnProgressUpdate(line string) { p.lines = append(p.lines, line) }
func (p *recordedProgress) OnSuccess(msg string)         { p.success = append(p.success, msg) }
func (p *recordedProgress) OnError(msg string)           { p.errors = append(p.errors, msg) }

type harness struct {
	db         *gorm.DB
	svc        *Service
	remote     *stubRemote
	checklists *countingChecklists
	shifts     *countingShifts
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "sync.sqlite")
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

func newHarness(t *testing.T, conn ports.ConnectivityChecker, plan domain.Plan) *harness {
	t.Helper()

	db := openDB(t)
	h := &harness{
		db:         db,
		remote:     &stubRemote{pulls: map[string]string{}},
		checklists: &countingChecklists{ChecklistRepository: sqliterepo.NewChecklistRepository(db)},
		shifts:     &countingShifts{ShiftRepository: sqliterepo.NewShiftRepository(db)},
	}
	svc, err := NewService(Dependencies{
		Checklists:   h.checklists,
		Shifts:       h.shifts,
		Reference:    sqliterepo.NewReferenceRepository(db),
		Remote:       h.remote,
		Connectivity: conn,
		Cache:        cache.NewSQLiteCache(db),
	}, Options{Plan: plan})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	svc.now = func() time.Time { return time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC) }
	h.svc = svc
	return h
}

func seedChecklist(t *testing.T, db *gorm.DB, uuid string, finalized bool, photo *string) int64 {
	t.Helper()

	root := model.ChecklistRealizado{
		UUID:         uuid,
		Data:         "2026-10-19",
		Tipo:         string(fieldrecord.KindStandard),
		IsFinalizado: finalized,
		CreatedAt:    "2026-10-19T07:00:00Z",
		UpdatedAt:    "2026-10-19T07:00:00Z",
	}
	if err := db.Create(&root).Error; err != nil {
		t.Fatalf("seed checklist: %v", err)
	}
	item := model.ChecklistRealizadoItem{
		ChecklistRealizadoID:     root.ID,
		ChecklistEstruturaItemID: 101,
		Pergunta:                 "Tires",
		Ordem:                    1,
		IsRespondido:             true,
		FotoPath:                 photo,
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed checklist item: %v", err)
	}
	employee := model.ChecklistRealizadoFuncionario{ChecklistRealizadoID: root.ID, FuncionarioID: "900", Nome: "Ana"}
	if err := db.Create(&employee).Error; err != nil {
		t.Fatalf("seed checklist employee: %v", err)
	}
	return root.ID
}

func seedShift(t *testing.T, db *gorm.DB, uuid string, team string) int64 {
	t.Helper()

	shift := model.EquipeTurno{UUID: uuid, EquipeID: team, Data: "2026-10-19", CreatedAt: "2026-10-19T06:00:00Z"}
	if err := db.Create(&shift).Error; err != nil {
		t.Fatalf("seed shift: %v", err)
	}
	member := model.EquipeTurnoFuncionario{EquipeTurnoID: shift.ID, FuncionarioID: "900", IsLider: true}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("seed shift employee: %v", err)
	}
	return shift.ID
}

func countRows(t *testing.T, db *gorm.DB, value any) int64 {
	t.Helper()

	var n int64
	if err := db.Model(value).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", value, err)
	}
	return n
}

func failUUIDs(uuids ...string) func(string, any) error {
	set := make(map[string]struct{}, len(uuids))
	for _, u := range uuids {
		set[u] = struct{}{}
	}
	return func(_ string, body any) error {
		var uuid string
		switch graph := body.(type) {
		case fieldrecord.ChecklistGraph:
			uuid = graph.UUID
		case fieldrecord.ShiftGraph:
			uuid = graph.UUID
		}
		if _, ok := set[uuid]; ok {
			return &domain.TransferError{Status: 500, Message: "rejected " + uuid}
		}
		return nil
	}
}

func TestSendAllConnectivityFailureReadsNothing(t *testing.T) {
	h := newHarness(t, stubConnectivity{err: &domain.ConnectivityError{Reason: "no active network interface"}}, domain.Plan{})
	seedShift(t, h.db, "s-1", "7")
	seedChecklist(t, h.db, "c-1", true, nil)

	progress := &recordedProgress{}
	_, err := h.svc.SendAll(context.Background(), progress)

	var connErr *domain.ConnectivityError
	if !errors.As(err, &connErr) {
		t.Fatalf("SendAll() error = %v, want ConnectivityError", err)
	}
	if h.checklists.reads != 0 || h.shifts.reads != 0 {
		t.Fatalf("store reads = %d checklists, %d shifts, want 0", h.checklists.reads, h.shifts.reads)
	}
	if calls := h.remote.Calls(); len(calls) != 0 {
		t.Fatalf("remote calls = %d, want 0", len(calls))
	}
	if len(progress.errors) != 1 || !strings.Contains(progress.errors[0], "No internet connection") {
		t.Fatalf("progress errors = %#v", progress.errors)
	}
	if h.svc.IsSyncing() {
		t.Fatal("IsSyncing() = true after the flow returned")
	}
}

func TestSendAllOfflineStatusIsConnectivityError(t *testing.T) {
	h := newHarness(t, offlineConnectivity{}, domain.Plan{})

	_, err := h.svc.SendAll(context.Background(), nil)
	var connErr *domain.ConnectivityError
	if !errors.As(err, &connErr) {
		t.Fatalf("SendAll() error = %v, want ConnectivityError", err)
	}
}

type offlineConnectivity struct{}

func (offlineConnectivity) Check(context.Context) (ports.ConnectionStatus, error) {
	return ports.ConnectionStatus{IsConnected: false, ConnectionType: "none"}, nil
}

func TestSendAllKeepsOnlyFailedChecklists(t *testing.T) {
	h := newHarness(t, stubConnectivity{}, domain.Plan{})
	ids := map[string]int64{}
	for _, uuid := range []string{"c-1", "c-2", "c-3", "c-4"} {
		ids[uuid] = seedChecklist(t, h.db, uuid, true, nil)
	}
	draftID := seedChecklist(t, h.db, "draft", false, nil)
	h.remote.fail = failUUIDs("c-2", "c-4")

	report, err := h.svc.SendAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("SendAll() error = %v", err)
	}
	if report.Sent != 2 || report.Failed != 2 || report.Outcome != domain.OutcomePartial {
		t.Fatalf("report = %#v", report)
	}
	if len(report.Failures) != 2 || report.Failures[0].RecordID == report.Failures[1].RecordID {
		t.Fatalf("failures = %#v, want 2 distinct records", report.Failures)
	}
	failed := map[int64]bool{ids["c-2"]: true, ids["c-4"]: true}
	for _, f := range report.Failures {
		if !failed[f.RecordID] || f.Kind != domain.RecordKindChecklist {
			t.Fatalf("unexpected failure %#v", f)
		}
	}

	var remaining []model.ChecklistRealizado
	if err := h.db.Order("id asc").Find(&remaining).Error; err != nil {
		t.Fatalf("list remaining: %v", err)
	}
	got := make([]int64, 0, len(remaining))
	for _, row := range remaining {
		got = append(got, row.ID)
	}
	want := []int64{ids["c-2"], ids["c-4"], draftID}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("remaining roots = %v, want %v", got, want)
	}
	if n := countRows(t, h.db, &model.ChecklistRealizadoItem{}); n != 3 {
		t.Fatalf("remaining items = %d, want 3", n)
	}
}

func TestSendAllShiftScenario(t *testing.T) {
	h := newHarness(t, stubConnectivity{}, domain.Plan{})
	seedShift(t, h.db, "s-1", "7")
	secondID := seedShift(t, h.db, "s-2", "8")
	h.remote.fail = failUUIDs("s-2")

	progress := &recordedProgress{}
	report, err := h.svc.SendAll(context.Background(), progress)
	if err != nil {
		t.Fatalf("SendAll() error = %v", err)
	}
	if report.Sent != 1 || report.Failed != 1 {
		t.Fatalf("report = %#v", report)
	}
	if len(report.Failures) != 1 || report.Failures[0].RecordID != secondID || report.Failures[0].Message != "rejected s-2" {
		t.Fatalf("failures = %#v", report.Failures)
	}

	var shifts []model.EquipeTurno
	if err := h.db.Find(&shifts).Error; err != nil {
		t.Fatalf("list shifts: %v", err)
	}
	if len(shifts) != 1 || shifts[0].ID != secondID {
		t.Fatalf("remaining shifts = %#v", shifts)
	}
	if n := countRows(t, h.db, &model.EquipeTurnoFuncionario{}); n != 1 {
		t.Fatalf("remaining shift employees = %d, want 1", n)
	}
	if len(progress.errors) != 1 || !strings.Contains(progress.errors[0], "rejected s-2") {
		t.Fatalf("progress errors = %#v", progress.errors)
	}
	if len(progress.success) != 0 {
		t.Fatalf("progress success = %#v, want none on partial push", progress.success)
	}
}

func TestSendAllShiftsBeforeChecklists(t *testing.T) {
	h := newHarness(t, stubConnectivity{}, domain.Plan{})
	seedChecklist(t, h.db, "c-1", true, nil)
	seedShift(t, h.db, "s-1", "7")

	if _, err := h.svc.SendAll(context.Background(), nil); err != nil {
		t.Fatalf("SendAll() error = %v", err)
	}
	calls := h.remote.Calls()
	if len(calls) != 2 || calls[0].path != DefaultShiftPath || calls[1].path != DefaultChecklistPath {
		t.Fatalf("calls = %#v", calls)
	}
}

func TestSendAllNeverDeletesOnFailure(t *testing.T) {
	h := newHarness(t, stubConnectivity{}, domain.Plan{})
	seedChecklist(t, h.db, "c-1", true, nil)
	seedShift(t, h.db, "s-1", "7")
	h.remote.fail = func(string, any) error {
		return &domain.TransferError{Message: domain.GenericTransferMessage, Err: errors.New("connection reset")}
	}

	report, err := h.svc.SendAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("SendAll() error = %v", err)
	}
	if report.Sent != 0 || report.Failed != 2 {
		t.Fatalf("report = %#v", report)
	}
	if countRows(t, h.db, &model.ChecklistRealizado{}) != 1 || countRows(t, h.db, &model.EquipeTurno{}) != 1 {
		t.Fatal("records were deleted after failed transfers")
	}
}

func TestSendAllUpdateRequiredStopsBatch(t *testing.T) {
	h := newHarness(t, stubConnectivity{}, domain.Plan{})
	seedShift(t, h.db, "s-1", "7")
	seedChecklist(t, h.db, "c-1", true, nil)
	h.remote.fail = func(string, any) error {
		return &domain.UpdateRequiredError{Description: "Install 3.1", VersionName: "3.1.0"}
	}

	progress := &recordedProgress{}
	_, err := h.svc.SendAll(context.Background(), progress)
	var update *domain.UpdateRequiredError
	if !errors.As(err, &update) || update.VersionName != "3.1.0" {
		t.Fatalf("SendAll() error = %v, want UpdateRequiredError", err)
	}
	if calls := h.remote.Calls(); len(calls) != 1 {
		t.Fatalf("remote calls = %d, want 1", len(calls))
	}
	if len(progress.errors) != 1 || progress.errors[0] != "Install 3.1" {
		t.Fatalf("progress errors = %#v", progress.errors)
	}
}

func TestSendAllNothingToSend(t *testing.T) {
	h := newHarness(t, stubConnectivity{}, domain.Plan{})
	seedChecklist(t, h.db, "draft", false, nil)

	progress := &recordedProgress{}
	report, err := h.svc.SendAll(context.Background(), progress)
	if err != nil {
		t.Fatalf("SendAll() error = %v", err)
	}
	if report.Outcome != domain.OutcomeNothingToSend {
		t.Fatalf("outcome = %s", report.Outcome)
	}
	if len(progress.success) != 1 || progress.success[0] != "Nothing to send." {
		t.Fatalf("progress success = %#v", progress.success)
	}
}

func TestSendAllUsesMultipartForPhotos(t *testing.T) {
	h := newHarness(t, stubConnectivity{}, domain.Plan{})
	photo := "file:///data/photos/tires.jpg"
	seedChecklist(t, h.db, "c-1", true, &photo)
	remotePhoto := "https://cdn.example/tires.jpg"
	seedChecklist(t, h.db, "c-2", true, &remotePhoto)

	if _, err := h.svc.SendAll(context.Background(), nil); err != nil {
		t.Fatalf("SendAll() error = %v", err)
	}
	calls := h.remote.Calls()
	if len(calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(calls))
	}
	if calls[0].method != "MULTIPART" || len(calls[0].files) != 1 || calls[0].files[0].Path != photo {
		t.Fatalf("first call = %#v", calls[0])
	}
	if !strings.HasPrefix(calls[0].files[0].Field, "fotos[") {
		t.Fatalf("file field = %q", calls[0].files[0].Field)
	}
	if calls[1].method != "POST" {
		t.Fatalf("second call method = %s, want POST", calls[1].method)
	}
}

func TestSyncGuardRejectsConcurrentRun(t *testing.T) {
	h := newHarness(t, stubConnectivity{}, domain.Plan{})
	h.svc.syncing.Store(true)

	if _, err := h.svc.SendAll(context.Background(), nil); !errors.Is(err, domain.ErrSyncInProgress) {
		t.Fatalf("SendAll() error = %v, want ErrSyncInProgress", err)
	}
	if _, err := h.svc.SyncAllDataStreaming(context.Background(), "", nil); !errors.Is(err, domain.ErrSyncInProgress) {
		t.Fatalf("SyncAllDataStreaming() error = %v, want ErrSyncInProgress", err)
	}
	if !h.svc.IsSyncing() {
		t.Fatal("a rejected run must not clear the running flag")
	}
}

func pullPlan() domain.Plan {
	return domain.Plan{Steps: []domain.PlanStep{
		{Name: "Cost centers", Dataset: domain.DatasetCostCenters, Path: "/centros-custo"},
		{Name: "Employees", Dataset: domain.DatasetEmployees, Path: "/funcionarios"},
		{Name: "Teams", Dataset: domain.DatasetTeams, Path: "/equipes"},
	}}
}

func int64Ptr(v int64) *int64 { return &v }

func TestSyncAllDataStreamingReplacesScopedRows(t *testing.T) {
	h := newHarness(t, stubConnectivity{}, pullPlan())
	seed := []any{
		&[]model.CentroCusto{{ID: 1, Nome: "North"}, {ID: 2, Nome: "South"}, {ID: 99, Nome: "Closed"}},
		&[]model.Funcionario{
			{ID: 1, Nome: "Stale", CentroCustoID: int64Ptr(1)},
			{ID: 2, Nome: "Bruno", CentroCustoID: int64Ptr(1)},
			{ID: 3, Nome: "Carla", CentroCustoID: int64Ptr(2)},
		},
	}
	for _, rows := range seed {
		if err := h.db.Create(rows).Error; err != nil {
			t.Fatalf("seed %T: %v", rows, err)
		}
	}
	h.remote.pulls["/centros-custo"] = `[{"id":1,"nome":"North"},{"id":2,"nome":"South"}]`
	h.remote.pulls["/funcionarios"] = `[{"id":2,"nome":"Bruno R"},{"id":4,"nome":"Davi","centro_custo_id":1}]`
	h.remote.pulls["/equipes"] = `[{"id":7,"nome":"Line crew"}]`

	progress := &recordedProgress{}
	report, err := h.svc.SyncAllDataStreaming(context.Background(), "1", progress)
	if err != nil {
		t.Fatalf("SyncAllDataStreaming() error = %v", err)
	}
	if len(report.Steps) != 3 || report.Steps[1].Rows != 2 || report.CostCenterID != "1" {
		t.Fatalf("report = %#v", report)
	}

	var scoped []model.Funcionario
	if err := h.db.Where("centro_custo_id = ?", 1).Order("id asc").Find(&scoped).Error; err != nil {
		t.Fatalf("list scoped employees: %v", err)
	}
	if len(scoped) != 2 || scoped[0].ID != 2 || scoped[0].Nome != "Bruno R" || scoped[1].ID != 4 {
		t.Fatalf("scoped employees = %#v", scoped)
	}
	var other model.Funcionario
	if err := h.db.First(&other, 3).Error; err != nil || other.Nome != "Carla" {
		t.Fatalf("other cost center row = %#v, err = %v", other, err)
	}
	if n := countRows(t, h.db, &model.CentroCusto{}); n != 2 {
		t.Fatalf("cost centers = %d, want 2", n)
	}

	calls := h.remote.Calls()
	if calls[0].query.Get(costCenterQueryParam) != "" {
		t.Fatalf("unscoped dataset got query %v", calls[0].query)
	}
	if calls[1].query.Get(costCenterQueryParam) != "1" {
		t.Fatalf("scoped dataset query = %v", calls[1].query)
	}

	wantSteps := []string{"Cost centers (1/3)", "Employees (2/3)", "Teams (3/3)", "Done"}
	if fmt.Sprint(progress.steps) != fmt.Sprint(wantSteps) {
		t.Fatalf("progress steps = %v, want %v", progress.steps, wantSteps)
	}
	if progress.percents[1] <= progress.percents[0] || progress.percents[3] != 100 {
		t.Fatalf("percentages = %v", progress.percents)
	}
	if len(progress.success) != 1 {
		t.Fatalf("progress success = %#v", progress.success)
	}
}

func TestSyncAllDataStreamingStopsAtFirstFailure(t *testing.T) {
	h := newHarness(t, stubConnectivity{}, pullPlan())
	if err := h.db.Create(&model.Equipe{ID: 5, Nome: "Old crew"}).Error; err != nil {
		t.Fatalf("seed team: %v", err)
	}
	h.remote.pulls["/centros-custo"] = `[{"id":1,"nome":"North"}]`
	h.remote.fail = func(path string, _ any) error {
		if path == "/funcionarios" {
			return &domain.TransferError{Status: 503, Message: "maintenance"}
		}
		return nil
	}

	progress := &recordedProgress{}
	report, err := h.svc.SyncAllDataStreaming(context.Background(), "", progress)
	var transferErr *domain.TransferError
	if !errors.As(err, &transferErr) {
		t.Fatalf("SyncAllDataStreaming() error = %v, want TransferError", err)
	}
	if len(report.Steps) != 1 {
		t.Fatalf("applied steps = %#v, want 1", report.Steps)
	}
	if n := countRows(t, h.db, &model.CentroCusto{}); n != 1 {
		t.Fatalf("first step was rolled back: cost centers = %d", n)
	}
	if n := countRows(t, h.db, &model.Equipe{}); n != 1 {
		t.Fatalf("teams = %d, want the untouched row", n)
	}
	for _, call := range h.remote.Calls() {
		if call.path == "/equipes" {
			t.Fatal("step after the failure was requested")
		}
	}
	if len(progress.errors) != 1 || progress.errors[0] != "maintenance" {
		t.Fatalf("progress errors = %#v", progress.errors)
	}
}

func TestSyncAllDataStreamingStoreFailureIsStoreError(t *testing.T) {
	h := newHarness(t, stubConnectivity{}, pullPlan())
	h.remote.pulls["/centros-custo"] = `{"not":"a list"}`

	_, err := h.svc.SyncAllDataStreaming(context.Background(), "", nil)
	var storeErr *domain.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("SyncAllDataStreaming() error = %v, want StoreError", err)
	}
}

func TestSyncAllDataStreamingRejectsNonNumericScope(t *testing.T) {
	h := newHarness(t, stubConnectivity{}, pullPlan())

	if _, err := h.svc.SyncAllDataStreaming(context.Background(), "north", nil); err == nil {
		t.Fatal("SyncAllDataStreaming() error = nil, want scope error")
	}
	if calls := h.remote.Calls(); len(calls) != 0 {
		t.Fatalf("remote calls = %d, want 0", len(calls))
	}
}

func TestStatusReportsPendingAndLastRun(t *testing.T) {
	h := newHarness(t, stubConnectivity{}, pullPlan())
	seedChecklist(t, h.db, "c-1", true, nil)
	seedChecklist(t, h.db, "c-2", true, nil)
	seedChecklist(t, h.db, "draft", false, nil)
	seedShift(t, h.db, "s-1", "7")
	ctx := context.Background()

	before, err := h.svc.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if before.PendingChecklists != 2 || before.DraftChecklists != 1 || before.PendingShifts != 1 || before.LastPushAt != "" {
		t.Fatalf("status before push = %#v", before)
	}

	if _, err := h.svc.SendAll(ctx, nil); err != nil {
		t.Fatalf("SendAll() error = %v", err)
	}
	after, err := h.svc.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if after.PendingChecklists != 0 || after.PendingShifts != 0 || after.DraftChecklists != 1 {
		t.Fatalf("status after push = %#v", after)
	}
	if after.LastPushAt != "2026-10-19T18:00:00Z" || after.LastPushOutcome != string(domain.OutcomeSuccess) {
		t.Fatalf("last push = %q %q", after.LastPushAt, after.LastPushOutcome)
	}
}
