package ports

import (
	"context"
	"encoding/json"

	"fieldcheck/internal/domain/datasync"
	"fieldcheck/internal/domain/fieldrecord"
)

type ReferenceEntry struct {
	ID           int64  `json:"id"`
	Label        string `json:"label"`
	CostCenterID *int64 `json:"cost_center_id"`
}

// ReferenceRepository reads the reference cache and replaces it on pull.
type ReferenceRepository interface {
	GetTemplate(ctx context.Context, structureID int64) (fieldrecord.Template, error)
	ListTemplateItems(ctx context.Context, structureID int64) ([]fieldrecord.TemplateItem, error)
	ListTemplateRisks(ctx context.Context, structureID int64) ([]fieldrecord.TemplateRisk, error)
	EmployeeNames(ctx context.Context, employeeIDs []int64) (map[int64]string, error)
	ListEntries(ctx context.Context, dataset datasync.Dataset, costCenterID *int64) ([]ReferenceEntry, error)

	// ReplaceDataset deletes every row of the dataset (only the cost
	// center's rows when costCenterID is set and the dataset is scoped) and
	// inserts the downloaded rows, in one transaction. It returns the number
	// of rows inserted.
	ReplaceDataset(ctx context.Context, dataset datasync.Dataset, costCenterID *int64, payload json.RawMessage) (int, error)
}
