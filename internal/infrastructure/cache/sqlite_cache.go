package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fieldcheck/internal/errs"
	"fieldcheck/internal/infrastructure/persistence/sqlite/model"
	"fieldcheck/internal/ports"
)

// SQLiteCache stores sync bookkeeping in the sync_meta table. Entries do
// not expire; the ttl argument is accepted for the port and ignored.
type SQLiteCache struct {
	db  *gorm.DB
	now func() time.Time
}

var _ ports.Cache = (*SQLiteCache)(nil)

func NewSQLiteCache(db *gorm.DB) *SQLiteCache {
	return &SQLiteCache{db: db, now: time.Now}
}

func (c *SQLiteCache) Get(ctx context.Context, key string) (string, bool, error) {
	db, k, err := c.prepare(ctx, key)
	if err != nil {
		return "", false, err
	}

	var row model.SyncMeta
	if err := db.Where("key = ?", k).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, errs.Wrap(err, "query sync meta")
	}
	return row.Value, true, nil
}

func (c *SQLiteCache) Set(ctx context.Context, key string, value string, _ time.Duration) error {
	db, k, err := c.prepare(ctx, key)
	if err != nil {
		return err
	}

	row := model.SyncMeta{
		Key:       k,
		Value:     value,
		UpdatedAt: c.now().UTC().Format(time.RFC3339Nano),
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "upsert sync meta")
	}
	return nil
}

func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	db, k, err := c.prepare(ctx, key)
	if err != nil {
		return err
	}

	if err := db.Where("key = ?", k).Delete(&model.SyncMeta{}).Error; err != nil {
		return errs.Wrap(err, "delete sync meta")
	}
	return nil
}

func (c *SQLiteCache) prepare(ctx context.Context, key string) (*gorm.DB, string, error) {
	if ctx == nil {
		return nil, "", errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, "", errs.Wrap(err, "check context")
	}

	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return nil, "", errors.New("key is required")
	}
	return c.db.WithContext(ctx), trimmed, nil
}
