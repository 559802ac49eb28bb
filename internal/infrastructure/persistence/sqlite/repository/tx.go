package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"fieldcheck/internal/ports"
)

// dbFromContext returns the transaction carried by ctx, or the plain handle.
func dbFromContext(ctx context.Context, base *gorm.DB) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return base.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

// inTx runs fn against the transaction in ctx, opening one when ctx has none.
func inTx(ctx context.Context, base *gorm.DB, fn func(ctx context.Context, db *gorm.DB) error) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if ports.TxFromContext(ctx) != nil {
		db, err := dbFromContext(ctx, base)
		if err != nil {
			return err
		}
		return fn(ctx, db)
	}

	return base.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ports.WithTxContext(ctx, tx), tx)
	})
}
