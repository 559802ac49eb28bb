package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"fieldcheck/internal/bootstrap/config"
	"fieldcheck/internal/bootstrap/logging"
	"fieldcheck/internal/errs"
	"fieldcheck/internal/infrastructure/persistence/sqlite/model"
)

// App holds what every command needs after bootstrap.
type App struct {
	Config config.Config
	DB     *gorm.DB
	Logger *slog.Logger
}

// Context attaches the configured logger to ctx.
func (a *App) Context(ctx context.Context) context.Context {
	if a == nil || a.Logger == nil {
		return ctx
	}
	return logging.WithLogger(ctx, a.Logger)
}

func (a *App) InitSchema(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	logCtx := logging.WithComponent(ctx, "bootstrap.app")
	logging.Info(logCtx, "start schema migration")

	models := model.All()
	if err := a.DB.WithContext(ctx).AutoMigrate(models...); err != nil {
		return errs.Wrap(err, "auto migrate schema")
	}

	logging.Info(logCtx, "schema migration completed", slog.Int("tables", len(models)))
	return nil
}
