package bootstrap

import (
	"context"
	"log/slog"
	"os"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"fieldcheck/internal/bootstrap/config"
	"fieldcheck/internal/bootstrap/database"
	"fieldcheck/internal/bootstrap/logging"
	cacheinfra "fieldcheck/internal/infrastructure/cache"
	"fieldcheck/internal/infrastructure/connectivity"
	"fieldcheck/internal/infrastructure/metrics"
	sqliterepo "fieldcheck/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "fieldcheck/internal/infrastructure/persistence/sqlite/uow"
	"fieldcheck/internal/infrastructure/remote"
	"fieldcheck/internal/ports"
	"fieldcheck/internal/usecase/datasync"
	"fieldcheck/internal/usecase/fieldrecord"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideLogger),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewChecklistRepository,
			fx.As(new(ports.ChecklistRepository)),
		),
		fx.Annotate(
			sqliterepo.NewShiftRepository,
			fx.As(new(ports.ShiftRepository)),
		),
		fx.Annotate(
			sqliterepo.NewReferenceRepository,
			fx.As(new(ports.ReferenceRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(provideSession),
	fx.Provide(provideRemote),
	fx.Provide(provideConnectivity),
	fx.Provide(metrics.NewRecorder),
	fx.Provide(fieldrecord.NewService),
	fx.Provide(provideSyncService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithComponent(p.Ctx, "bootstrap.fx")
	return config.Load(ctx, p.ConfigFile)
}

func provideLogger(lc fx.Lifecycle, cfg config.Config) (*slog.Logger, error) {
	logger, closer, err := logging.New(os.Stderr, logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return closer.Close()
		},
	})
	return logger.With(slog.String("app", cfg.App.Name)), nil
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithComponent(ctx, "bootstrap.fx")

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

// provideApp leaves closing to the lifecycle hooks.
func provideApp(cfg config.Config, db *gorm.DB, logger *slog.Logger) *App {
	return &App{
		Config: cfg,
		DB:     db,
		Logger: logger,
	}
}

func provideSession(cfg config.Config) ports.SessionStore {
	return remote.NewStaticSession(cfg.Remote.Token, cfg.Remote.TokenFile)
}

func provideRemote(cfg config.Config, session ports.SessionStore) (ports.RemoteClient, error) {
	return remote.NewClient(remote.Options{
		BaseURL:    cfg.Remote.BaseURL,
		AppVersion: cfg.App.Version,
		UserAgent:  cfg.Remote.UserAgent,
		Timeout:    cfg.Remote.Timeout,
	}, session)
}

func provideConnectivity(cfg config.Config) (ports.ConnectivityChecker, error) {
	return connectivity.NewChecker(connectivity.Options{
		BaseURL:            cfg.Remote.BaseURL,
		ProbePath:          cfg.Connectivity.ProbePath,
		Timeout:            cfg.Connectivity.Timeout,
		SkipInterfaceCheck: cfg.Connectivity.SkipInterfaceCheck,
	})
}

type syncParams struct {
	fx.In

	Config       config.Config
	Checklists   ports.ChecklistRepository
	Shifts       ports.ShiftRepository
	Reference    ports.ReferenceRepository
	Remote       ports.RemoteClient
	Connectivity ports.ConnectivityChecker
	Cache        ports.Cache
	Metrics      *metrics.Recorder
}

func provideSyncService(p syncParams) (*datasync.Service, error) {
	plan, err := datasync.LoadPlan(p.Config.Sync.PlanFile)
	if err != nil {
		return nil, err
	}
	return datasync.NewService(datasync.Dependencies{
		Checklists:   p.Checklists,
		Shifts:       p.Shifts,
		Reference:    p.Reference,
		Remote:       p.Remote,
		Connectivity: p.Connectivity,
		Cache:        p.Cache,
		Metrics:      p.Metrics,
	}, datasync.Options{
		Plan:          plan,
		ChecklistPath: p.Config.Remote.ChecklistPath,
		ShiftPath:     p.Config.Remote.ShiftPath,
	})
}
