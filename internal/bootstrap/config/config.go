package config

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"fieldcheck/internal/bootstrap/logging"
	"fieldcheck/internal/errs"
)

type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Log          LogConfig          `mapstructure:"log"`
	Remote       RemoteConfig       `mapstructure:"remote"`
	Connectivity ConnectivityConfig `mapstructure:"connectivity"`
	Sync         SyncConfig         `mapstructure:"sync"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
}

type AppConfig struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type RemoteConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Token         string        `mapstructure:"token"`
	TokenFile     string        `mapstructure:"token_file"`
	Timeout       time.Duration `mapstructure:"timeout"`
	ChecklistPath string        `mapstructure:"checklist_path"`
	ShiftPath     string        `mapstructure:"shift_path"`
	UserAgent     string        `mapstructure:"user_agent"`
}

type ConnectivityConfig struct {
	ProbePath          string        `mapstructure:"probe_path"`
	Timeout            time.Duration `mapstructure:"timeout"`
	SkipInterfaceCheck bool          `mapstructure:"skip_interface_check"`
}

type SyncConfig struct {
	PlanFile     string `mapstructure:"plan_file"`
	CostCenterID string `mapstructure:"cost_center_id"`
}

type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithComponent(ctx, "bootstrap.config")

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("version", cfg.App.Version),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("remote", cfg.Remote.BaseURL),
	)

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("database.dsn is required")
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Format)) {
	case "", "text", "json":
	default:
		return errors.New("log.format must be text or json")
	}
	if c.Remote.Timeout < 0 || c.Connectivity.Timeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "fieldcheck")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".fieldcheck/records.sqlite")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("remote.base_url", "http://localhost:8080/api")
	v.SetDefault("remote.timeout", 30*time.Second)
	v.SetDefault("remote.checklist_path", "/checklist-realizados")
	v.SetDefault("remote.shift_path", "/equipe-turnos")
	v.SetDefault("remote.user_agent", "fieldcheck")
	v.SetDefault("connectivity.probe_path", "/health")
	v.SetDefault("connectivity.timeout", 5*time.Second)
}
