package logging

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"sync"

	"fieldcheck/internal/errs"
)

// Attribute keys shared by command, record and sync log lines.
const (
	KeyComponent = "component"
	KeyKind      = "kind"
	KeyRecordID  = "record_id"
	KeyDataset   = "dataset"
	KeyStep      = "step"
	KeyErr       = "err"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	attrsKey
)

// fallback serves contexts that never got a logger, such as tests and
// code running before the config is loaded.
var fallback = sync.OnceValue(func() *slog.Logger {
	handler, _ := newHandler(os.Stderr, slog.LevelInfo, "text")
	return slog.New(handler)
})

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// WithAttrs adds attrs to every line logged with ctx. A key already present
// is replaced in place.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(attrs) == 0 {
		return ctx
	}
	return context.WithValue(ctx, attrsKey, mergeAttrs(Attrs(ctx), attrs))
}

func WithComponent(ctx context.Context, name string) context.Context {
	return WithAttrs(ctx, slog.String(KeyComponent, name))
}

// WithRecord tags lines about one local root record (checklist or shift).
func WithRecord(ctx context.Context, kind string, id int64) context.Context {
	return WithAttrs(ctx, slog.String(KeyKind, kind), slog.Int64(KeyRecordID, id))
}

// WithDataset tags lines about one pull step. step is 1-based.
func WithDataset(ctx context.Context, dataset string, step int) context.Context {
	return WithAttrs(ctx, slog.String(KeyDataset, dataset), slog.Int(KeyStep, step))
}

// Err is the attr every failure is logged with.
func Err(err error) slog.Attr {
	return slog.Any(KeyErr, errs.Loggable(err))
}

func Logger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return fallback()
}

// Attrs returns a copy of the attrs carried by ctx.
func Attrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs, _ := ctx.Value(attrsKey).([]slog.Attr)
	return slices.Clone(attrs)
}

func Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelDebug, msg, attrs)
}

func Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelInfo, msg, attrs)
}

func Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelWarn, msg, attrs)
}

func Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	emit(ctx, slog.LevelError, msg, attrs)
}

func emit(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	Logger(ctx).LogAttrs(ctx, level, msg, mergeAttrs(Attrs(ctx), attrs)...)
}

func mergeAttrs(base []slog.Attr, extra []slog.Attr) []slog.Attr {
	merged := make([]slog.Attr, 0, len(base)+len(extra))
	merged = append(merged, base...)
	for _, attr := range extra {
		i := slices.IndexFunc(merged, func(a slog.Attr) bool {
			return attr.Key != "" && a.Key == attr.Key
		})
		if i >= 0 {
			merged[i] = attr
			continue
		}
		merged = append(merged, attr)
	}
	return merged
}
