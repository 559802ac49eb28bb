package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRecordAndDatasetAttrs(t *testing.T) {
	var out bytes.Buffer
	logger, _, err := New(&out, Options{Format: "json"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithComponent(WithLogger(context.Background(), logger), "datasync.push")
	Warn(WithRecord(ctx, "checklist", 42), "record transfer failed", Err(errors.New("boom")))
	Info(WithDataset(ctx, "teams", 3), "pull step done")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	for _, want := range []string{`"component":"datasync.push"`, `"kind":"checklist"`, `"record_id":42`, `"err":{"message":"boom"`} {
		if !strings.Contains(lines[0], want) {
			t.Fatalf("record line %q does not contain %s", lines[0], want)
		}
	}
	for _, want := range []string{`"dataset":"teams"`, `"step":3`} {
		if !strings.Contains(lines[1], want) {
			t.Fatalf("dataset line %q does not contain %s", lines[1], want)
		}
	}
	if strings.Contains(lines[1], "record_id") {
		t.Fatalf("dataset line leaked record attrs: %q", lines[1])
	}
}

func TestWithRecordReplacesPreviousRecord(t *testing.T) {
	ctx := WithRecord(context.Background(), "shift", 1)
	ctx = WithRecord(ctx, "checklist", 2)

	attrs := Attrs(ctx)
	if len(attrs) != 2 {
		t.Fatalf("attrs = %v", attrs)
	}
	if attrs[0].Value.String() != "checklist" || attrs[1].Value.Int64() != 2 {
		t.Fatalf("attrs = %v", attrs)
	}
}

func TestLoggerFallsBackWithoutContextLogger(t *testing.T) {
	if Logger(context.Background()) == nil {
		t.Fatal("Logger() = nil")
	}
	if Logger(WithLogger(context.Background(), nil)) != Logger(context.Background()) {
		t.Fatal("nil logger should keep the fallback")
	}
	if got := Attrs(WithAttrs(context.Background())); got != nil {
		t.Fatalf("Attrs() = %v, want nil", got)
	}
}
