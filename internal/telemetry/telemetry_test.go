package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"factflow/internal/config"
)

func TestInitDisabledInstallsNoop(t *testing.T) {
	cfg := config.Default()
	if err := Init(context.Background(), &cfg, "test"); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	_, span := Tracer("").Start(context.Background(), "noop")
	defer span.End()
	if span.SpanContext().IsValid() {
		t.Fatal("expected no-op span when telemetry is disabled")
	}
	if err := Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
}

func TestInitStdoutExportsSpans(t *testing.T) {
	cfg := config.Default()
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Stdout = true

	var buf bytes.Buffer
	if err := initWithWriter(context.Background(), &cfg, "test", &buf); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	_, span := Tracer("factflow/test").Start(context.Background(), "workflow.transition")
	if !span.SpanContext().IsValid() {
		t.Fatal("expected recording span when telemetry is enabled")
	}
	span.End()

	if err := Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if !strings.Contains(buf.String(), "workflow.transition") {
		t.Fatalf("expected exported span, got %q", buf.String())
	}

	cfg.Telemetry.Enabled = false
	if err := Init(context.Background(), &cfg, "test"); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
}
