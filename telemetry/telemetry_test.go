package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_DisabledIsNoop(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{})
	require.NoError(t, err)

	_, span := p.Tracer("test").Start(context.Background(), "op")
	span.End()
	assert.False(t, span.SpanContext().IsValid())

	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_StdoutExporter(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Exporter = ExporterStdout
	cfg.StdoutWriter = &buf
	cfg.ServiceName = "deepresearch-test"

	p, err := NewProvider(context.Background(), cfg)
	require.NoError(t, err)

	ctx, span := p.Tracer("test").Start(context.Background(), "research.run")
	assert.True(t, span.SpanContext().IsValid())
	_ = ctx
	span.End()

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "research.run")
}

func TestNewProvider_UnknownExporter(t *testing.T) {
	cfg := Config{Enabled: true, Exporter: "jaeger"}
	_, err := NewProvider(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNoopTracer(t *testing.T) {
	_, span := NoopTracer().Start(context.Background(), "op")
	span.End()
	assert.False(t, span.SpanContext().IsValid())
}
