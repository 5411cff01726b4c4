package logging

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInfoTagsService(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := GetLogger()
	SetLogger(zap.New(core))
	defer SetLogger(prev)

	Info("tool called", zap.String("tool", "verify_transaction"))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, serviceName, fields["service"])
	assert.Equal(t, "verify_transaction", fields["tool"])
}

func TestWithTraceContextWithoutSpan(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := GetLogger()
	SetLogger(zap.New(core))
	defer SetLogger(prev)

	WithTraceContext(trace.SpanFromContext(context.Background())).Info("no span")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.NotContains(t, fields, "trace_id")
	assert.Equal(t, serviceName, fields["service"])
}

type memoryExporter struct {
	mu     sync.Mutex
	bodies []string
}

func (e *memoryExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.bodies = append(e.bodies, r.Body().AsString())
	}
	return nil
}

func (e *memoryExporter) Shutdown(context.Context) error   { return nil }
func (e *memoryExporter) ForceFlush(context.Context) error { return nil }

func TestWithOTelCoreExportsRecords(t *testing.T) {
	exp := &memoryExporter{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exp)))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	core, stderr := observer.New(zapcore.InfoLevel)
	prev := GetLogger()
	SetLogger(withOTelCore(zap.New(core), provider))
	defer SetLogger(prev)

	Info("paystack lookup finished", zap.String("tool", "fetch_transaction"))

	assert.Equal(t, 1, stderr.Len())
	exp.mu.Lock()
	defer exp.mu.Unlock()
	assert.Equal(t, []string{"paystack lookup finished"}, exp.bodies)
}
