package telemetry

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/example/workhub/internal/adapters/sqlite"
	"github.com/example/workhub/internal/config"
	"github.com/example/workhub/internal/db"
	"github.com/example/workhub/internal/ports/secondary"
)

func TestInit_DisabledIsNoop(t *testing.T) {
	p, err := Init(context.Background(), config.TelemetryConfig{}, "workhub", "test", nil)
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestInit_StdoutExportsOnShutdown(t *testing.T) {
	var buf bytes.Buffer
	p, err := Init(context.Background(), config.TelemetryConfig{Enabled: true, Stdout: true}, "workhub", "test", &buf)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = Init(context.Background(), config.TelemetryConfig{}, "workhub", "test", nil) })
	assert.True(t, p.Enabled())

	_, span := Tracer("").Start(context.Background(), "export-check")
	span.End()

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "export-check")
	assert.Contains(t, buf.String(), "service.name")
	assert.NoError(t, p.Shutdown(context.Background()), "second shutdown is a no-op")
}

func TestWrapStore_CountsTransactions(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	database, err := db.OpenMemory(context.Background())
	require.NoError(t, err)
	store := WrapStore(sqlite.NewStore(database))
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.RunInTransaction(ctx, func(tx secondary.Transaction) error { return nil }))
	boom := errors.New("boom")
	assert.ErrorIs(t, store.RunInTransaction(ctx, func(tx secondary.Transaction) error { return boom }), boom)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	sums := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if data, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(2), sums["workhub.store.transactions"])
	assert.Equal(t, int64(1), sums["workhub.store.errors"])
}
