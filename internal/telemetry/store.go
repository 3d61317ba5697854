package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/example/workhub/internal/ports/secondary"
)

const storeScopeName = "github.com/example/workhub/store"

// InstrumentedStore wraps a secondary.Store so every transaction is a span
// and counted in workhub.store.* metrics. Plain reads pass straight through.
type InstrumentedStore struct {
	secondary.Store
	tracer trace.Tracer
	txs    metric.Int64Counter
	errs   metric.Int64Counter
	dur    metric.Float64Histogram
}

// WrapStore returns s decorated with instrumentation against the global providers.
func WrapStore(s secondary.Store) *InstrumentedStore {
	m := Meter(storeScopeName)
	txs, _ := m.Int64Counter("workhub.store.transactions",
		metric.WithDescription("Storage transactions executed"),
	)
	errs, _ := m.Int64Counter("workhub.store.errors",
		metric.WithDescription("Storage transactions that rolled back"),
	)
	dur, _ := m.Float64Histogram("workhub.store.transaction.duration",
		metric.WithDescription("Storage transaction duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	return &InstrumentedStore{
		Store:  s,
		tracer: Tracer(storeScopeName),
		txs:    txs,
		errs:   errs,
		dur:    dur,
	}
}

// RunInTransaction runs fn in the wrapped store inside a span.
func (s *InstrumentedStore) RunInTransaction(ctx context.Context, fn func(tx secondary.Transaction) error) error {
	ctx, span := s.tracer.Start(ctx, "store.transaction", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	start := time.Now()
	s.txs.Add(ctx, 1)
	err := s.Store.RunInTransaction(ctx, fn)
	s.dur.Record(ctx, float64(time.Since(start).Milliseconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.errs.Add(ctx, 1)
	}
	return err
}

var _ secondary.Store = (*InstrumentedStore)(nil)
