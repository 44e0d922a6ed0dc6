package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics are the per-turn instruments. A nil *Metrics records nothing.
type Metrics struct {
	turns       metric.Int64Counter
	incidents   metric.Int64Counter
	quiet       metric.Int64Counter
	suppressed  metric.Int64Counter
	failures    metric.Int64Counter
	crises      metric.Int64Counter
	turnLatency metric.Float64Histogram
}

// TurnSample is what one advanced turn contributes to the instruments.
type TurnSample struct {
	Turn        int
	Selected    []string // incident types
	Quiet       bool
	QuietReason string
	Suppressed  int
	Failures    int
	CrisisStart string
	Duration    time.Duration
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) *Metrics {
	turns, _ := meter.Int64Counter("politburo.turns",
		metric.WithDescription("Turns advanced"),
	)
	incidents, _ := meter.Int64Counter("politburo.incidents",
		metric.WithDescription("Incidents surfaced to the player, by type"),
	)
	quiet, _ := meter.Int64Counter("politburo.quiet_turns",
		metric.WithDescription("Turns that surfaced no incident, by reason"),
	)
	suppressed, _ := meter.Int64Counter("politburo.suppressed",
		metric.WithDescription("Candidates filtered or deferred by the scheduler"),
	)
	failures, _ := meter.Int64Counter("politburo.generator_failures",
		metric.WithDescription("Generators whose output was discarded"),
	)
	crises, _ := meter.Int64Counter("politburo.economic_crises",
		metric.WithDescription("Economic crises started, by kind"),
	)
	latency, _ := meter.Float64Histogram("politburo.turn.duration",
		metric.WithDescription("Time to advance one turn (ms)"),
		metric.WithUnit("ms"),
	)
	return &Metrics{
		turns:       turns,
		incidents:   incidents,
		quiet:       quiet,
		suppressed:  suppressed,
		failures:    failures,
		crises:      crises,
		turnLatency: latency,
	}
}

// RecordTurn adds one turn's sample.
func (m *Metrics) RecordTurn(ctx context.Context, t TurnSample) {
	if m == nil {
		return
	}
	m.turns.Add(ctx, 1)
	for _, typ := range t.Selected {
		m.incidents.Add(ctx, 1, metric.WithAttributes(attribute.String("type", typ)))
	}
	if t.Quiet {
		m.quiet.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", t.QuietReason)))
	}
	if t.Suppressed > 0 {
		m.suppressed.Add(ctx, int64(t.Suppressed))
	}
	if t.Failures > 0 {
		m.failures.Add(ctx, int64(t.Failures))
	}
	if t.CrisisStart != "" {
		m.crises.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", t.CrisisStart)))
	}
	m.turnLatency.Record(ctx, float64(t.Duration.Microseconds())/1000)
}
