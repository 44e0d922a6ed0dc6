package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	sums := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if s, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range s.DataPoints {
					sums[m.Name] += dp.Value
				}
			}
		}
	}
	return sums
}

func TestRecordTurn(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m := NewMetrics(mp.Meter("test"))

	ctx := context.Background()
	m.RecordTurn(ctx, TurnSample{Turn: 1, Selected: []string{"foodCrisis", "rivalScheme"}, Suppressed: 3, Duration: time.Millisecond})
	m.RecordTurn(ctx, TurnSample{Turn: 2, Quiet: true, QuietReason: "ceiling", Failures: 1, CrisisStart: "shortage"})

	sums := collect(t, reader)
	assert.Equal(t, int64(2), sums["politburo.turns"])
	assert.Equal(t, int64(2), sums["politburo.incidents"])
	assert.Equal(t, int64(1), sums["politburo.quiet_turns"])
	assert.Equal(t, int64(3), sums["politburo.suppressed"])
	assert.Equal(t, int64(1), sums["politburo.generator_failures"])
	assert.Equal(t, int64(1), sums["politburo.economic_crises"])
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.RecordTurn(context.Background(), TurnSample{Turn: 1}) })
}

func TestInitWithoutEndpoint(t *testing.T) {
	shutdown, err := Init(context.Background(), "", "politburo", "test", true)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
