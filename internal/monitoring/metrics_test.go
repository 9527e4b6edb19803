package monitoring

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRefresh(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC))
	m := NewMetricsForTesting(clock)

	start := m.Now()
	clock.Advance(20 * time.Millisecond)
	m.ObserveRefresh("water", start)
	m.ObserveRefresh("water", start)
	m.ObserveRefresh("energy", start)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MapRefreshes.WithLabelValues("water")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MapRefreshes.WithLabelValues("energy")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.RecomputeDuration))
}

func TestObserveQuery(t *testing.T) {
	clock := clockwork.NewFakeClock()
	m := NewMetricsForTesting(clock)

	start := m.Now()
	clock.Advance(2 * time.Second)
	m.ObserveQuery(OutcomeAnswered, start)
	m.ObserveQuery(OutcomeError, start)
	m.ObserveQuery(OutcomeEmpty, start)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Queries.WithLabelValues(OutcomeAnswered)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Queries.WithLabelValues(OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Queries.WithLabelValues(OutcomeEmpty)))
}

func TestSetRegionsAndNoValues(t *testing.T) {
	m := NewMetricsForTesting(nil)
	m.SetRegions("water", 361)
	m.ObserveNoValues("capacity")

	assert.Equal(t, 361.0, testutil.ToFloat64(m.RegionsLoaded.WithLabelValues("water")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NoValueSelections.WithLabelValues("capacity")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRefresh("water", m.Now())
		m.ObserveQuery(OutcomeAnswered, m.Now())
		m.ObserveNoValues("water")
		m.SetRegions("water", 1)
	})
}
