package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	// 各テストで新しいレジストリを使用
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	require.NotNil(t, m)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.BookingsTotal)
	assert.NotNil(t, m.DistributedLockDuration)
	assert.NotNil(t, m.ActiveTickets)
	assert.NotNil(t, m.ExpiredHoldsTotal)
}

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/bookings", "201").Inc()
	m.HTTPRequestDuration.WithLabelValues("POST", "/api/v1/bookings").Observe(0.05)
	m.BookingsTotal.WithLabelValues("success").Inc()
	m.BookingsTotal.WithLabelValues("seat_conflict").Inc()
	m.DistributedLockDuration.WithLabelValues("acquire", "success").Observe(0.002)
	m.ActiveTickets.WithLabelValues("unpaid").Set(3)
	m.ExpiredHoldsTotal.Add(2)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["http_requests_total"])
	assert.True(t, names["http_request_duration_seconds"])
	assert.True(t, names["bookings_total"])
	assert.True(t, names["distributed_lock_duration_seconds"])
	assert.True(t, names["active_tickets"])
	assert.True(t, names["expired_holds_total"])
}

func TestInitAndGet(t *testing.T) {
	// Init 前に他テストで初期化されている可能性があるため既存値を退避
	prev := defaultMetrics
	defer func() { defaultMetrics = prev }()

	defaultMetrics = nil
	assert.Nil(t, Get())

	reg := prometheus.NewRegistry()
	defaultMetrics = NewWithRegistry(reg)
	assert.Same(t, defaultMetrics, Get())
}
