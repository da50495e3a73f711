package observability_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/itops-service/internal/observability"
)

func TestMetrics_Snapshot(t *testing.T) {
	t.Parallel()

	m := observability.NewMetrics()
	m.RecordRequest("/api/v1/tickets", "POST", 201, 40*time.Millisecond)
	m.RecordRequest("/api/v1/tickets", "POST", 201, 10*time.Millisecond)
	m.RecordError("/api/v1/tickets", "POST", "FORBIDDEN")
	m.RecordCommand("CreateTicket", "OK")
	m.RecordEventDelivered("ticket.created")
	m.RecordHandlerFailure("activity_logger", "ticket.created")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/api/v1/tickets|POST|201"])
	assert.Equal(t, int64(50), snap.RequestMillis["/api/v1/tickets|POST|201"])
	assert.Equal(t, int64(1), snap.Errors["/api/v1/tickets|POST|FORBIDDEN"])
	assert.Equal(t, int64(1), snap.Commands["CreateTicket|OK"])
	assert.Equal(t, int64(1), snap.EventsDelivered["ticket.created"])
	assert.Equal(t, int64(1), snap.HandlerFailures["activity_logger|ticket.created"])

	m.RecordCommand("CreateTicket", "OK")
	assert.Equal(t, int64(1), snap.Commands["CreateTicket|OK"], "snapshot must not alias live counters")
}

func TestMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var m *observability.Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordCommand("x", "OK")
		m.RecordHandlerFailure("h", "e")
		_ = m.Snapshot()
	})
}
