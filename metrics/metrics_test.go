package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.SetRooms(3)
	m.ConnectionOpened()
	m.MessageRelayed("offer")
	m.JoinRejected(RejectRoomFull)
}

func TestCounters(t *testing.T) {
	m := New()
	m.SetRooms(2)
	m.ConnectionOpened()
	m.ConnectionOpened()
	m.ConnectionClosed()
	m.MessageRelayed("offer")
	m.MessageRelayed("offer")
	m.JoinRejected(RejectRoomFull)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.roomsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connectionsActive))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.messagesRelayed.WithLabelValues("offer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.joinsRejected.WithLabelValues(RejectRoomFull)))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.SetRooms(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "videocall_rooms_active 1")
}
