package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "videocall"

// Join rejection reasons.
const (
	RejectRoomFull      = "room_full"
	RejectRoomNotFound  = "room_not_found"
	RejectAlreadyJoined = "already_joined"
	RejectStorage       = "storage_error"
)

// Metrics holds the process collectors on a private registry so that tests
// can build independent instances. All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	roomsActive       prometheus.Gauge
	connectionsActive prometheus.Gauge
	messagesRelayed   *prometheus.CounterVec
	deliveriesDropped prometheus.Counter
	joinsRejected     *prometheus.CounterVec
	persistErrors     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		roomsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_active",
			Help:      "Rooms currently held by the room store.",
		}),
		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "signaling_connections_active",
			Help:      "Open signaling websocket connections.",
		}),
		messagesRelayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signaling_messages_relayed_total",
			Help:      "Negotiation messages accepted for fan-out, by type.",
		}, []string{"type"}),
		deliveriesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signaling_deliveries_dropped_total",
			Help:      "Outbound messages dropped because the recipient could not keep up or was gone.",
		}),
		joinsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signaling_joins_rejected_total",
			Help:      "Refused join requests, by reason.",
		}, []string{"reason"}),
		persistErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_errors_total",
			Help:      "Failed persistence calls, by operation.",
		}, []string{"op"}),
	}

	m.registry.MustRegister(
		m.roomsActive,
		m.connectionsActive,
		m.messagesRelayed,
		m.deliveriesDropped,
		m.joinsRejected,
		m.persistErrors,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SetRooms(n int) {
	if m == nil {
		return
	}
	m.roomsActive.Set(float64(n))
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.connectionsActive.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.connectionsActive.Dec()
}

func (m *Metrics) MessageRelayed(msgType string) {
	if m == nil {
		return
	}
	m.messagesRelayed.WithLabelValues(msgType).Inc()
}

func (m *Metrics) DeliveryDropped() {
	if m == nil {
		return
	}
	m.deliveriesDropped.Inc()
}

func (m *Metrics) JoinRejected(reason string) {
	if m == nil {
		return
	}
	m.joinsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) PersistError(op string) {
	if m == nil {
		return
	}
	m.persistErrors.WithLabelValues(op).Inc()
}
