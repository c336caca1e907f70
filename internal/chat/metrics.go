package chat

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_connected_clients",
		Help: "Number of currently connected clients",
	})

	AuthenticatedUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chat_authenticated_users",
		Help: "Number of connections currently logged in",
	})

	RejectedConnections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_rejected_connections_total",
		Help: "Connections refused because the server was at capacity",
	})

	DroppedFrames = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_dropped_frames_total",
		Help: "Outbound frames dropped for slow or unencodable sends",
	})

	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_messages_total",
		Help: "Total frames dispatched by kind",
	}, []string{"type"})

	EventProcessingDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chat_event_processing_seconds",
		Help:    "Time to process each event type",
		Buckets: prometheus.DefBuckets,
	}, []string{"type"})
)

func init() {
	prometheus.MustRegister(ConnectedClients)
	prometheus.MustRegister(AuthenticatedUsers)
	prometheus.MustRegister(RejectedConnections)
	prometheus.MustRegister(DroppedFrames)
	prometheus.MustRegister(MessagesTotal)
	prometheus.MustRegister(EventProcessingDuration)
}
