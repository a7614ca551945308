package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the social feed service.
// Metrics are organized by subsystem: HTTP, pagination, content, follows,
// chat, and event publishing. All counters and histograms are registered
// via promauto for automatic registration with the default Prometheus
// registry.
type Metrics struct {
	// HTTPRequestsTotal counts HTTP requests, labeled by method, route pattern, and status code.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration observes HTTP request duration in seconds, labeled by method and route pattern.
	HTTPRequestDuration *prometheus.HistogramVec

	// PaginationQueries counts listing queries, labeled by pagination mode.
	PaginationQueries *prometheus.CounterVec

	// UsersRegistered counts user registrations.
	UsersRegistered prometheus.Counter

	// PostsCreated counts posts created.
	PostsCreated prometheus.Counter

	// CommentsCreated counts comments created.
	CommentsCreated prometheus.Counter

	// FollowsRequested counts follow requests created.
	FollowsRequested prometheus.Counter

	// FollowsConfirmed counts follow requests confirmed.
	FollowsConfirmed prometheus.Counter

	// ChatMessagesSent counts chat messages persisted.
	ChatMessagesSent prometheus.Counter

	// ChatConnectionsActive tracks currently open WebSocket connections.
	ChatConnectionsActive prometheus.Gauge

	// EventsPublished counts domain events published, labeled by event type.
	EventsPublished *prometheus.CounterVec

	// EventsFailed counts domain events that failed to publish, labeled by event type.
	EventsFailed *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The namespace is used as a prefix for all metric names.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		// HTTP
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),

		// Pagination
		PaginationQueries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pagination_queries_total",
			Help:      "Total number of paginated listing queries by mode",
		}, []string{"mode"}),

		// Content
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_registered_total",
			Help:      "Total number of users registered",
		}),
		PostsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_created_total",
			Help:      "Total number of posts created",
		}),
		CommentsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_created_total",
			Help:      "Total number of comments created",
		}),

		// Follows
		FollowsRequested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "follows_requested_total",
			Help:      "Total number of follow requests created",
		}),
		FollowsConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "follows_confirmed_total",
			Help:      "Total number of follow requests confirmed",
		}),

		// Chat
		ChatMessagesSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_messages_sent_total",
			Help:      "Total number of chat messages persisted",
		}),
		ChatConnectionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chat_connections_active",
			Help:      "Number of currently open chat WebSocket connections",
		}),

		// Events
		EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of domain events published by type",
		}, []string{"type"}),
		EventsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_failed_total",
			Help:      "Total number of domain events that failed to publish by type",
		}, []string{"type"}),
	}
}

// RecordHTTPRequest records a completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route, status string, durationSeconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}

// RecordUserRegistered records a user registration.
func (m *Metrics) RecordUserRegistered() {
	m.UsersRegistered.Inc()
}

// RecordPostCreated records a created post.
func (m *Metrics) RecordPostCreated() {
	m.PostsCreated.Inc()
}

// RecordCommentCreated records a created comment.
func (m *Metrics) RecordCommentCreated() {
	m.CommentsCreated.Inc()
}

// RecordFollowRequested records a created follow request.
func (m *Metrics) RecordFollowRequested() {
	m.FollowsRequested.Inc()
}

// RecordFollowConfirmed records a confirmed follow request.
func (m *Metrics) RecordFollowConfirmed() {
	m.FollowsConfirmed.Inc()
}

// RecordChatMessageSent records a persisted chat message.
func (m *Metrics) RecordChatMessageSent() {
	m.ChatMessagesSent.Inc()
}

// RecordChatConnectionOpened records an opened WebSocket connection.
func (m *Metrics) RecordChatConnectionOpened() {
	m.ChatConnectionsActive.Inc()
}

// RecordChatConnectionClosed records a closed WebSocket connection.
func (m *Metrics) RecordChatConnectionClosed() {
	m.ChatConnectionsActive.Dec()
}

// RecordEventPublished records a published domain event.
func (m *Metrics) RecordEventPublished(eventType string) {
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

// RecordEventFailed records a domain event that failed to publish.
func (m *Metrics) RecordEventFailed(eventType string) {
	m.EventsFailed.WithLabelValues(eventType).Inc()
}
