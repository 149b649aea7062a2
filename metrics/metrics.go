package metrics

import (
	"regexp"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, route, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// LoginAttempts counts logins by result: success, invalid, error.
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_login_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	// PostWrites counts successful post mutations by op: create, update, delete.
	PostWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_post_writes_total",
			Help: "Successful post writes by operation",
		},
		[]string{"op"},
	)

	MediaUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "newsdesk_media_uploads_total",
			Help: "Image uploads to object storage by result",
		},
		[]string{"result"},
	)

	FeedClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "newsdesk_feed_clients",
			Help: "Connected live feed websocket clients",
		},
	)
)

// Registry holds the newsdesk collectors. It is separate from the default registry so
// tests can build several servers in one process.
var Registry = prometheus.NewRegistry()

var objectIDSegment = regexp.MustCompile(`/[0-9a-f]{24}(/|$)`)

func init() {
	Registry.MustRegister(RequestDuration, RequestTotal, LoginAttempts, PostWrites, MediaUploads, FeedClients)
}

// NormalizePath replaces ObjectID path segments with {id} to bound label cardinality.
func NormalizePath(path string) string {
	return objectIDSegment.ReplaceAllString(path, "/{id}$1")
}

func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

func RecordLogin(result string) {
	LoginAttempts.WithLabelValues(result).Inc()
}

func RecordPostWrite(op string) {
	PostWrites.WithLabelValues(op).Inc()
}

func RecordUpload(ok bool) {
	if ok {
		MediaUploads.WithLabelValues("ok").Inc()
		return
	}
	MediaUploads.WithLabelValues("failed").Inc()
}
