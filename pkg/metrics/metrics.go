package metrics

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	// HTTP and gRPC requests
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requests_total",
			Help: "Total number of requests",
		},
		[]string{"service", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method"},
	)

	DatabaseConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "database_connections",
			Help: "Current database connections",
		},
		[]string{"service", "status"},
	)

	KafkaMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_total",
			Help: "Total number of Kafka messages",
		},
		[]string{"service", "topic", "status"},
	)

	// Video lifecycle transitions, e.g. created, uploaded, approved.
	VideoTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_transitions_total",
			Help: "Total number of video lifecycle transitions",
		},
		[]string{"service", "transition"},
	)

	CoverUploadBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cover_upload_bytes",
			Help:    "Size of cover images proxied through the server",
			Buckets: prometheus.ExponentialBuckets(16<<10, 4, 7),
		},
	)

	RateLimitedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"service", "scope"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		DatabaseConnections,
		KafkaMessagesTotal,
		VideoTransitions,
		CoverUploadBytes,
		RateLimitedTotal,
	)
}

// StartMetricsServer serves /metrics on its own port. The returned server is
// shut down by the caller.
func StartMetricsServer(port string, log logrus.FieldLogger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("metrics server stopped")
		}
	}()
	return srv
}

func RecordRequest(service, method, status string, duration time.Duration) {
	RequestsTotal.WithLabelValues(service, method, status).Inc()
	RequestDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

func RecordTransition(service, transition string) {
	VideoTransitions.WithLabelValues(service, transition).Inc()
}

func RecordKafkaMessage(service, topic string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	KafkaMessagesTotal.WithLabelValues(service, topic, status).Inc()
}

func RecordDBStats(service string, stats sql.DBStats) {
	DatabaseConnections.WithLabelValues(service, "open").Set(float64(stats.OpenConnections))
	DatabaseConnections.WithLabelValues(service, "in_use").Set(float64(stats.InUse))
	DatabaseConnections.WithLabelValues(service, "idle").Set(float64(stats.Idle))
}
