package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   prometheus.CounterVec
	HTTPRequestDuration prometheus.HistogramVec

	// Share link metrics
	ShareLinksIssued   prometheus.Counter
	ShareLinksConsumed prometheus.Counter
	ShareLinksMissed   prometheus.Counter
	ShareLinksSwept    prometheus.Counter

	// Upload metrics
	UploadsStored  prometheus.CounterVec
	UploadBytes    prometheus.Counter
	UploadsDeleted prometheus.Counter

	// Chat metrics
	ChatMessagesSent prometheus.Counter

	// Rate limiting metrics
	RateLimitExceededTotal prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			ShareLinksIssued: promauto.NewCounter(prometheus.CounterOpts{
				Name: "share_links_issued_total",
				Help: "One-time share links issued",
			}),
			ShareLinksConsumed: promauto.NewCounter(prometheus.CounterOpts{
				Name: "share_links_consumed_total",
				Help: "One-time share links retrieved successfully",
			}),
			ShareLinksMissed: promauto.NewCounter(prometheus.CounterOpts{
				Name: "share_links_missed_total",
				Help: "Share link retrievals that found nothing (unknown, consumed or expired)",
			}),
			ShareLinksSwept: promauto.NewCounter(prometheus.CounterOpts{
				Name: "share_links_swept_total",
				Help: "Expired share links removed by the sweeper",
			}),
			UploadsStored: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "uploads_stored_total",
					Help: "Files written to blob storage",
				},
				[]string{"backend"},
			),
			UploadBytes: promauto.NewCounter(prometheus.CounterOpts{
				Name: "upload_bytes_total",
				Help: "Bytes written to blob storage",
			}),
			UploadsDeleted: promauto.NewCounter(prometheus.CounterOpts{
				Name: "uploads_deleted_total",
				Help: "Files removed from blob storage",
			}),
			ChatMessagesSent: promauto.NewCounter(prometheus.CounterOpts{
				Name: "chat_messages_sent_total",
				Help: "Chat messages accepted",
			}),
			RateLimitExceededTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Requests rejected by the rate limiter",
				},
				[]string{"endpoint"},
			),
		}
	})
	return instance
}

// Get returns the metrics instance, initializing it if needed
func Get() *Metrics {
	return Initialize()
}
