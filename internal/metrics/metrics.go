package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the server's collectors. Each instance owns its registry so
// tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	TrackingSaves      *prometheus.CounterVec
	LiveSubscribers    *prometheus.GaugeVec
	RemindersSent      *prometheus.CounterVec
	ReportUploads      prometheus.Counter
	HTTPRequests       *prometheus.CounterVec
	HTTPRequestSeconds *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		TrackingSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kidneymate",
			Name:      "tracking_saves_total",
			Help:      "Daily tracking saves by result.",
		}, []string{"result"}),
		LiveSubscribers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "kidneymate",
			Name:      "live_subscribers",
			Help:      "Open live streams by kind.",
		}, []string{"kind"}),
		RemindersSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kidneymate",
			Name:      "reminders_sent_total",
			Help:      "Medication reminders by channel and result.",
		}, []string{"channel", "result"}),
		ReportUploads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kidneymate",
			Name:      "report_uploads_total",
			Help:      "Stored report uploads.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kidneymate",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status.",
		}, []string{"method", "status"}),
		HTTPRequestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kidneymate",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	m.Registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		m.TrackingSaves,
		m.LiveSubscribers,
		m.RemindersSent,
		m.ReportUploads,
		m.HTTPRequests,
		m.HTTPRequestSeconds,
	)

	return m
}
