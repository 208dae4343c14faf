package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds all Prometheus metrics. The job is one-shot, so metrics live
// on their own registry and are exported by pushing at the end of a run
// rather than by scrape.
type Metrics struct {
	registry *prometheus.Registry

	PagesListed       prometheus.Counter
	MessagesFetched   prometheus.Counter
	MessagesSkipped   prometheus.Counter
	MessagesProcessed prometheus.Counter
	PassFailures      prometheus.Counter
	PassDuration      prometheus.Histogram
}

// NewMetrics creates new Prometheus metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		PagesListed: factory.NewCounter(prometheus.CounterOpts{
			Name: "sender_stats_pages_listed_total",
			Help: "Total number of listing pages fetched",
		}),
		MessagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "sender_stats_messages_fetched_total",
			Help: "Total number of full messages fetched from the provider",
		}),
		MessagesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "sender_stats_messages_skipped_total",
			Help: "Total number of messages skipped because they were already counted",
		}),
		MessagesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "sender_stats_messages_processed_total",
			Help: "Total number of messages counted and marked seen",
		}),
		PassFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "sender_stats_pass_failures_total",
			Help: "Total number of failed ingestion passes",
		}),
		PassDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sender_stats_pass_duration_seconds",
			Help:    "Time spent on one ingestion pass",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}

// Push sends the collected metrics to a Pushgateway
func (m *Metrics) Push(gatewayURL, job string) error {
	return push.New(gatewayURL, job).Gatherer(m.registry).Push()
}
