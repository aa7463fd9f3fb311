package prommetrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics implements badges.Metrics using Prometheus.
type Metrics struct {
	lookupsTotal        *prometheus.CounterVec
	lookupDuration      *prometheus.HistogramVec
	tierInferencesTotal *prometheus.CounterVec
	guildScansTotal     *prometheus.CounterVec
	guildsChecked       prometheus.Histogram
	notificationsTotal  *prometheus.CounterVec
}

// NewMetrics creates a new Prometheus metrics implementation.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		lookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Total number of profile lookups by outcome.",
		}, []string{"outcome"}),

		lookupDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Latency of profile lookups including upstream calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),

		tierInferencesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tier_inferences_total",
			Help:      "Total number of tier inferences by method and tier.",
		}, []string{"method", "tier"}),

		guildScansTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guild_scans_total",
			Help:      "Total number of guild scans by result.",
		}, []string{"hit"}),

		guildsChecked: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "guild_scan_guilds_checked",
			Help:      "Number of guilds queried per scan.",
			Buckets:   []float64{1, 2, 3, 5, 10, 25},
		}),

		notificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Total number of audit notification attempts.",
		}, []string{"success"}),
	}
}

func (m *Metrics) RecordLookup(outcome string, duration time.Duration) {
	m.lookupsTotal.WithLabelValues(outcome).Inc()
	m.lookupDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *Metrics) RecordTierInference(method, tier string) {
	m.tierInferencesTotal.WithLabelValues(method, tier).Inc()
}

func (m *Metrics) RecordGuildScan(guildsChecked int, hit bool) {
	m.guildScansTotal.WithLabelValues(strconv.FormatBool(hit)).Inc()
	m.guildsChecked.Observe(float64(guildsChecked))
}

func (m *Metrics) RecordNotification(err error) {
	m.notificationsTotal.WithLabelValues(strconv.FormatBool(err == nil)).Inc()
}

// DefaultMetrics returns a Metrics implementation using the default Prometheus registerer.
func DefaultMetrics(namespace string) *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer, namespace)
}
