package badges

import "time"

// Lookup outcomes reported to Metrics.RecordLookup.
const (
	OutcomeSuccess       = "success"
	OutcomeInvalidID     = "invalid_id"
	OutcomeNotConfigured = "not_configured"
	OutcomeUpstreamError = "upstream_error"
	OutcomeError         = "error"
)

// Metrics defines the interface for tracking profile lookups and derivations.
type Metrics interface {
	// RecordLookup records a completed lookup with its outcome (e.g. "success", "upstream_error").
	RecordLookup(outcome string, duration time.Duration)

	// RecordTierInference records how a tier was derived: "exact", "estimated" or "none".
	RecordTierInference(method, tier string)

	// RecordGuildScan records a guild scan; hit is true when a usable subscription timestamp was found.
	RecordGuildScan(guildsChecked int, hit bool)

	// RecordNotification records a best-effort audit notification attempt.
	RecordNotification(err error)
}

// NoopMetrics is a no-op implementation of the Metrics interface.
type NoopMetrics struct{}

func (n *NoopMetrics) RecordLookup(outcome string, duration time.Duration) {}
func (n *NoopMetrics) RecordTierInference(method, tier string)             {}
func (n *NoopMetrics) RecordGuildScan(guildsChecked int, hit bool)         {}
func (n *NoopMetrics) RecordNotification(err error)                        {}
