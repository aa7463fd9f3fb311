package discord

import "time"

// Metrics defines the interface for tracking outbound Discord API calls.
type Metrics interface {
	// RecordAPICall records an API call.
	// endpoint: the route template (e.g., "/users/{id}")
	// status: HTTP status code as string, or "error" on transport failure
	RecordAPICall(endpoint, status string)

	// RecordAPICallDuration records how long an API call took.
	RecordAPICallDuration(endpoint string, duration time.Duration)
}

// NoopMetrics is a no-op implementation of the Metrics interface.
type NoopMetrics struct{}

func (n *NoopMetrics) RecordAPICall(_, _ string)                      {}
func (n *NoopMetrics) RecordAPICallDuration(_ string, _ time.Duration) {}
