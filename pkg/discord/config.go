package discord

import (
	"net/http"

	"github.com/mihaimyh/badgeapi/pkg/badges"
)

// Config configures a Client.
type Config struct {
	// BotToken authenticates requests. A leading "Bot " prefix is accepted and stripped.
	// An empty token leaves the client unconfigured; every call fails with ErrNotConfigured.
	BotToken string

	// BaseURL is the REST API root (default: DefaultBaseURL)
	BaseURL string

	// HTTPClient is an optional HTTP client for API calls.
	// If nil, a default client with 10s timeout will be used.
	HTTPClient *http.Client

	// UserAgent is sent with every request (default: DefaultUserAgent)
	UserAgent string

	// Metrics is an optional metrics collector (default: NoopMetrics)
	Metrics Metrics

	// Logger is used for structured logging (default: badges.NoopLogger)
	Logger badges.Logger
}
