package discord

import "github.com/mihaimyh/badgeapi/pkg/badges"

// The client reports failures with the badges error vocabulary so callers can
// classify them without importing this package.
var (
	// ErrAPIError is wrapped by every non-2xx response
	ErrAPIError = badges.ErrUpstream

	// ErrMemberNotFound is returned when the user is not a member of the guild
	ErrMemberNotFound = badges.ErrMemberNotFound

	// ErrNotConfigured is returned when no bot token is set
	ErrNotConfigured = badges.ErrNotConfigured
)

// APIError carries the upstream status and raw body of a failed call.
type APIError = badges.UpstreamError
