package badges

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidUserID is returned when a user identifier is not a decimal snowflake
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrNotConfigured is returned when the upstream bot credential is missing
	ErrNotConfigured = errors.New("bot token not configured")

	// ErrUpstream is the sentinel wrapped by every UpstreamError
	ErrUpstream = errors.New("upstream API error")

	// ErrMemberNotFound is returned by a UserSource when the user is not a member of a guild
	ErrMemberNotFound = errors.New("guild member not found")

	// ErrInvalidBitfield is returned when a flags value cannot be parsed as an unsigned 64-bit integer
	ErrInvalidBitfield = errors.New("invalid bitfield")

	// ErrInvalidTimestamp is returned when a subscription timestamp cannot be parsed
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrInvalidTable is returned when a flag or tier table violates its invariants
	ErrInvalidTable = errors.New("invalid table")
)

// UpstreamError carries a non-2xx response from the upstream API so that
// callers can propagate the original status code and body.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream API error: %s returned status %d", e.Endpoint, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}
