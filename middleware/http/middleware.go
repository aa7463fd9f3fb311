// Package http provides net/http middleware that resolves a badge profile
package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/mihaimyh/badgeapi/pkg/api"
	"github.com/mihaimyh/badgeapi/pkg/badges"
)

// UserIDExtractor extracts the looked-up user id from an HTTP request
type UserIDExtractor func(r *http.Request) string

// Config holds middleware configuration
type Config struct {
	// Service resolves profiles (required)
	Service api.Lookuper

	// GetUserID extracts the user id to look up (required)
	GetUserID UserIDExtractor

	// OnInvalidID is called when the user id is not a decimal snowflake
	// If nil, returns 400 {"error":"Invalid user id"}
	OnInvalidID func(w http.ResponseWriter, r *http.Request)

	// OnError is called for any other lookup failure
	// If nil, uses api.WriteError
	OnError func(w http.ResponseWriter, r *http.Request, err error)
}

// ContextKey is a type for context keys
type ContextKey string

const (
	// ProfileKey is the context key for the resolved profile
	ProfileKey ContextKey = "badges:profile"
)

// Middleware creates an HTTP middleware that resolves the profile before the handler runs
func Middleware(config Config) func(http.Handler) http.Handler {
	// Validate required configuration at startup (fail fast)
	if config.Service == nil {
		panic("badgeapi/http: Config.Service is required")
	}
	if config.GetUserID == nil {
		panic("badgeapi/http: Config.GetUserID is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			profile, err := config.Service.Lookup(r.Context(), config.GetUserID(r))
			if err != nil {
				switch {
				case errors.Is(err, badges.ErrInvalidUserID) && config.OnInvalidID != nil:
					config.OnInvalidID(w, r)
				case config.OnError != nil:
					config.OnError(w, r, err)
				default:
					_ = api.WriteError(w, err)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithProfile(r.Context(), profile)))
		})
	}
}

// HandlerFunc creates an HTTP middleware that resolves the profile (HandlerFunc version)
func HandlerFunc(config Config) func(http.HandlerFunc) http.HandlerFunc {
	middleware := Middleware(config)
	return func(next http.HandlerFunc) http.HandlerFunc {
		return middleware(next).ServeHTTP
	}
}

// WithProfile adds a profile to the context
func WithProfile(ctx context.Context, profile *badges.Profile) context.Context {
	return context.WithValue(ctx, ProfileKey, profile)
}

// ProfileFromContext returns the profile stored by Middleware
func ProfileFromContext(ctx context.Context) (*badges.Profile, bool) {
	profile, ok := ctx.Value(ProfileKey).(*badges.Profile)
	return profile, ok && profile != nil
}

// Common extractors for convenience

// FromPathValue returns an UserIDExtractor that reads a net/http pattern wildcard
func FromPathValue(name string) UserIDExtractor {
	return func(r *http.Request) string {
		return r.PathValue(name)
	}
}

// FromHeader returns an UserIDExtractor that gets the user id from a header
func FromHeader(headerName string) UserIDExtractor {
	return func(r *http.Request) string {
		return r.Header.Get(headerName)
	}
}

// FromQuery returns an UserIDExtractor that gets the user id from a query parameter
func FromQuery(name string) UserIDExtractor {
	return func(r *http.Request) string {
		return r.URL.Query().Get(name)
	}
}
