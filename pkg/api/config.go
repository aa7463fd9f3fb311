package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mihaimyh/badgeapi/pkg/badges"
)

// Lookuper resolves a user id to a derived profile. *badges.Service implements it.
type Lookuper interface {
	Lookup(ctx context.Context, userID string) (*badges.Profile, error)
}

// Config holds configuration for the user API handler
type Config struct {
	// Service resolves profiles (required)
	Service Lookuper

	// GetUserID extracts the path user id from the request (required)
	GetUserID func(*http.Request) string

	// OnError handles lookup errors.
	// If nil, errors are mapped by WriteError.
	OnError func(http.ResponseWriter, *http.Request, error)

	// Logger records errors whose detail is not returned to clients (default: NoopLogger)
	Logger badges.Logger
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Service == nil {
		return fmt.Errorf("service is required")
	}
	if c.GetUserID == nil {
		return fmt.Errorf("getUserID is required")
	}
	return nil
}

// NewHandler creates a new user API handler with the given configuration
func NewHandler(config Config) (*Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if config.Logger == nil {
		config.Logger = &badges.NoopLogger{}
	}
	return &Handler{
		config: config,
	}, nil
}

// Helper functions for common user id extraction patterns

// FromPathValue returns a GetUserID function that reads a net/http pattern wildcard
func FromPathValue(name string) func(*http.Request) string {
	return func(r *http.Request) string {
		return r.PathValue(name)
	}
}

// FromChiParam returns a GetUserID function that reads a chi URL parameter
func FromChiParam(name string) func(*http.Request) string {
	return func(r *http.Request) string {
		return chi.URLParam(r, name)
	}
}

// FromContext returns a GetUserID function that extracts the user id from request context
func FromContext(key interface{}) func(*http.Request) string {
	return func(r *http.Request) string {
		if userID, ok := r.Context().Value(key).(string); ok {
			return userID
		}
		return ""
	}
}
