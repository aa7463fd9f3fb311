// Package gin provides Gin middleware that resolves a badge profile
package gin

import (
	"errors"

	gongin "github.com/gin-gonic/gin"

	"github.com/mihaimyh/badgeapi/pkg/api"
	"github.com/mihaimyh/badgeapi/pkg/badges"
)

// ProfileKey is the Gin context key for the resolved profile
const ProfileKey = "badges:profile"

// UserIDExtractor extracts the looked-up user id from a Gin context
type UserIDExtractor func(c *gongin.Context) string

// Config holds middleware configuration
type Config struct {
	// Service resolves profiles (required)
	Service api.Lookuper

	// GetUserID extracts the user id to look up (required)
	GetUserID UserIDExtractor

	// OnInvalidID is called when the user id is not a decimal snowflake
	// If nil, returns 400 {"error":"Invalid user id"}
	OnInvalidID func(c *gongin.Context)

	// OnError is called for any other lookup failure
	// If nil, maps the error with api.ErrorStatus
	OnError func(c *gongin.Context, err error)
}

// Middleware creates a Gin middleware that resolves the profile before the handler runs
func Middleware(cfg Config) gongin.HandlerFunc {
	// Validate required configuration at startup (fail fast)
	if cfg.Service == nil {
		panic("badgeapi/gin: Config.Service is required")
	}
	if cfg.GetUserID == nil {
		panic("badgeapi/gin: Config.GetUserID is required")
	}

	return func(c *gongin.Context) {
		profile, err := cfg.Service.Lookup(c.Request.Context(), cfg.GetUserID(c))
		if err != nil {
			switch {
			case errors.Is(err, badges.ErrInvalidUserID) && cfg.OnInvalidID != nil:
				cfg.OnInvalidID(c)
			case cfg.OnError != nil:
				cfg.OnError(c, err)
			default:
				defaultError(c, err)
			}
			c.Abort()
			return
		}

		c.Set(ProfileKey, profile)
		c.Next()
	}
}

func defaultError(c *gongin.Context, err error) {
	status, body := api.ErrorStatus(err)
	c.JSON(status, body)
}

// GetProfile returns the profile stored by Middleware
func GetProfile(c *gongin.Context) (*badges.Profile, bool) {
	val, ok := c.Get(ProfileKey)
	if !ok {
		return nil, false
	}
	profile, ok := val.(*badges.Profile)
	return profile, ok
}

// Common extractors for convenience

// FromParam returns an UserIDExtractor that gets the user id from a route parameter
func FromParam(paramName string) UserIDExtractor {
	return func(c *gongin.Context) string {
		return c.Param(paramName)
	}
}

// FromHeader returns an UserIDExtractor that gets the user id from a header
func FromHeader(headerName string) UserIDExtractor {
	return func(c *gongin.Context) string {
		return c.GetHeader(headerName)
	}
}

// FromQuery returns an UserIDExtractor that gets the user id from a query parameter
func FromQuery(queryName string) UserIDExtractor {
	return func(c *gongin.Context) string {
		return c.Query(queryName)
	}
}
