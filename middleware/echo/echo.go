// Package echo provides Echo middleware that resolves a badge profile
package echo

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/mihaimyh/badgeapi/pkg/api"
	"github.com/mihaimyh/badgeapi/pkg/badges"
)

// ProfileKey is the Echo context key for the resolved profile
const ProfileKey = "badges:profile"

// UserIDExtractor extracts the looked-up user id from an Echo context
type UserIDExtractor func(c echo.Context) string

// Config holds middleware configuration
type Config struct {
	// Service resolves profiles (required)
	Service api.Lookuper

	// GetUserID extracts the user id to look up (required)
	GetUserID UserIDExtractor

	// OnInvalidID is called when the user id is not a decimal snowflake
	// If nil, returns 400 {"error":"Invalid user id"}
	OnInvalidID func(c echo.Context) error

	// OnError is called for any other lookup failure
	// If nil, maps the error with api.ErrorStatus
	OnError func(c echo.Context, err error) error
}

// Middleware creates an Echo middleware that resolves the profile before the handler runs
func Middleware(cfg Config) echo.MiddlewareFunc {
	// Validate required configuration at startup (fail fast)
	if cfg.Service == nil {
		panic("badgeapi/echo: Config.Service is required")
	}
	if cfg.GetUserID == nil {
		panic("badgeapi/echo: Config.GetUserID is required")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			profile, err := cfg.Service.Lookup(c.Request().Context(), cfg.GetUserID(c))
			if err != nil {
				if errors.Is(err, badges.ErrInvalidUserID) && cfg.OnInvalidID != nil {
					return cfg.OnInvalidID(c)
				}
				if cfg.OnError != nil {
					return cfg.OnError(c, err)
				}
				return defaultError(c, err)
			}

			c.Set(ProfileKey, profile)
			return next(c)
		}
	}
}

func defaultError(c echo.Context, err error) error {
	status, body := api.ErrorStatus(err)
	return c.JSON(status, body)
}

// GetProfile returns the profile stored by Middleware
func GetProfile(c echo.Context) (*badges.Profile, bool) {
	profile, ok := c.Get(ProfileKey).(*badges.Profile)
	return profile, ok
}

// Convenience extractors for User ID

// FromParam returns a UserIDExtractor that gets the user id from a route parameter
func FromParam(paramName string) UserIDExtractor {
	return func(c echo.Context) string {
		return c.Param(paramName)
	}
}

// FromHeader returns a UserIDExtractor that gets the user id from a header
func FromHeader(headerName string) UserIDExtractor {
	return func(c echo.Context) string {
		return c.Request().Header.Get(headerName)
	}
}

// FromQuery returns a UserIDExtractor that gets the user id from a query parameter
func FromQuery(queryName string) UserIDExtractor {
	return func(c echo.Context) string {
		return c.QueryParam(queryName)
	}
}
