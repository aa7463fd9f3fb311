// Package fiber provides Fiber middleware that resolves a badge profile
package fiber

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/mihaimyh/badgeapi/pkg/api"
	"github.com/mihaimyh/badgeapi/pkg/badges"
)

// ProfileKey is the Fiber Locals key for the resolved profile
const ProfileKey = "badges:profile"

// UserIDExtractor extracts the looked-up user id from a Fiber context
type UserIDExtractor func(c *fiber.Ctx) string

// Config holds middleware configuration
type Config struct {
	// Service resolves profiles (required)
	Service api.Lookuper

	// GetUserID extracts the user id to look up (required)
	GetUserID UserIDExtractor

	// OnInvalidID is called when the user id is not a decimal snowflake
	// If nil, returns 400 {"error":"Invalid user id"}
	OnInvalidID func(c *fiber.Ctx) error

	// OnError is called for any other lookup failure
	// If nil, maps the error with api.ErrorStatus
	OnError func(c *fiber.Ctx, err error) error
}

// Middleware creates a Fiber middleware that resolves the profile before the handler runs
func Middleware(cfg Config) fiber.Handler {
	// Validate required configuration at startup (fail fast)
	if cfg.Service == nil {
		panic("badgeapi/fiber: Config.Service is required")
	}
	if cfg.GetUserID == nil {
		panic("badgeapi/fiber: Config.GetUserID is required")
	}

	return func(c *fiber.Ctx) error {
		// Fiber reuses its buffers; the id may outlive the handler in logs
		userID := utils.CopyString(cfg.GetUserID(c))

		profile, err := cfg.Service.Lookup(c.UserContext(), userID)
		if err != nil {
			if errors.Is(err, badges.ErrInvalidUserID) && cfg.OnInvalidID != nil {
				return cfg.OnInvalidID(c)
			}
			if cfg.OnError != nil {
				return cfg.OnError(c, err)
			}
			return defaultError(c, err)
		}

		c.Locals(ProfileKey, profile)
		return c.Next()
	}
}

func defaultError(c *fiber.Ctx, err error) error {
	status, body := api.ErrorStatus(err)
	return c.Status(status).JSON(body)
}

// GetProfile returns the profile stored by Middleware
func GetProfile(c *fiber.Ctx) (*badges.Profile, bool) {
	profile, ok := c.Locals(ProfileKey).(*badges.Profile)
	return profile, ok
}

// Convenience extractors for User ID

// FromParam returns a UserIDExtractor that gets the user id from a route parameter
func FromParam(paramName string) UserIDExtractor {
	return func(c *fiber.Ctx) string {
		return c.Params(paramName)
	}
}

// FromHeader returns a UserIDExtractor that gets the user id from a header
// Fiber v2 uses c.Get() for headers (not c.GetHeader())
func FromHeader(headerName string) UserIDExtractor {
	return func(c *fiber.Ctx) string {
		return c.Get(headerName)
	}
}

// FromQuery returns a UserIDExtractor that gets the user id from a query parameter
func FromQuery(queryName string) UserIDExtractor {
	return func(c *fiber.Ctx) string {
		return c.Query(queryName)
	}
}
