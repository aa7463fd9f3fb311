// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mihaimyh/badgeapi/pkg/badges"
	"github.com/mihaimyh/badgeapi/pkg/discord"
)

const (
	defaultPort        = "3000"
	defaultHTTPTimeout = 10 * time.Second
	defaultLogLevel    = "info"
	defaultLogFormat   = "console"
)

// Config holds every setting the server reads at startup.
type Config struct {
	BotToken             string
	GuildIDs             []string
	WebhookURL           string
	Port                 string
	DiscordAPIBaseURL    string
	DiscordCDNBaseURL    string
	HTTPTimeout          time.Duration
	GuildScanConcurrency int
	RequireBotToken      bool
	LogLevel             string
	LogFormat            string
	CORSOrigins          []string
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment take precedence over the file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		BotToken:          strings.TrimSpace(os.Getenv("BOT_TOKEN")),
		WebhookURL:        strings.TrimSpace(os.Getenv("WEBHOOK_URL")),
		Port:              getEnv("PORT", defaultPort),
		DiscordAPIBaseURL: getEnv("DISCORD_API_BASE_URL", discord.DefaultBaseURL),
		DiscordCDNBaseURL: getEnv("DISCORD_CDN_BASE_URL", badges.DefaultCDNBaseURL),
		LogLevel:          strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		LogFormat:         strings.ToLower(getEnv("LOG_FORMAT", defaultLogFormat)),
		CORSOrigins:       splitList(os.Getenv("CORS_ORIGINS")),
	}

	// GUILD_ID is the single-guild form; GUILD_IDS appends more in order.
	cfg.GuildIDs = dedupe(append(splitList(os.Getenv("GUILD_ID")), splitList(os.Getenv("GUILD_IDS"))...))

	var err error
	if cfg.HTTPTimeout, err = getDuration("HTTP_TIMEOUT", defaultHTTPTimeout); err != nil {
		return nil, err
	}
	if cfg.GuildScanConcurrency, err = getInt("GUILD_SCAN_CONCURRENCY", 1); err != nil {
		return nil, err
	}
	if cfg.RequireBotToken, err = getBool("REQUIRE_BOT_TOKEN", false); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks formats. A missing bot token is only an error when RequireBotToken is set;
// otherwise lookups fail per request.
func (c *Config) Validate() error {
	if c.RequireBotToken && c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required when REQUIRE_BOT_TOKEN is set")
	}
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid PORT %q", c.Port)
	}
	for _, id := range c.GuildIDs {
		if !badges.ValidUserID(id) {
			return fmt.Errorf("invalid guild id %q", id)
		}
	}
	if c.WebhookURL != "" {
		if err := validateURL("WEBHOOK_URL", c.WebhookURL); err != nil {
			return err
		}
	}
	if err := validateURL("DISCORD_API_BASE_URL", c.DiscordAPIBaseURL); err != nil {
		return err
	}
	if err := validateURL("DISCORD_CDN_BASE_URL", c.DiscordCDNBaseURL); err != nil {
		return err
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.GuildScanConcurrency < 1 {
		return fmt.Errorf("GUILD_SCAN_CONCURRENCY must be at least 1")
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q (want console or json)", c.LogFormat)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid %s %q", name, raw)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	// Bare integers are seconds.
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	value := getEnv(key, "")
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
