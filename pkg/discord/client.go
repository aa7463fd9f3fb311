package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mihaimyh/badgeapi/pkg/badges"
)

const (
	// DefaultBaseURL is the Discord REST API v10 root.
	DefaultBaseURL = "https://discord.com/api/v10"

	// DefaultUserAgent identifies the client to Discord.
	DefaultUserAgent = "DiscordBot (https://github.com/mihaimyh/badgeapi, 1.0)"

	defaultHTTPTimeout = 10 * time.Second
	maxResponseBytes   = 1 << 20

	endpointUser        = "/users/{id}"
	endpointGuildMember = "/guilds/{guild_id}/members/{id}"
)

// Client is a minimal Discord REST client authenticated as a bot.
// It implements badges.UserSource.
type Client struct {
	token      string
	baseURL    string
	userAgent  string
	httpClient *http.Client
	metrics    Metrics
	logger     badges.Logger
}

var _ badges.UserSource = (*Client)(nil)

// NewClient creates a new Discord client
func NewClient(config Config) *Client {
	token := normalizeToken(config.BotToken)

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: defaultHTTPTimeout,
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	metrics := config.Metrics
	if metrics == nil {
		metrics = &NoopMetrics{}
	}

	logger := config.Logger
	if logger == nil {
		logger = &badges.NoopLogger{}
	}

	return &Client{
		token:      token,
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		metrics:    metrics,
		logger:     logger,
	}
}

// normalizeToken strips surrounding space and an optional "Bot" scheme.
// A value holding only the scheme yields an empty token.
func normalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if strings.EqualFold(token, "bot") {
		return ""
	}
	if len(token) > len("bot ") && strings.EqualFold(token[:len("bot ")], "bot ") {
		token = strings.TrimSpace(token[len("bot "):])
	}
	return token
}

// Configured reports whether a bot token is set.
func (c *Client) Configured() bool {
	return c.token != ""
}

// GetUser fetches a user object.
func (c *Client) GetUser(ctx context.Context, userID string) (*badges.User, error) {
	var user badges.User
	path := "/users/" + url.PathEscape(userID)
	if err := c.get(ctx, endpointUser, path, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetGuildMember fetches a guild member object. A 404 is reported as ErrMemberNotFound.
func (c *Client) GetGuildMember(ctx context.Context, guildID, userID string) (*badges.GuildMember, error) {
	var member badges.GuildMember
	path := fmt.Sprintf("/guilds/%s/members/%s", url.PathEscape(guildID), url.PathEscape(userID))
	if err := c.get(ctx, endpointGuildMember, path, &member); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("guild %s: %w", guildID, ErrMemberNotFound)
		}
		return nil, err
	}
	return &member, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, out interface{}) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	res, err := c.httpClient.Do(req)
	c.metrics.RecordAPICallDuration(endpoint, time.Since(start))
	if err != nil {
		c.metrics.RecordAPICall(endpoint, "error")
		return fmt.Errorf("request %s failed: %w", endpoint, err)
	}
	defer res.Body.Close()
	c.metrics.RecordAPICall(endpoint, strconv.Itoa(res.StatusCode))

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		c.logger.Debug("discord API returned an error",
			badges.Field{Key: "endpoint", Value: endpoint},
			badges.Field{Key: "status", Value: res.StatusCode})
		return &APIError{Endpoint: endpoint, StatusCode: res.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
