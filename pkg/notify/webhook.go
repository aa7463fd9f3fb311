// Package notify delivers lookup audit events to a Discord webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mihaimyh/badgeapi/pkg/badges"
)

const (
	defaultHTTPTimeout = 5 * time.Second
	defaultUsername    = "Badge Lookup"
	embedColor         = 0x5865F2
	maxFieldValue      = 1024
)

// Config configures a Webhook notifier.
type Config struct {
	// URL is the Discord webhook URL. An empty URL disables notifications.
	URL string

	// Username overrides the webhook display name (default: "Badge Lookup")
	Username string

	// HTTPClient is an optional HTTP client (default: 5s timeout)
	HTTPClient *http.Client

	// NewID generates event ids (default: uuid.NewString)
	NewID func() string
}

// Webhook posts one embed per lookup.
type Webhook struct {
	url        string
	username   string
	httpClient *http.Client
	newID      func() string
}

// New returns a Webhook notifier, or a no-op notifier when no URL is configured.
func New(config Config) badges.Notifier {
	url := strings.TrimSpace(config.URL)
	if url == "" {
		return &badges.NoopNotifier{}
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	username := config.Username
	if username == "" {
		username = defaultUsername
	}
	newID := config.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	return &Webhook{
		url:        url,
		username:   username,
		httpClient: httpClient,
		newID:      newID,
	}
}

type payload struct {
	Username string  `json:"username"`
	Embeds   []embed `json:"embeds"`
}

type embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color"`
	Fields      []embedField `json:"fields,omitempty"`
	Timestamp   string       `json:"timestamp"`
	Footer      *embedFooter `json:"footer,omitempty"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type embedFooter struct {
	Text string `json:"text"`
}

// Notify implements badges.Notifier.
func (w *Webhook) Notify(ctx context.Context, event badges.LookupEvent) error {
	body, err := json.Marshal(w.buildPayload(event))
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post webhook: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("webhook returned status %d: %s", res.StatusCode, string(detail))
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

func (w *Webhook) buildPayload(event badges.LookupEvent) payload {
	e := embed{
		Title:     "User lookup " + event.UserID,
		Color:     embedColor,
		Timestamp: event.LookedUpAt.UTC().Format(time.RFC3339),
		Footer:    &embedFooter{Text: "event " + w.newID()},
	}

	if p := event.Profile; p != nil {
		e.Description = displayName(p)
		badgeList := "none"
		if len(p.Badges) > 0 {
			badgeList = strings.Join(p.Badges, ", ")
		}
		e.Fields = append(e.Fields,
			embedField{Name: "Badges (" + strconv.Itoa(p.BadgeCount) + ")", Value: truncate(badgeList)},
			embedField{Name: "Nitro", Value: nitroSummary(p.Nitro), Inline: true},
			embedField{Name: "Booster", Value: boosterSummary(p.Booster), Inline: true},
			embedField{Name: "Raw flags", Value: strconv.FormatUint(p.RawPublicFlags, 10), Inline: true},
		)
	}

	return payload{Username: w.username, Embeds: []embed{e}}
}

func displayName(p *badges.Profile) string {
	if p.GlobalName != nil && *p.GlobalName != "" {
		return *p.GlobalName + " (@" + p.Username + ")"
	}
	return "@" + p.Username
}

func nitroSummary(n badges.NitroStatus) string {
	if n.Tier == nil {
		return "none"
	}
	return n.Tier.Tier + " (" + n.Tier.Method() + ")"
}

func boosterSummary(b badges.BoosterStatus) string {
	if !b.IsBooster || b.Level == nil {
		return "no"
	}
	return *b.Level
}

// truncate caps s at maxFieldValue runes, the unit Discord counts embed limits in.
func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxFieldValue {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxFieldValue-3]) + "..."
}
