package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mihaimyh/badgeapi/internal/config"
)

type fakeDiscord struct {
	server     *httptest.Server
	userCalls  atomic.Int32
	guildCalls atomic.Int32
	webhooks   atomic.Int32
}

// newFakeDiscord serves users and guild members plus a webhook sink.
func newFakeDiscord(t *testing.T, premiumSince string) *fakeDiscord {
	t.Helper()
	f := &fakeDiscord{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.userCalls.Add(1)
		if r.Header.Get("Authorization") != "Bot test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message": "401: Unauthorized", "code": 0}`))
			return
		}
		id := r.PathValue("id")
		if id == "404" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "Unknown User", "code": 10013}`))
			return
		}
		flags := "1"
		if id == "456" {
			flags = "512"
		}
		_, _ = fmt.Fprintf(w, `{"id":%q,"username":"user%s","discriminator":"0","avatar":null,"public_flags":%s}`, id, id, flags)
	})
	mux.HandleFunc("GET /guilds/{gid}/members/{uid}", func(w http.ResponseWriter, r *http.Request) {
		f.guildCalls.Add(1)
		if r.PathValue("uid") != "456" || premiumSince == "" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "Unknown Member", "code": 10007}`))
			return
		}
		_, _ = fmt.Fprintf(w, `{"joined_at":"2020-01-01T00:00:00+00:00","premium_since":%q}`, premiumSince)
	})
	mux.HandleFunc("POST /webhook", func(w http.ResponseWriter, _ *http.Request) {
		f.webhooks.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func newTestConfig(f *fakeDiscord) *config.Config {
	return &config.Config{
		BotToken:             "Bot test-token",
		GuildIDs:             []string{"900"},
		WebhookURL:           f.server.URL + "/webhook",
		Port:                 "3000",
		DiscordAPIBaseURL:    f.server.URL,
		DiscordCDNBaseURL:    "https://cdn.discordapp.com",
		HTTPTimeout:          2 * time.Second,
		GuildScanConcurrency: 1,
		LogLevel:             "info",
		LogFormat:            "json",
	}
}

func newTestServer(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	s, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	return s.Handler()
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
	var body map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestServer_UserStaffOnly(t *testing.T) {
	f := newFakeDiscord(t, "")
	h := newTestServer(t, newTestConfig(f))

	w, body := get(t, h, "/user/123")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "123", body["id"])
	assert.Equal(t, []interface{}{"Discord Employee"}, body["badges"])
	assert.Equal(t, float64(1), body["badge_count"])
	assert.Equal(t, float64(1), body["raw_public_flags"])
	assert.Nil(t, body["avatar_url"])
	assert.Equal(t, "https://cdn.discordapp.com/embed/avatars/0.png", body["default_avatar_url"])

	nitro := body["nitro"].(map[string]interface{})
	assert.Equal(t, false, nitro["has_nitro"])
	assert.Nil(t, nitro["tier"])
	assert.Equal(t, int32(1), f.webhooks.Load())
}

func TestServer_InvalidID(t *testing.T) {
	f := newFakeDiscord(t, "")
	h := newTestServer(t, newTestConfig(f))

	w, body := get(t, h, "/user/abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid user id", body["error"])
	assert.Equal(t, int32(0), f.userCalls.Load())
}

func TestServer_MissingToken(t *testing.T) {
	f := newFakeDiscord(t, "")
	cfg := newTestConfig(f)
	cfg.BotToken = ""
	h := newTestServer(t, cfg)

	w, body := get(t, h, "/user/123")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "BOT_TOKEN not configured on server", body["error"])
	assert.Equal(t, int32(0), f.userCalls.Load(), "no upstream call without a token")
}

func TestServer_RequireTokenFailsStartup(t *testing.T) {
	f := newFakeDiscord(t, "")
	cfg := newTestConfig(f)
	cfg.BotToken = ""
	cfg.RequireBotToken = true

	_, err := New(cfg, zerolog.Nop())
	assert.Error(t, err)
}

func TestServer_UpstreamError(t *testing.T) {
	f := newFakeDiscord(t, "")
	h := newTestServer(t, newTestConfig(f))

	w, body := get(t, h, "/user/404")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Discord API error", body["error"])
	assert.Contains(t, body["detail"], "Unknown User")
	assert.Equal(t, int32(0), f.webhooks.Load())
}

func TestServer_NitroAndBoosterViews(t *testing.T) {
	since := time.Now().UTC().Add(-40 * 24 * time.Hour).Format(time.RFC3339)
	f := newFakeDiscord(t, since)
	h := newTestServer(t, newTestConfig(f))

	w, body := get(t, h, "/user/456/nitro")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "456", body["id"])
	assert.Equal(t, true, body["has_nitro"])
	tier := body["tier"].(map[string]interface{})
	assert.Equal(t, "Nitro Bronze", tier["tier_label"])
	assert.Equal(t, true, tier["exact"])
	milestone := body["next_milestone"].(map[string]interface{})
	assert.Equal(t, float64(3), milestone["months"])

	w, body = get(t, h, "/user/456/booster")
	require.Equal(t, http.StatusOK, w.Code)
	booster := body["booster"].(map[string]interface{})
	assert.Equal(t, true, booster["is_booster"])
	assert.Equal(t, "900", booster["guild_id"])
	assert.Equal(t, "Server Booster (1 Month)", booster["level"])

	w, body = get(t, h, "/user/456")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{"Early Supporter", "Nitro Bronze"}, body["badges"])
}

func TestServer_RootHealthAndMetrics(t *testing.T) {
	f := newFakeDiscord(t, "")
	h := newTestServer(t, newTestConfig(f))

	w, _ := get(t, h, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/user/:id")

	w, body := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])

	get(t, h, "/user/123")
	w, _ = get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "badgeapi_lookups_total")
	assert.Contains(t, w.Body.String(), "badgeapi_discord_api_calls_total")
}

func TestServer_CORS(t *testing.T) {
	f := newFakeDiscord(t, "")
	cfg := newTestConfig(f)
	cfg.CORSOrigins = []string{"https://app.example"}
	h := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_HealthDuringShutdown(t *testing.T) {
	f := newFakeDiscord(t, "")
	s, err := New(newTestConfig(f), zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, s.Shutdown(context.Background()))
	w, body := get(t, s.Handler(), "/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "shutting_down", body["status"])
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	f := newFakeDiscord(t, "")
	cfg := newTestConfig(f)
	cfg.Port = "0"
	s, err := New(cfg, zerolog.Nop())
	require.Error(t, err, "port 0 is rejected by validation")
	assert.Nil(t, s)

	cfg.Port = "38471"
	s, err = New(cfg, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWriteTimeout_CoversSlowestLookup(t *testing.T) {
	guilds := make([]string, 12)
	for i := range guilds {
		guilds[i] = fmt.Sprintf("%d", 900+i)
	}

	tests := []struct {
		name        string
		guilds      []string
		concurrency int
		want        time.Duration
	}{
		{"no guilds", nil, 1, 2*time.Second + writeTimeoutMargin},
		{"sequential scan", guilds, 1, 14*time.Second + writeTimeoutMargin},
		{"parallel scan", guilds, 4, 5*time.Second + writeTimeoutMargin},
		{"uneven rounds", guilds, 5, 5*time.Second + writeTimeoutMargin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeDiscord(t, "")
			cfg := newTestConfig(f)
			cfg.HTTPTimeout = time.Second
			cfg.GuildIDs = tt.guilds
			cfg.GuildScanConcurrency = tt.concurrency

			s, err := New(cfg, zerolog.Nop())
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.httpServer.WriteTimeout)
		})
	}
}

func TestNewLogger(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, NewLogger("debug", "json").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, NewLogger("bogus", "console").GetLevel())
}
