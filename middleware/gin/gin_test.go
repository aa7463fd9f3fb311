package gin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	gongin "github.com/gin-gonic/gin"

	"github.com/mihaimyh/badgeapi/pkg/badges"
)

type stubService struct {
	err error
}

func (s *stubService) Lookup(_ context.Context, userID string) (*badges.Profile, error) {
	if !badges.ValidUserID(userID) {
		return nil, badges.ErrInvalidUserID
	}
	if s.err != nil {
		return nil, s.err
	}
	return &badges.Profile{ID: userID, Badges: []string{"Early Supporter"}, BadgeCount: 1}, nil
}

func setupRouter(cfg Config) *gongin.Engine {
	gongin.SetMode(gongin.TestMode)
	r := gongin.New()
	r.GET("/user/:id", Middleware(cfg), func(c *gongin.Context) {
		profile, ok := GetProfile(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, profile)
	})
	return r
}

func TestMiddleware_Success(t *testing.T) {
	r := setupRouter(Config{Service: &stubService{}, GetUserID: FromParam("id")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user/123", http.NoBody))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var profile badges.Profile
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if profile.ID != "123" || profile.BadgeCount != 1 {
		t.Errorf("Unexpected profile %+v", profile)
	}
}

func TestMiddleware_InvalidID(t *testing.T) {
	r := setupRouter(Config{Service: &stubService{}, GetUserID: FromParam("id")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user/abc", http.NoBody))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body["error"] != "Invalid user id" {
		t.Errorf("Unexpected body %v", body)
	}
}

func TestMiddleware_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not configured", badges.ErrNotConfigured, http.StatusInternalServerError},
		{"upstream", &badges.UpstreamError{StatusCode: http.StatusForbidden, Body: "Missing Access"}, http.StatusForbidden},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(Config{Service: &stubService{err: tt.err}, GetUserID: FromParam("id")})
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user/123", http.NoBody))
			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestMiddleware_CustomHooks(t *testing.T) {
	cfg := Config{
		Service:   &stubService{err: badges.ErrNotConfigured},
		GetUserID: FromParam("id"),
		OnInvalidID: func(c *gongin.Context) {
			c.String(http.StatusTeapot, "bad id")
		},
		OnError: func(c *gongin.Context, _ error) {
			c.String(http.StatusServiceUnavailable, "unavailable")
		},
	}
	r := setupRouter(cfg)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user/abc", http.NoBody))
	if w.Code != http.StatusTeapot {
		t.Errorf("Expected OnInvalidID status, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/user/123", http.NoBody))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected OnError status, got %d", w.Code)
	}
}

func TestExtractors(t *testing.T) {
	gongin.SetMode(gongin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gongin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?user=42", http.NoBody)
	c.Request.Header.Set("X-User-ID", "7")

	if got := FromQuery("user")(c); got != "42" {
		t.Errorf("FromQuery = %q", got)
	}
	if got := FromHeader("X-User-ID")(c); got != "7" {
		t.Errorf("FromHeader = %q", got)
	}
}

func TestMiddleware_PanicsOnMissingConfig(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for missing GetUserID")
		}
	}()
	Middleware(Config{Service: &stubService{}})
}
