package api

import (
	"net/http"

	"github.com/mihaimyh/badgeapi/pkg/badges"
)

// Handler provides HTTP endpoints for badge lookups
type Handler struct {
	config Config
}

// GetUser returns the full derived profile
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.write(w, r, http.StatusOK, profile)
}

// GetNitro returns only the nitro tier view
func (h *Handler) GetNitro(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.write(w, r, http.StatusOK, NitroResponse{
		ID:            profile.ID,
		HasNitro:      profile.Nitro.HasNitro,
		Tier:          profile.Nitro.Tier,
		NextMilestone: profile.Nitro.NextMilestone,
	})
}

// GetBooster returns only the server booster view
func (h *Handler) GetBooster(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.write(w, r, http.StatusOK, BoosterResponse{
		ID:      profile.ID,
		Booster: profile.Booster,
	})
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*badges.Profile, bool) {
	userID := h.config.GetUserID(r)
	profile, err := h.config.Service.Lookup(r.Context(), userID)
	if err != nil {
		h.handleError(w, r, userID, err)
		return nil, false
	}
	return profile, true
}

// handleError handles errors with appropriate HTTP status codes
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, userID string, err error) {
	status, _ := ErrorStatus(err)
	if status == http.StatusInternalServerError {
		h.config.Logger.Error("user lookup failed",
			badges.Field{Key: "user_id", Value: userID},
			badges.Field{Key: "path", Value: r.URL.Path},
			badges.Field{Key: "error", Value: err})
	}

	if h.config.OnError != nil {
		h.config.OnError(w, r, err)
		return
	}
	if werr := WriteError(w, err); werr != nil {
		h.logWriteFailure(r, werr)
	}
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	if err := WriteJSON(w, code, data); err != nil {
		h.logWriteFailure(r, err)
	}
}

func (h *Handler) logWriteFailure(r *http.Request, err error) {
	h.config.Logger.Warn("failed to write response",
		badges.Field{Key: "path", Value: r.URL.Path},
		badges.Field{Key: "error", Value: err})
}
