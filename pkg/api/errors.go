package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mihaimyh/badgeapi/pkg/badges"
)

const (
	msgInvalidUserID = "Invalid user id"
	msgNotConfigured = "BOT_TOKEN not configured on server"
	msgUpstream      = "Discord API error"
	msgInternal      = "Internal Server Error"
)

// ErrorStatus maps a lookup error to its HTTP status and response body.
// Upstream failures keep the upstream status and echo the upstream body as detail.
func ErrorStatus(err error) (int, ErrorResponse) {
	var upErr *badges.UpstreamError
	switch {
	case errors.Is(err, badges.ErrInvalidUserID):
		return http.StatusBadRequest, ErrorResponse{Error: msgInvalidUserID}
	case errors.Is(err, badges.ErrNotConfigured):
		return http.StatusInternalServerError, ErrorResponse{Error: msgNotConfigured}
	case errors.As(err, &upErr):
		status := upErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		return status, ErrorResponse{Error: msgUpstream, Detail: upErr.Body}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: msgInternal}
	}
}

// WriteError writes the JSON error response for err.
func WriteError(w http.ResponseWriter, err error) error {
	status, body := ErrorStatus(err)
	return WriteJSON(w, status, body)
}

// WriteJSON writes a JSON response with proper headers
func WriteJSON(w http.ResponseWriter, code int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
