package driver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alorle/iptv-zapper/internal/application"
	"github.com/alorle/iptv-zapper/internal/channel"
	"github.com/alorle/iptv-zapper/internal/navigation"
	"github.com/alorle/iptv-zapper/internal/remote"
)

// errorResponse represents a JSON error response.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps a domain error to its HTTP status. Unknown errors
// are reported as 500 without leaking their text.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, navigation.ErrInvalidDirection),
		errors.Is(err, remote.ErrUnknownKey),
		errors.Is(err, channel.ErrEmptyURL):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, channel.ErrChannelNotFound),
		errors.Is(err, application.ErrGroupNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, navigation.ErrNoVisibleChannels),
		errors.Is(err, application.ErrLoadInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, application.ErrPlayback):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, application.ErrNotRunning):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
