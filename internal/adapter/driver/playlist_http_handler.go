package driver

import (
	"bytes"
	"net/http"

	"github.com/alorle/iptv-zapper/internal/application"
	"github.com/alorle/iptv-zapper/internal/m3u"
)

// PlaylistHTTPHandler exports the loaded catalog as an M3U document.
type PlaylistHTTPHandler struct {
	service *application.PlayerService
}

// NewPlaylistHTTPHandler creates a new HTTP handler for playlists.
func NewPlaylistHTTPHandler(service *application.PlayerService) *PlaylistHTTPHandler {
	return &PlaylistHTTPHandler{service: service}
}

// ServeHTTP handles GET /playlist.m3u[?group=]
func (h *PlaylistHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	channels, err := h.service.Channels(r.Context(), r.URL.Query().Get("group"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	enc := m3u.NewEncoder(nil)
	enc.AddChannels(channels)

	// Encode into a buffer so a failure can still be reported as 500.
	var buf bytes.Buffer
	if err := enc.Encode(&buf); err != nil {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "audio/mpegurl")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
