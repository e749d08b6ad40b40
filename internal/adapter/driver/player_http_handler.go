package driver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/alorle/iptv-zapper/internal/application"
	"github.com/alorle/iptv-zapper/internal/channel"
	"github.com/alorle/iptv-zapper/internal/navigation"
	"github.com/alorle/iptv-zapper/internal/remote"
)

// PlayerPaths lists the API paths served by PlayerHTTPHandler, relative to /api.
var PlayerPaths = []string{
	"/state",
	"/groups",
	"/groups/select",
	"/channels",
	"/search",
	"/zap",
	"/play",
	"/favorites/toggle",
	"/keys/",
	"/back",
	"/playlist/reload",
}

// PlayerHTTPHandler forwards user intent to the player service.
type PlayerHTTPHandler struct {
	service *application.PlayerService
}

// NewPlayerHTTPHandler creates a new HTTP handler for the player.
func NewPlayerHTTPHandler(service *application.PlayerService) *PlayerHTTPHandler {
	return &PlayerHTTPHandler{service: service}
}

type channelResponse struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Group string `json:"group"`
	Logo  string `json:"logo,omitempty"`
}

type channelViewResponse struct {
	channelResponse
	Favorite bool `json:"favorite"`
}

type stateResponse struct {
	Groups        []string              `json:"groups"`
	CurrentGroup  string                `json:"current_group"`
	SearchTerm    string                `json:"search_term"`
	Visible       []channelViewResponse `json:"visible"`
	Current       *channelViewResponse  `json:"current,omitempty"`
	Status        string                `json:"status"`
	PlaybackState string                `json:"playback_state"`
	OverlayOpen   bool                  `json:"overlay_open"`
	Loaded        bool                  `json:"loaded"`
	Loading       bool                  `json:"loading"`
	ChannelCount  int                   `json:"channel_count"`
	Hint          string                `json:"hint,omitempty"`
}

type groupRequest struct {
	Group string `json:"group"`
}

type searchRequest struct {
	Term string `json:"term"`
}

type zapRequest struct {
	Direction string `json:"direction"`
}

type urlRequest struct {
	URL string `json:"url"`
}

type favoriteResponse struct {
	URL      string `json:"url"`
	Favorite bool   `json:"favorite"`
}

type actionResponse struct {
	Action string `json:"action"`
}

type reloadResponse struct {
	Status string `json:"status"`
}

func toChannelResponse(ch channel.Channel) channelResponse {
	return channelResponse{
		Name:  ch.Name(),
		URL:   ch.URL(),
		Group: ch.Group(),
		Logo:  ch.Logo(),
	}
}

func toChannelViewResponse(v application.ChannelView) channelViewResponse {
	return channelViewResponse{
		channelResponse: channelResponse{
			Name:  v.Name,
			URL:   v.URL,
			Group: v.Group,
			Logo:  v.Logo,
		},
		Favorite: v.Favorite,
	}
}

func toStateResponse(s application.Snapshot) stateResponse {
	resp := stateResponse{
		Groups:        s.Groups,
		CurrentGroup:  s.CurrentGroup,
		SearchTerm:    s.SearchTerm,
		Visible:       make([]channelViewResponse, len(s.Visible)),
		Status:        s.Status,
		PlaybackState: s.PlaybackState.String(),
		OverlayOpen:   s.OverlayOpen,
		Loaded:        s.Loaded,
		Loading:       s.Loading,
		ChannelCount:  s.ChannelCount,
		Hint:          s.Hint,
	}
	if resp.Groups == nil {
		resp.Groups = []string{}
	}
	for i, v := range s.Visible {
		resp.Visible[i] = toChannelViewResponse(v)
	}
	if s.Current != nil {
		cur := toChannelViewResponse(*s.Current)
		resp.Current = &cur
	}
	return resp
}

// ServeHTTP routes the request to the appropriate handler based on method and path.
func (h *PlayerHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if r.Method == http.MethodGet {
		switch path {
		case "/state":
			h.handleState(w, r)
			return
		case "/groups":
			h.handleGroups(w, r)
			return
		case "/channels":
			h.handleChannels(w, r)
			return
		}
	}

	if r.Method == http.MethodPost {
		switch path {
		case "/groups/select":
			h.handleSelectGroup(w, r)
			return
		case "/search":
			h.handleSearch(w, r)
			return
		case "/zap":
			h.handleZap(w, r)
			return
		case "/play":
			h.handlePlay(w, r)
			return
		case "/favorites/toggle":
			h.handleToggleFavorite(w, r)
			return
		case "/back":
			h.handleBack(w, r)
			return
		case "/playlist/reload":
			h.handleReload(w, r)
			return
		}

		if key, ok := strings.CutPrefix(path, "/keys/"); ok && key != "" {
			h.handleKey(w, r, key)
			return
		}
	}

	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// handleState handles GET /state
func (h *PlayerHTTPHandler) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toStateResponse(snap))
}

// handleGroups handles GET /groups
func (h *PlayerHTTPHandler) handleGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.Groups(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if groups == nil {
		groups = []string{}
	}
	writeJSON(w, http.StatusOK, groups)
}

// handleChannels handles GET /channels?group=
func (h *PlayerHTTPHandler) handleChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.service.Channels(r.Context(), r.URL.Query().Get("group"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := make([]channelResponse, len(channels))
	for i, ch := range channels {
		response[i] = toChannelResponse(ch)
	}
	writeJSON(w, http.StatusOK, response)
}

// handleSelectGroup handles POST /groups/select
func (h *PlayerHTTPHandler) handleSelectGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.SelectGroup(r.Context(), req.Group); err != nil {
		writeServiceError(w, err)
		return
	}
	h.handleState(w, r)
}

// handleSearch handles POST /search
func (h *PlayerHTTPHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.SetSearchTerm(r.Context(), req.Term); err != nil {
		writeServiceError(w, err)
		return
	}
	h.handleState(w, r)
}

// handleZap handles POST /zap
func (h *PlayerHTTPHandler) handleZap(w http.ResponseWriter, r *http.Request) {
	var req zapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := navigation.ParseDirection(strings.ToLower(strings.TrimSpace(req.Direction)))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	view, err := h.service.Zap(r.Context(), d)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChannelViewResponse(view))
}

// handlePlay handles POST /play
func (h *PlayerHTTPHandler) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeServiceError(w, channel.ErrEmptyURL)
		return
	}

	view, err := h.service.Play(r.Context(), req.URL)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toChannelViewResponse(view))
}

// handleToggleFavorite handles POST /favorites/toggle
func (h *PlayerHTTPHandler) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeServiceError(w, channel.ErrEmptyURL)
		return
	}

	on, err := h.service.ToggleFavorite(r.Context(), req.URL)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, favoriteResponse{URL: req.URL, Favorite: on})
}

// handleKey handles POST /keys/{key}
func (h *PlayerHTTPHandler) handleKey(w http.ResponseWriter, r *http.Request, name string) {
	key, err := remote.ParseKey(name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	action, err := h.service.HandleKey(r.Context(), key)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Action: action.String()})
}

// handleBack handles POST /back
func (h *PlayerHTTPHandler) handleBack(w http.ResponseWriter, r *http.Request) {
	action, err := h.service.Back(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Action: action.String()})
}

// handleReload handles POST /playlist/reload[?refresh=true]. The load runs
// in the background; progress is visible through GET /state.
func (h *PlayerHTTPHandler) handleReload(w http.ResponseWriter, r *http.Request) {
	refresh := false
	if v := r.URL.Query().Get("refresh"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "refresh must be a boolean")
			return
		}
		refresh = parsed
	}

	if _, err := h.service.Reload(r.Context(), refresh); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, reloadResponse{Status: "loading"})
}
