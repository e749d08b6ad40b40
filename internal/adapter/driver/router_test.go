package driver

import (
	"net/http"
	"testing"

	"github.com/alorle/iptv-zapper/internal/application"
)

func newTestAPIHandler(t *testing.T) (http.Handler, *playerFixture) {
	t.Helper()

	swagger, err := LoadOpenAPI()
	if err != nil {
		t.Fatalf("failed to load openapi document: %v", err)
	}

	f := newPlayerFixture(t, true)
	api := NewAPIHandler(
		NewPlayerHTTPHandler(f.svc),
		NewHealthHTTPHandler(application.NewHealthService(f.favs, f.svc)),
		swagger,
	)
	return http.StripPrefix("/api", api), f
}

func TestLoadOpenAPI(t *testing.T) {
	swagger, err := LoadOpenAPI()
	if err != nil {
		t.Fatalf("expected embedded document to be valid, got %v", err)
	}
	if swagger.Servers != nil {
		t.Error("expected servers to be cleared")
	}

	// Every player route must be described or the validator rejects it.
	for _, p := range PlayerPaths {
		if p == "/keys/" {
			p = "/keys/{key}"
		}
		if swagger.Paths.Find(p) == nil {
			t.Errorf("path %s missing from openapi document", p)
		}
	}
}

func TestAPIHandler(t *testing.T) {
	handler, _ := newTestAPIHandler(t)

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{name: "state", method: http.MethodGet, target: "/api/state", wantStatus: http.StatusOK},
		{name: "health", method: http.MethodGet, target: "/api/health", wantStatus: http.StatusOK},
		{name: "openapi document", method: http.MethodGet, target: "/api/openapi.json", wantStatus: http.StatusOK},
		{name: "zap", method: http.MethodPost, target: "/api/zap", body: `{"direction":"next"}`, wantStatus: http.StatusOK},
		{name: "press key", method: http.MethodPost, target: "/api/keys/menu", wantStatus: http.StatusOK},
		{name: "zap without body", method: http.MethodPost, target: "/api/zap", wantStatus: http.StatusBadRequest},
		{name: "zap with unknown direction", method: http.MethodPost, target: "/api/zap", body: `{"direction":"sideways"}`, wantStatus: http.StatusBadRequest},
		{name: "play without url", method: http.MethodPost, target: "/api/play", body: `{}`, wantStatus: http.StatusBadRequest},
		{name: "reload with bad flag", method: http.MethodPost, target: "/api/playlist/reload?refresh=maybe", wantStatus: http.StatusBadRequest},
		{name: "undocumented path", method: http.MethodGet, target: "/api/unknown", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, handler, tt.method, tt.target, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected Content-Type application/json, got %s", ct)
			}
		})
	}
}

func TestDocumentationHandler(t *testing.T) {
	swagger, err := LoadOpenAPI()
	if err != nil {
		t.Fatalf("failed to load openapi document: %v", err)
	}
	handler := NewDocumentationHandler(swagger)

	w := doRequest(t, handler, http.MethodGet, "/openapi.json", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	doc := decodeBody[map[string]any](t, w)
	if doc["openapi"] != "3.0.3" {
		t.Errorf("expected openapi 3.0.3, got %v", doc["openapi"])
	}

	w = doRequest(t, handler, http.MethodPost, "/openapi.json", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}
