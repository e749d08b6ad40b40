package driver

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/alorle/iptv-zapper/internal/application"
)

func TestHealthHTTPHandler_ServeHTTP(t *testing.T) {
	t.Run("GET /health returns 200 when the catalog is loaded", func(t *testing.T) {
		f := newPlayerFixture(t, true)
		handler := NewHealthHTTPHandler(application.NewHealthService(f.favs, f.svc))

		w := doRequest(t, handler, http.MethodGet, "/health", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}

		resp := decodeBody[healthResponse](t, w)
		if resp.Status != "ok" || resp.Favorites.Status != "ok" || resp.Catalog.Status != "ok" {
			t.Errorf("unexpected health response %+v", resp)
		}
	})

	t.Run("GET /health returns 503 before the first load", func(t *testing.T) {
		f := newPlayerFixture(t, false)
		handler := NewHealthHTTPHandler(application.NewHealthService(f.favs, f.svc))

		w := doRequest(t, handler, http.MethodGet, "/health", "")
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected status 503, got %d", w.Code)
		}

		resp := decodeBody[healthResponse](t, w)
		if resp.Status != "degraded" || resp.Catalog.Error != "playlist not loaded" {
			t.Errorf("unexpected health response %+v", resp)
		}
	})

	t.Run("GET /health returns 503 when the favorites store is down", func(t *testing.T) {
		f := newPlayerFixture(t, true)
		f.favs.pingFunc = func(ctx context.Context) error {
			return errors.New("database locked")
		}
		handler := NewHealthHTTPHandler(application.NewHealthService(f.favs, f.svc))

		w := doRequest(t, handler, http.MethodGet, "/health", "")
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected status 503, got %d", w.Code)
		}

		resp := decodeBody[healthResponse](t, w)
		if resp.Favorites.Status != "error" || resp.Favorites.Error != "database locked" {
			t.Errorf("unexpected favorites component %+v", resp.Favorites)
		}
	})

	t.Run("POST /health returns 405", func(t *testing.T) {
		f := newPlayerFixture(t, false)
		handler := NewHealthHTTPHandler(application.NewHealthService(f.favs, f.svc))

		w := doRequest(t, handler, http.MethodPost, "/health", "")
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status 405, got %d", w.Code)
		}
	})
}
