package driver

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

// NewAPIHandler mounts the player, health and documentation endpoints on one
// mux behind the request validator. Paths are relative to /api.
func NewAPIHandler(player *PlayerHTTPHandler, health *HealthHTTPHandler, swagger *openapi3.T) http.Handler {
	apiMux := http.NewServeMux()
	for _, p := range PlayerPaths {
		apiMux.Handle(p, player)
	}
	apiMux.Handle("/health", health)
	apiMux.Handle("/openapi.json", NewDocumentationHandler(swagger))

	return NewRequestValidator(swagger)(apiMux)
}
