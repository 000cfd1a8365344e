package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/devices-configuration/internal/auth"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.metricsMiddleware)

		r.Get("/health", s.handleHealth)
		if s.metrics != nil {
			r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
		}

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Route("/devices/{id}", func(r chi.Router) {
				r.With(s.require(auth.PermDeviceRead)).Get("/", s.handleGetDevice)
				r.With(s.require(auth.PermDeviceProvision)).Put("/", s.handleCreateDevice)
				r.With(s.require(auth.PermDeviceConfigure)).Patch("/", s.handleUpdateDevice)
				if s.history != nil {
					r.With(s.require(auth.PermDeviceRead)).Get("/events", s.handleListDeviceEvents)
				}
			})

			r.With(s.require(auth.PermEventsSubscribe)).Get(s.wsPath(), s.handleWebSocket)
		})
	})

	return r
}

// wsPath is the WebSocket route below /api/v1.
func (s *Server) wsPath() string {
	if s.wsCfg.Path == "" {
		return "/ws"
	}
	return s.wsCfg.Path
}
