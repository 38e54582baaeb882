package api

import (
	"github.com/go-chi/chi/v5"
)

// setupAPIRoutes sets up the management API v1 routes
func (s *RESTServer) setupAPIRoutes(r chi.Router) {
	// Health check
	r.Get("/health", s.HandleHealth)
	r.Get("/", s.HandleRoot)

	// Auth routes (public)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.HandleLogin)
		r.Post("/refresh", s.HandleRefresh)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(s.requireStore)
		r.Use(s.authMiddleware)

		// Users
		r.Route("/users", func(r chi.Router) {
			r.Post("/", s.HandleCreateUser)
			r.Get("/me", s.HandleGetCurrentUser)
		})

		// Devices
		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.HandleListDevices)
			r.Post("/", s.HandleCreateDevice)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetDevice)
				r.Put("/", s.HandleUpdateDevice)
				r.Delete("/", s.HandleDeleteDevice)
			})
		})

		// Playlists
		r.Route("/playlists", func(r chi.Router) {
			r.Get("/", s.HandleListPlaylists)
			r.Post("/", s.HandleCreatePlaylist)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetPlaylist)
				r.Put("/", s.HandleUpdatePlaylist)
				r.Delete("/", s.HandleDeletePlaylist)
			})
		})

		// Mixups
		r.Route("/mixups", func(r chi.Router) {
			r.Get("/", s.HandleListMixups)
			r.Post("/", s.HandleCreateMixup)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.HandleGetMixup)
				r.Put("/", s.HandleUpdateMixup)
				r.Delete("/", s.HandleDeleteMixup)
			})
		})
	})
}
