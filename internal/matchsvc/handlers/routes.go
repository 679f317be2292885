package handlers

import (
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) SetRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/health", h.HealthHandler)

			r.Route("/match", func(r chi.Router) {
				r.Get("/", h.GetMatch)
				r.Post("/start", h.StartMatch)
				r.Post("/mark", h.MarkNumber)
				r.Post("/pause", h.PauseMatch)
				r.Post("/resume", h.ResumeMatch)
				r.Post("/reset", h.ResetGame)
			})
			r.Get("/stats", h.GetStats)
		})
	})
}

func (h *Handler) InitAuth(jwtKey string) {
	h.tokenAuth = jwtauth.New("HS256", []byte(jwtKey), nil)

	_, tokenString, _ := h.tokenAuth.Encode(map[string]interface{}{
		"service_id": 8003022,
		"exp":        time.Now().Add(7 * 24 * time.Hour).Unix(),
	})

	log.Debugf("DEBUG: service JWT for testing: %s", tokenString)
}

// TokenAuth exposes the signer, mainly for tests and tooling.
func (h *Handler) TokenAuth() *jwtauth.JWTAuth {
	return h.tokenAuth
}
