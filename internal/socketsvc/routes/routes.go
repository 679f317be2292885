package routes

import (
	"github.com/avvvet/bingo-match/internal/socketsvc/handlers"
	"github.com/avvvet/bingo-match/internal/socketsvc/ws"
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
)

func SetRoutes(r chi.Router, s *ws.Ws, tokenAuth *jwtauth.JWTAuth, port string) {
	h := handlers.NewHandler(s, port)
	r.Route("/v1", func(r chi.Router) {
		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/health", h.HealthHandler)
		})

		// browsers cannot set headers on a websocket upgrade, so the token
		// may also come as ?jwt=
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(tokenAuth, jwtauth.TokenFromHeader, jwtauth.TokenFromQuery))
			r.Use(jwtauth.Authenticator)

			r.Get("/ws", h.HandleWebSocket)
		})
	})
}
