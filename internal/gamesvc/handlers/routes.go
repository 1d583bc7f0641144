package handlers

import (
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {

		// public routes, consumed by the builder pages
		r.Post("/create-whack-a-me-game", h.CreateWhackAMeGame)
		r.Post("/create-puzzle-a-day-game", h.CreatePuzzleADayGame)
		r.Post("/create-rocket-run-game", h.CreateRocketRunGame)
		r.Post("/update-rocket-run-game", h.UpdateRocketRunGame)
		r.Post("/join-rocket-run-game", h.JoinRocketRunGame)
		r.Get("/get-rocket-run-game", h.GetRocketRunGame)
		r.Post("/register-for-daily-challenge", h.RegisterForDailyChallenge)

		r.Post("/face-cutout", h.FaceCutout)
		r.Post("/generate-poem", h.GeneratePoem)
		r.Post("/stylize-image", h.StylizeImage)
		r.Get("/check-completion", h.CheckCompletion)

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/health", h.HealthHandler)

		})
	})
}

func (h *Handler) InitAuth() {
	h.tokenAuth = jwtauth.New("HS256", []byte(h.cfg.JWTSecretKey), nil)

	expirationTime := time.Now().Add(7 * 24 * time.Hour).Unix()

	_, tokenString, _ := h.tokenAuth.Encode(map[string]interface{}{
		"service_id": 8003022,
		"exp":        expirationTime,
	})

	// For debugging only, comment it out in production
	log.Infof("DEBUG: JWT for testing expires soon : %s", tokenString)
}
