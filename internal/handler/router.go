/*
Package handler provides the HTTP handlers and routing setup for the Chatterbox server.

This file defines the main Router, applying necessary middleware like logging, CORS,
and IP-based rate limiting before delegating requests to the verification and profile handlers.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"chatterbox/internal/pkg/auth/jwt"
	"chatterbox/internal/pkg/limiter"
	"chatterbox/internal/pkg/logx"
	"chatterbox/internal/pkg/resp"
)

const (
	// DispatchRate limits how often one IP may start verification flows.
	DispatchRate  = 0.1
	DispatchBurst = 3

	// ResendRate limits per-IP resend requests.
	ResendRate  = 0.05
	ResendBurst = 2
)

// Router sets up the main HTTP routing table (chi.Router) for the application.
// It initializes IP-based rate limiters, configures CORS, and applies global and per-route middleware.
func Router(deps *AppDeps) http.Handler {
	dispatchLimiter := limiter.NewIPRateLimiter(rate.Limit(DispatchRate), DispatchBurst)
	resendLimiter := limiter.NewIPRateLimiter(rate.Limit(ResendRate), ResendBurst)

	r := chi.NewRouter()

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-PoW-Token"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "Chatterbox Server",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		api.Route("/pow", func(p chi.Router) {
			p.Get("/challenge", HandlePowChallenge(deps))
			p.Post("/verify", HandlePowVerify(deps))
		})

		api.Route("/auth", func(auth chi.Router) {
			rateLimitedStart := dispatchLimiter.Middleware(HandleStartVerification(deps))
			auth.Post("/phone", http.HandlerFunc(rateLimitedStart.ServeHTTP))

			auth.Post("/verify", HandleSubmitCode(deps))

			rateLimitedResend := resendLimiter.Middleware(HandleResendCode(deps))
			auth.Post("/resend", http.HandlerFunc(rateLimitedResend.ServeHTTP))

			auth.Post("/reset", HandleResetFlow(deps))
		})

		api.Route("/user", func(user chi.Router) {
			user.Get("/profile", HandleGetUserProfile(deps))
			user.Post("/profile", HandleSaveUserProfile(deps))
			user.Post("/avatar/presign", HandlePresignAvatarURL(deps))
		})
	})

	return r
}
