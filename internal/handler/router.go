/*
Package handler provides the HTTP handlers and routing setup for the club chat server.

This file defines the main Router, applying necessary middleware like logging, CORS,
identity extraction and IP-based rate limiting before delegating requests to the
REST and WebSocket handlers.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"clubchat/internal/pkg/auth/jwt"
	"clubchat/internal/pkg/limiter"
	"clubchat/internal/pkg/logx"
	"clubchat/internal/pkg/resp"
)

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Connections int    `json:"connections"`
	Rooms       int    `json:"rooms"`
}

// Router sets up the main HTTP routing table (chi.Router) for the application.
func Router(deps *AppDeps) http.Handler {
	upgradeLimiter := limiter.NewIPRateLimiter(deps.ServerCtx, rate.Limit(deps.Config.UpgradeRate), deps.Config.UpgradeBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		registry := deps.Broker.Registry()
		resp.RespondSuccess(w, r, HealthStatus{
			Status:      "ok",
			Service:     "Club Chat Server",
			Connections: registry.Len(),
			Rooms:       registry.RoomCount(),
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		r.Route("/api", func(api chi.Router) {
			api.Use(jwt.RequireIdentity)
			api.Get("/clubs/{clubID}/messages", HandleGetHistory(deps))
		})

		r.With(upgradeLimiter.Middleware).Get("/ws", HandleWebSocket(wsUpgrader, deps))
	})

	return r
}
