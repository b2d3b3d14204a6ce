package api

import (
	"net/http"
	"time"

	"ems_backend/internal/api/handler"
	"ems_backend/internal/api/middleware"
	"ems_backend/internal/app/service"
	"ems_backend/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	registrationService *service.RegistrationService,
	authService *service.AuthService,
	approvalService *service.ApprovalService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies a bearer token when present and puts claims in context; the
	// Authenticator below decides whether one is required.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api/auth", func(auth chi.Router) {
		// Signup and login (public)
		authHandler := handler.NewAuthHandler(registrationService, authService)
		auth.Group(func(public chi.Router) {
			authHandler.RegisterRoutes(public)
		})

		// Approval workflow (station admins only)
		approvalHandler := handler.NewApprovalHandler(approvalService)
		auth.Group(func(protected chi.Router) {
			protected.Use(middleware.Authenticator)
			protected.Use(middleware.AdminOnly)
			approvalHandler.RegisterRoutes(protected)
		})
	})

	return r
}
