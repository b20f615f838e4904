package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jcall/wanderstay/internal/api/handlers"
	"github.com/jcall/wanderstay/internal/api/middleware"
	"github.com/jcall/wanderstay/internal/config"
	"github.com/jcall/wanderstay/internal/service"
	"github.com/jcall/wanderstay/internal/session"
)

func NewRouter(services *service.Services, sessions *session.Manager, limiter *middleware.RateLimiter, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(limiter.Limit(middleware.RateGeneral))
	r.Use(sessions.Middleware())
	r.Use(middleware.CurrentUser(services.Auth))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	uploader := &handlers.Uploader{Dir: cfg.UploadDir}
	listingHandler := handlers.NewListingHandler(services.Listing, uploader)
	userHandler := handlers.NewUserHandler(services.Auth)

	r.Route("/listings", func(r chi.Router) {
		r.Get("/", listingHandler.Index)
		r.Get("/search", listingHandler.Index)
		r.Get("/api/suggestions", listingHandler.Suggestions)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireLogin)
			r.Get("/new", listingHandler.New)
			r.Post("/", listingHandler.Create)
		})

		r.Get("/{id}", listingHandler.Show)

		// Owner-only mutations
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireLogin)
			r.Use(middleware.RequireOwner(services.Listing))
			r.Get("/{id}/edit", listingHandler.Edit)
			r.Put("/{id}", listingHandler.Update)
			r.Delete("/{id}", listingHandler.Delete)
		})
	})

	r.Get("/signup", userHandler.SignupForm)
	r.With(limiter.Limit(middleware.RateSignup)).Post("/signup", userHandler.Signup)

	r.Get("/login", userHandler.LoginForm)
	r.With(limiter.Limit(middleware.RateAuth), middleware.SaveRedirectURL).
		Post("/login", userHandler.Login)

	r.With(limiter.Limit(middleware.RateUsernameCheck)).
		Get("/check-username/{username}", userHandler.CheckUsername)

	r.Get("/logout", userHandler.Logout)

	r.Get("/forgot-password", userHandler.ForgotPasswordForm)
	r.With(limiter.Limit(middleware.RatePasswordReset)).
		Post("/forgot-password", userHandler.ForgotPassword)
	r.Get("/reset-password/{token}", userHandler.ResetPasswordForm)
	r.With(limiter.Limit(middleware.RatePasswordReset)).
		Post("/reset-password/{token}", userHandler.ResetPassword)

	// Unmatched routes are the only hard 404
	r.NotFound(handlers.NotFound)

	return r
}
