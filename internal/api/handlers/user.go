package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jcall/wanderstay/internal/api/middleware"
	"github.com/jcall/wanderstay/internal/domain"
	"github.com/jcall/wanderstay/internal/service"
	"github.com/jcall/wanderstay/internal/session"
)

type UserHandler struct {
	authService *service.AuthService
}

func NewUserHandler(authService *service.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

func (h *UserHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, view(r, map[string]interface{}{"page": "users/signup"}))
}

// Signup validates, registers and immediately establishes a session for
// the new principal. Any validation failure flashes a specific message and
// returns to the form without touching the store.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashRedirect(w, r, "error", "Please check your input and try again.", "/signup")
		return
	}

	username := service.SanitizeInput(r.PostFormValue("username"))
	email := service.SanitizeInput(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	if err := service.ValidateSignup(username, email, password); err != nil {
		flashRedirect(w, r, "error", domain.MessageOf(err), "/signup")
		return
	}

	user, err := h.authService.Register(r.Context(), service.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		flashRedirect(w, r, "error", domain.MessageOf(err), "/signup")
		return
	}

	if sess := session.FromContext(r.Context()); sess != nil {
		sess.SetUser(user.ID)
	}
	flashRedirect(w, r, "success",
		fmt.Sprintf("Welcome to Wanderstay, %s! Your account has been created successfully.", username),
		"/listings")
}

func (h *UserHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, view(r, map[string]interface{}{"page": "users/login"}))
}

// Login runs the local credential strategy. On success the rate-limit
// increment is refunded and the saved pre-login destination wins over the
// index.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashRedirect(w, r, "error", "Please check your input and try again.", "/login")
		return
	}

	username := service.SanitizeInput(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	user, err := h.authService.Authenticate(r.Context(), username, password)
	if err != nil {
		flashRedirect(w, r, "error", domain.MessageOf(err), "/login")
		return
	}

	middleware.MarkRateSuccess(r.Context())
	if sess := session.FromContext(r.Context()); sess != nil {
		sess.SetUser(user.ID)
	}

	target := middleware.GetRedirectURL(r.Context())
	if target == "" {
		target = "/listings"
	}
	flashRedirect(w, r, "success",
		fmt.Sprintf("Welcome back, %s! Good to see you again.", user.Username),
		target)
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var username string
	if user, ok := middleware.GetUser(r.Context()); ok {
		username = user.Username
	}

	if sess := session.FromContext(r.Context()); sess != nil {
		sess.ClearUser()
	}

	message := "You have been logged out successfully!"
	if username != "" {
		message = fmt.Sprintf("Goodbye %s! You have been logged out successfully.", username)
	}
	flashRedirect(w, r, "success", message, "/listings")
}

// CheckUsername probes availability. "Taken" is a normal answer, never an
// error; only store I/O failures produce a 500.
func (h *UserHandler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	if !service.ValidUsername(username) {
		renderJSON(w, http.StatusOK, map[string]interface{}{
			"available": false,
			"message":   "Invalid username format",
		})
		return
	}

	exists, err := h.authService.UsernameExists(r.Context(), username)
	if err != nil {
		renderJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"available": false,
			"message":   "Error checking username availability",
		})
		return
	}

	if exists {
		renderJSON(w, http.StatusOK, map[string]interface{}{
			"available": false,
			"message":   "Username is already taken",
		})
		return
	}

	renderJSON(w, http.StatusOK, map[string]interface{}{
		"available": true,
		"message":   "Username is available",
	})
}

func (h *UserHandler) ForgotPasswordForm(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, view(r, map[string]interface{}{"page": "users/forgot-password"}))
}

// ForgotPassword issues a reset token. No mail transport: the link is
// flashed back to the requesting session instead.
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashRedirect(w, r, "error", "Please check your input and try again.", "/forgot-password")
		return
	}

	email := service.SanitizeInput(r.PostFormValue("email"))

	token, err := h.authService.StartPasswordReset(r.Context(), email)
	if err != nil {
		flashRedirect(w, r, "error", domain.MessageOf(err), "/forgot-password")
		return
	}

	flashRedirect(w, r, "success",
		fmt.Sprintf("Password reset link: /reset-password/%s", token),
		"/forgot-password")
}

func (h *UserHandler) ResetPasswordForm(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if _, err := h.authService.UserForResetToken(r.Context(), token); err != nil {
		flashRedirect(w, r, "error", domain.MessageOf(err), "/forgot-password")
		return
	}

	renderJSON(w, http.StatusOK, view(r, map[string]interface{}{
		"page":  "users/reset-password",
		"token": token,
	}))
}

func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if err := r.ParseForm(); err != nil {
		flashRedirect(w, r, "error", "Please check your input and try again.", "/reset-password/"+token)
		return
	}

	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirmPassword")

	if _, err := h.authService.UserForResetToken(r.Context(), token); err != nil {
		flashRedirect(w, r, "error", domain.MessageOf(err), "/forgot-password")
		return
	}

	if password != confirm {
		flashRedirect(w, r, "error", "Passwords do not match.", "/reset-password/"+token)
		return
	}

	if err := h.authService.ResetPassword(r.Context(), token, password); err != nil {
		flashRedirect(w, r, "error", domain.MessageOf(err), "/forgot-password")
		return
	}

	flashRedirect(w, r, "success", "Your password has been updated. You can now log in.", "/login")
}
