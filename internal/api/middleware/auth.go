package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jcall/wanderstay/internal/domain"
	"github.com/jcall/wanderstay/internal/service"
	"github.com/jcall/wanderstay/internal/session"
	"gorm.io/gorm"
)

type contextKey string

const (
	userKey     contextKey = "currentUser"
	redirectKey contextKey = "redirectUrl"
)

// CurrentUser deserializes the session principal into the request context.
// A stale principal (user deleted since login) is cleared rather than
// failing the request.
func CurrentUser(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := session.FromContext(r.Context())
			if sess == nil || sess.UserID() == nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := auth.GetUserByID(r.Context(), *sess.UserID())
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					sess.ClearUser()
				} else {
					log.Printf("WARN [middleware.CurrentUser] principal lookup failed: %v", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser returns the authenticated principal, if any.
func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok
}

// RequireLogin gates authenticated routes. The original destination is
// saved for the post-login redirect.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}

		if sess := session.FromContext(r.Context()); sess != nil {
			sess.SetRedirectURL(r.URL.RequestURI())
			sess.Flash("error", "You must be logged in!")
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
}

// RequireOwner gates mutating listing routes behind an ownership check.
// Missing listings soft-fail back to the index.
func RequireOwner(listings *service.ListingService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := session.FromContext(r.Context())

			id, err := uuid.Parse(chi.URLParam(r, "id"))
			if err != nil {
				if sess != nil {
					sess.Flash("error", "Listing not found!")
				}
				http.Redirect(w, r, "/listings", http.StatusSeeOther)
				return
			}

			listing, err := listings.Get(r.Context(), id)
			if err != nil {
				if sess != nil {
					sess.Flash("error", domain.MessageOf(err))
				}
				http.Redirect(w, r, "/listings", http.StatusSeeOther)
				return
			}

			user, ok := GetUser(r.Context())
			if !ok || listing.OwnerID != user.ID {
				if sess != nil {
					sess.Flash("error", "You don't have permission to do that!")
				}
				http.Redirect(w, r, "/listings/"+id.String(), http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SaveRedirectURL moves a pending post-login redirect from the session
// into the request context and clears it, so the login handler sees it
// even after the session principal changes.
func SaveRedirectURL(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromContext(r.Context())
		if sess == nil {
			next.ServeHTTP(w, r)
			return
		}
		if u := sess.PopRedirectURL(); u != "" {
			ctx := context.WithValue(r.Context(), redirectKey, u)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// GetRedirectURL returns the redirect target stashed by SaveRedirectURL.
func GetRedirectURL(ctx context.Context) string {
	u, _ := ctx.Value(redirectKey).(string)
	return u
}
