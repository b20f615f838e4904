package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jcall/wanderstay/internal/api/middleware"
	"github.com/jcall/wanderstay/internal/domain"
	"github.com/jcall/wanderstay/internal/session"
)

func renderJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// view wraps a page payload with the pending flash messages and the
// current principal, which every page includes.
func view(r *http.Request, payload map[string]interface{}) map[string]interface{} {
	if payload == nil {
		payload = map[string]interface{}{}
	}

	flash := map[string][]string{}
	if sess := session.FromContext(r.Context()); sess != nil {
		success, errs := sess.PopFlash()
		if len(success) > 0 {
			flash["success"] = success
		}
		if len(errs) > 0 {
			flash["error"] = errs
		}
	}
	payload["flash"] = flash

	if user, ok := middleware.GetUser(r.Context()); ok {
		payload["currentUser"] = user
	} else {
		payload["currentUser"] = nil
	}

	return payload
}

// flashRedirect queues a one-shot message and navigates.
func flashRedirect(w http.ResponseWriter, r *http.Request, kind, message, target string) {
	if sess := session.FromContext(r.Context()); sess != nil {
		sess.Flash(kind, message)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// renderError is the terminal error path: a generic error page with the
// error's status code and message, defaulting to 500 / "Something went
// wrong".
func renderError(w http.ResponseWriter, r *http.Request, err error) {
	renderJSON(w, domain.StatusOf(err), map[string]interface{}{
		"statusCode": domain.StatusOf(err),
		"message":    domain.MessageOf(err),
	})
}

// NotFound handles unmatched routes, the only hard 404 in the app.
func NotFound(w http.ResponseWriter, r *http.Request) {
	renderError(w, r, &domain.Error{Kind: domain.KindNotFound, Message: "Page not Found"})
}
