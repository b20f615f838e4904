// Package session implements store-backed request sessions: a signed
// cookie holds an opaque session ID, the record itself lives in the
// database (or an in-process fallback). Sessions carry the authenticated
// principal, one-shot flash messages and a pending post-login redirect.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	CookieName = "wanderstay_session"

	// Records are re-extended lazily: only when touched more than
	// touchAfter since the last write.
	TTL        = 3 * 24 * time.Hour
	touchAfter = 24 * time.Hour
)

// Data is the serialized session payload.
type Data struct {
	UserID      *uuid.UUID `json:"userId,omitempty"`
	Success     []string   `json:"success,omitempty"`
	Error       []string   `json:"error,omitempty"`
	RedirectURL string     `json:"redirectUrl,omitempty"`
}

type Session struct {
	ID   uuid.UUID
	data Data

	updatedAt time.Time
	isNew     bool
	dirty     bool
}

// Flash queues a one-shot message of kind "success" or "error".
func (s *Session) Flash(kind, message string) {
	switch kind {
	case "success":
		s.data.Success = append(s.data.Success, message)
	default:
		s.data.Error = append(s.data.Error, message)
	}
	s.dirty = true
}

// PopFlash returns queued messages and clears them.
func (s *Session) PopFlash() (success, errs []string) {
	success, errs = s.data.Success, s.data.Error
	if success != nil || errs != nil {
		s.data.Success, s.data.Error = nil, nil
		s.dirty = true
	}
	return success, errs
}

func (s *Session) UserID() *uuid.UUID { return s.data.UserID }

func (s *Session) SetUser(id uuid.UUID) {
	s.data.UserID = &id
	s.dirty = true
}

func (s *Session) ClearUser() {
	if s.data.UserID != nil {
		s.data.UserID = nil
		s.dirty = true
	}
}

func (s *Session) SetRedirectURL(u string) {
	s.data.RedirectURL = u
	s.dirty = true
}

// PopRedirectURL returns and clears the pending post-login redirect.
func (s *Session) PopRedirectURL() string {
	u := s.data.RedirectURL
	if u != "" {
		s.data.RedirectURL = ""
		s.dirty = true
	}
	return u
}

type contextKey struct{}

// FromContext returns the request session, or nil outside the session
// middleware.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}

// NewContext binds a session to ctx; exported for handler tests.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// Manager loads and persists sessions around each request.
type Manager struct {
	store  Store
	secret []byte
	now    func() time.Time
}

func NewManager(store Store, secret string) *Manager {
	return &Manager{store: store, secret: []byte(secret), now: time.Now}
}

// NewSession returns a fresh, not-yet-persisted session.
func NewSession() *Session {
	return &Session{ID: uuid.New(), isNew: true}
}

func (m *Manager) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := m.load(r)
			if sess.isNew {
				m.setCookie(w, sess)
			}

			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), sess)))

			m.persist(r.Context(), sess)
		})
	}
}

// load resolves the request's session, falling back to a fresh one on any
// missing, tampered or expired state.
func (m *Manager) load(r *http.Request) *Session {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return NewSession()
	}

	id, err := m.verifyToken(cookie.Value)
	if err != nil {
		return NewSession()
	}

	rec, err := m.store.Load(r.Context(), id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("WARN [session] load failed: %v", err)
		}
		return NewSession()
	}
	if m.now().After(rec.ExpiresAt) {
		return NewSession()
	}

	var data Data
	if err := json.Unmarshal(rec.Data, &data); err != nil {
		log.Printf("WARN [session] corrupt session %s: %v", id, err)
		return NewSession()
	}

	return &Session{ID: id, data: data, updatedAt: rec.UpdatedAt}
}

func (m *Manager) persist(ctx context.Context, s *Session) {
	stale := m.now().Sub(s.updatedAt) > touchAfter
	if !s.isNew && !s.dirty && !stale {
		return
	}

	raw, err := json.Marshal(s.data)
	if err != nil {
		log.Printf("ERROR [session] marshal failed: %v", err)
		return
	}

	rec := &Record{
		ID:        s.ID,
		Data:      raw,
		ExpiresAt: m.now().Add(TTL),
		UpdatedAt: m.now(),
	}
	if err := m.store.Save(ctx, rec); err != nil {
		log.Printf("WARN [session] save failed: %v", err)
		return
	}
	s.updatedAt = rec.UpdatedAt
	s.isNew = false
	s.dirty = false
}

func (m *Manager) setCookie(w http.ResponseWriter, s *Session) {
	token, err := m.signToken(s.ID)
	if err != nil {
		log.Printf("ERROR [session] cookie signing failed: %v", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  m.now().Add(TTL),
		MaxAge:   int(TTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// signToken wraps the session ID in an HS256-signed compact token, so a
// tampered cookie never resolves to someone else's session.
func (m *Manager) signToken(id uuid.UUID) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   id.String(),
		ExpiresAt: jwt.NewNumericDate(m.now().Add(TTL)),
		IssuedAt:  jwt.NewNumericDate(m.now()),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

func (m *Manager) verifyToken(token string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return uuid.Nil, errors.New("invalid session token")
	}
	return uuid.Parse(claims.Subject)
}
