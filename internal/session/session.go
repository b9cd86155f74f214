package session

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CookieName is the cookie carrying the session ID.
const CookieName = "clinic_session"

// Session is the request-scoped handle on one client's stored values.
type Session struct {
	ID    string
	store Store
	ttl   time.Duration
}

// New binds a session ID to a store. ttl is the default lifetime applied
// when Set is called without one.
func New(id string, store Store, ttl time.Duration) *Session {
	return &Session{ID: id, store: store, ttl: ttl}
}

func (s *Session) Get(ctx context.Context, key string) ([]byte, error) {
	return s.store.Get(ctx, s.ID, key)
}

// Set stores value under key. A non-positive ttl falls back to the session
// lifetime.
func (s *Session) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.ttl
	}
	return s.store.Set(ctx, s.ID, key, value, ttl)
}

func (s *Session) Take(ctx context.Context, key string) ([]byte, error) {
	return s.store.Take(ctx, s.ID, key)
}

func (s *Session) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, s.ID, key)
}

// SetJSON marshals v and stores it under key.
func (s *Session) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, b, ttl)
}

// TakeJSON removes the value under key and unmarshals it into v.
func (s *Session) TakeJSON(ctx context.Context, key string, v interface{}) error {
	b, err := s.Take(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

type contextKey string

const sessionKey = contextKey("session")

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext returns the session placed by Middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok
}

// Middleware attaches a Session to every request, issuing a new session
// cookie when the client has none or presents a malformed one.
func Middleware(store Store, ttl time.Duration, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(CookieName); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.New().String()
				log.Debug().Str("session_id", id).Msg("Issuing new session")
			}
			// Refresh the cookie so an active client keeps its session.
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    id,
				Path:     "/",
				Expires:  time.Now().Add(ttl),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := WithSession(r.Context(), New(id, store, ttl))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
