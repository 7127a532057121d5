// Package session keeps per-operator view state between requests: which
// categories are expanded and the one-time notices waiting to be shown.
// Sessions are identified by a cookie and stored as JSON in a key-value
// backend (Valkey in production, memory in development and tests) with a
// sliding TTL.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"zakazadmin/internal/tree"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "zk_session"

	// DefaultTTL is how long an idle session lives.
	DefaultTTL = 7 * 24 * time.Hour

	keyPrefix = "session:"

	// idLength is the byte length of the random session ID (32 bytes = 64 hex chars).
	idLength = 32
)

// ErrMissing is returned by a Backend when the key does not exist.
var ErrMissing = errors.New("session: key not found")

// Backend stores session payloads.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
)

// Flash is a notice shown once on the next rendered page.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Data is the session payload.
type Data struct {
	Expanded  []int64   `json:"expanded,omitempty"`
	Flashes   []Flash   `json:"flashes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the state of one operator for the duration of a request.
// It is safe for use by the goroutines serving that request.
type Session struct {
	mu    sync.Mutex
	id    string
	data  Data
	dirty bool
}

// ID returns the session id, empty for a detached session.
func (s *Session) ID() string {
	return s.id
}

// Expanded returns a copy of the expanded category set.
func (s *Session) Expanded() tree.Expanded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tree.NewExpanded(s.data.Expanded...)
}

// SetExpanded replaces the expanded category set.
func (s *Session) SetExpanded(e tree.Expanded) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Expanded = e.IDs()
	s.dirty = true
}

// Toggle flips one category and reports whether it is now expanded.
func (s *Session) Toggle(id int64) bool {
	e := s.Expanded()
	open := e.Toggle(id)
	s.SetExpanded(e)
	return open
}

// AddFlash queues a notice for the next page.
func (s *Session) AddFlash(kind, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Flashes = append(s.data.Flashes, Flash{Kind: kind, Message: message})
	s.dirty = true
}

// Flashes returns the queued notices and clears them.
func (s *Session) Flashes() []Flash {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.data.Flashes
	if len(f) > 0 {
		s.data.Flashes = nil
		s.dirty = true
	}
	return f
}

type ctxKey struct{}

// FromContext returns the request's session. Outside the middleware it
// returns a detached session that is never saved.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(ctxKey{}).(*Session); ok {
		return s
	}
	return &Session{}
}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// Store manages session lifecycle in a Backend.
type Store struct {
	backend Backend
	ttl     time.Duration
	secure  bool
}

// NewStore creates a session store. secure sets the Secure flag on the
// cookie and should be true behind TLS.
func NewStore(backend Backend, secure bool) *Store {
	return &Store{backend: backend, ttl: DefaultTTL, secure: secure}
}

// Load returns the session named by the request cookie, or a new one when
// there is no cookie or the session expired. A new session's cookie is set
// on w immediately.
func (st *Store) Load(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Session, error) {
	if cookie, err := r.Cookie(CookieName); err == nil && cookie.Value != "" {
		payload, err := st.backend.Get(ctx, keyPrefix+cookie.Value)
		switch {
		case err == nil:
			s := &Session{id: cookie.Value}
			if err := json.Unmarshal(payload, &s.data); err != nil {
				slog.Warn("discarding unreadable session", "error", err)
				break
			}
			return s, nil
		case !errors.Is(err, ErrMissing):
			return nil, fmt.Errorf("session get: %w", err)
		}
	}

	id, err := generateID()
	if err != nil {
		return nil, fmt.Errorf("session create: %w", err)
	}
	s := &Session{id: id, data: Data{CreatedAt: time.Now().UTC()}, dirty: true}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   st.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(st.ttl.Seconds()),
	})
	return s, nil
}

// Save writes the session if it changed since it was loaded.
func (st *Store) Save(ctx context.Context, s *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty || s.id == "" {
		return nil
	}
	payload, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("session marshal: %w", err)
	}
	if err := st.backend.Set(ctx, keyPrefix+s.id, payload, st.ttl); err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	s.dirty = false
	return nil
}

// Destroy removes the session from the backend and expires the cookie.
func (st *Store) Destroy(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if s.id == "" {
		return nil
	}
	if err := st.backend.Del(ctx, keyPrefix+s.id); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	return nil
}

// generateID creates a cryptographically random session identifier.
func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
