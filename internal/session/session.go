// Package session provides cookie-based session management. The cookie value
// is an HS256-signed JWT whose claims carry an opaque session ID; the session
// ID keys a mutable bag of authentication state held by a Store. The store is
// an external collaborator behind a narrow interface, so persistence can be
// swapped without touching the core.
package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// State is the mutable authentication state attached to a session.
type State struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	IsPro    bool   `json:"isPro"`
	IsAdmin  bool   `json:"isAdmin"`
	LoggedIn bool   `json:"loggedIn"`
}

// Store maps opaque session tokens to session state.
type Store interface {
	Get(ctx context.Context, token string) (*State, bool, error)
	Set(ctx context.Context, token string, state *State) error
	Clear(ctx context.Context, token string) error
}

// Claims are the JWT claims carried by the session cookie.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"session_id"`
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// StateKey is the context key under which the request's session state is stored.
const StateKey ContextKey = "sessionState"

// Manager issues, resolves, and invalidates sessions.
type Manager struct {
	store      Store
	cookieName string
	signingKey []byte
	ttl        time.Duration
}

// New creates a session Manager over the given store. The cookie name, the
// JWT signing key, and the session lifetime are taken from configuration.
func New(store Store, cookieName string, signingKey []byte, ttl time.Duration) *Manager {
	return &Manager{
		store:      store,
		cookieName: cookieName,
		signingKey: signingKey,
		ttl:        ttl,
	}
}

// Establish replaces any session carried by the request with a fresh one
// holding the given state, and sets the session cookie on the response.
func (m *Manager) Establish(
	response http.ResponseWriter,
	request *http.Request,
	state *State,
) error {
	// An existing session is invalidated first, mirroring the
	// clear-then-assign flow of the login endpoint.
	if sessionID := m.sessionIDFromRequest(request); sessionID != "" {
		if err := m.store.Clear(request.Context(), sessionID); err != nil {
			return fmt.Errorf("failed to clear the previous session: %w", err)
		}
	}

	sessionID := uuid.New().String()
	if err := m.store.Set(request.Context(), sessionID, state); err != nil {
		return fmt.Errorf("failed to persist the session state: %w", err)
	}

	JWTString, err := m.buildJWTString(&Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		SessionID: sessionID,
	})
	if err != nil {
		return fmt.Errorf("failed to sign the session cookie: %w", err)
	}

	http.SetCookie(
		response,
		&http.Cookie{
			Name:     m.cookieName,
			Value:    JWTString,
			Path:     "/",
			MaxAge:   int(m.ttl.Seconds()),
			HttpOnly: true,
		},
	)

	return nil
}

// Clear invalidates the session carried by the request and expires the cookie.
func (m *Manager) Clear(response http.ResponseWriter, request *http.Request) error {
	if sessionID := m.sessionIDFromRequest(request); sessionID != "" {
		if err := m.store.Clear(request.Context(), sessionID); err != nil {
			return err
		}
	}

	http.SetCookie(
		response,
		&http.Cookie{
			Name:     m.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		},
	)

	return nil
}

// WithSession is an HTTP middleware that resolves the session cookie into a
// State and stores it in the request context. Requests without a valid
// session proceed anonymously; authorization is the policy layer's concern.
func (m *Manager) WithSession(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		state := &State{}

		if sessionID := m.sessionIDFromRequest(request); sessionID != "" {
			stored, found, err := m.store.Get(request.Context(), sessionID)
			if err != nil {
				http.Error(response, "session lookup failed", http.StatusInternalServerError)
				return
			}
			if found {
				state = stored
			}
		}

		ctx := context.WithValue(request.Context(), StateKey, state)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

// FromContext returns the session state stored by WithSession.
// It never returns nil: requests outside the middleware get an anonymous state.
func FromContext(ctx context.Context) *State {
	state, ok := ctx.Value(StateKey).(*State)
	if !ok {
		return &State{}
	}

	return state
}

func (m *Manager) sessionIDFromRequest(request *http.Request) string {
	cookie, err := request.Cookie(m.cookieName)
	if err != nil {
		return ""
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		cookie.Value,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.signingKey, nil
		},
	)
	if err != nil || !token.Valid {
		return ""
	}

	return claims.SessionID
}

func (m *Manager) buildJWTString(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, *claims)

	tokenString, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
