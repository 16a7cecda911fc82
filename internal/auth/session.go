package auth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session"

// Session is the per-browser state: who is logged in, plus one-shot flash
// messages waiting to be shown. A zero UserID means anonymous.
type Session struct {
	UserID  int64
	Flashes []string
}

// Authenticated reports whether a user is logged in.
func (s *Session) Authenticated() bool { return s.UserID != 0 }

// Login moves the session to the authenticated state for userID.
func (s *Session) Login(userID int64) { s.UserID = userID }

// Logout drops the authenticated user. Pending flashes survive.
func (s *Session) Logout() { s.UserID = 0 }

// Flash queues a message for the next rendered page.
func (s *Session) Flash(msg string) { s.Flashes = append(s.Flashes, msg) }

// PopFlashes returns the queued messages and clears them.
func (s *Session) PopFlashes() []string {
	msgs := s.Flashes
	s.Flashes = nil
	return msgs
}

func (s *Session) empty() bool { return s.UserID == 0 && len(s.Flashes) == 0 }

// sessionClaims defines the JWT claims stored in the session cookie.
type sessionClaims struct {
	Flashes []string `json:"flashes,omitempty"`
	jwt.RegisteredClaims
}

// SessionManager signs sessions into an HttpOnly cookie and reads them back.
type SessionManager struct {
	key    []byte
	ttl    time.Duration
	secure bool
}

// NewSessionManager creates a SessionManager signing with secret.
func NewSessionManager(secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{key: []byte(secret), ttl: ttl, secure: secure}
}

// Load returns the session carried by r. Missing, expired or tampered
// cookies yield an empty anonymous session.
func (m *SessionManager) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return &Session{}
	}

	claims := &sessionClaims{}
	_, err = jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		return m.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithExpirationRequired())
	if err != nil {
		log.Debug().Err(err).Msg("Discarding invalid session cookie")
		return &Session{}
	}

	s := &Session{Flashes: claims.Flashes}
	if claims.Subject != "" {
		id, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil || id <= 0 {
			return &Session{Flashes: claims.Flashes}
		}
		s.UserID = id
	}
	return s
}

// Save writes s to the response. It must run before the header is written.
// An empty session removes the cookie.
func (m *SessionManager) Save(w http.ResponseWriter, s *Session) error {
	if s.empty() {
		http.SetCookie(w, m.cookie("", -1, time.Unix(0, 0)))
		return nil
	}

	now := time.Now()
	expires := now.Add(m.ttl)
	claims := sessionClaims{
		Flashes: s.Flashes,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	if s.UserID != 0 {
		claims.Subject = strconv.FormatInt(s.UserID, 10)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}
	http.SetCookie(w, m.cookie(signed, int(m.ttl.Seconds()), expires))
	return nil
}

func (m *SessionManager) cookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

type contextKey string

const sessionKey = contextKey("session")

// Middleware loads the session for every request and stores it in the
// request context.
func (m *SessionManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), sessionKey, m.Load(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the request's session, or an empty one when the
// middleware did not run.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(sessionKey).(*Session); ok {
		return s
	}
	return &Session{}
}
