package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const CookieName = "speechgrader_session"

type contextKey string

const idKey contextKey = "session_id"

// Manager issues and verifies the session cookie. The cookie is an HS256
// token whose jti is the session ID; it identifies a browser, it does not
// authenticate a user.
type Manager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewManager uses secret to sign cookies. With an empty secret a random one
// is generated, so sessions do not survive a restart.
func NewManager(secret string, ttl time.Duration, secure bool) (*Manager, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
	}
	return &Manager{secret: key, ttl: ttl, secure: secure, now: time.Now}, nil
}

// Issue returns a new session ID and its signed token.
func (m *Manager) Issue() (string, string, error) {
	id := uuid.NewString()
	now := m.now()
	claims := jwt.RegisteredClaims{
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign session token: %w", err)
	}
	return id, token, nil
}

// Verify returns the session ID carried by token.
func (m *Manager) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return "", err
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		return "", errors.New("session token has no valid id")
	}
	return claims.ID, nil
}

// Middleware puts the session ID in the request context, issuing a fresh
// cookie when the request has none or an invalid one.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(CookieName); err == nil {
			if id, err := m.Verify(c.Value); err == nil {
				next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
				return
			}
		}

		id, err := m.Renew(w)
		if err != nil {
			slog.Error("failed to issue session", "error", err)
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithID(r.Context(), id)))
	})
}

// Renew sets a new session cookie on w and returns its ID.
func (m *Manager) Renew(w http.ResponseWriter) (string, error) {
	id, token, err := m.Issue()
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, idKey, id)
}

func IDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(idKey).(string)
	return id
}
