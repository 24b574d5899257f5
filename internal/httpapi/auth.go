package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

// Session scopes carried in the token.
const (
	scopeCustomer = "customer"
	scopeOwner    = "owner"
)

const tokenCookie = "token"

// ErrInvalidToken is returned when a session token fails parsing or
// signature verification.
var ErrInvalidToken = errors.New("invalid session token")

// sessionClaims are the JWT claims issued on login.
type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Scope string `json:"scope"`
}

// TokenManager signs and verifies the session JWTs stored in the auth cookie.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a TokenManager. ttl bounds how long issued sessions
// stay valid.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a session token for the given subject.
func (m *TokenManager) Issue(subjectID, email, scope string) (string, error) {
	now := m.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		Email: email,
		Scope: scope,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies the token signature and expiry and returns its claims.
func (m *TokenManager) Parse(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

type sessionKey struct{}

// sessionFromContext returns the claims stored by the auth middleware.
func sessionFromContext(ctx context.Context) *sessionClaims {
	claims, _ := ctx.Value(sessionKey{}).(*sessionClaims)
	return claims
}

// accountID returns the authenticated account's ID for the request. The auth
// middleware guarantees it is set on protected routes.
func accountID(r *http.Request) string {
	return sessionFromContext(r.Context()).Subject
}

func (h *Handler) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.tokens.ttl / time.Second),
	})
}

func (h *Handler) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// sessionToken reads the token from the auth cookie, falling back to a
// Bearer Authorization header for non-browser clients.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(tokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	const prefix = "Bearer "
	if auth := r.Header.Get("Authorization"); len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}

func (h *Handler) requireScope(scope string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			respondMessage(w, http.StatusUnauthorized, false, "login required")
			return
		}
		claims, err := h.tokens.Parse(token)
		if err != nil {
			respondMessage(w, http.StatusUnauthorized, false, "session expired, please login again")
			return
		}
		if claims.Scope != scope {
			respondMessage(w, http.StatusForbidden, false, "insufficient permissions")
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireAccount(next http.HandlerFunc) http.Handler {
	return h.requireScope(scopeCustomer, next)
}

func (h *Handler) requireOwner(next http.HandlerFunc) http.Handler {
	return h.requireScope(scopeOwner, next)
}
