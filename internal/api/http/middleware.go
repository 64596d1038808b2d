package http

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"equipshare-backend/internal/domain"
	"equipshare-backend/internal/security"
	"equipshare-backend/internal/service"

	"golang.org/x/time/rate"
)

type contextKey string

const actorKey contextKey = "actor"

// authContext is what the auth middleware stores for handlers.
type authContext struct {
	Actor service.Actor
	Role  domain.Role
}

// AuthMiddleware extracts the given identity from a bearer token.
type AuthMiddleware struct {
	tokens security.TokenManager
}

func NewAuthMiddleware(tokens security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := m.tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		auth := &authContext{
			Actor: service.Actor{
				ID:        claims.UserID,
				Name:      claims.DisplayName,
				IPAddress: clientIP(r),
				UserAgent: r.UserAgent(),
			},
			Role: claims.Role,
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, auth)))
	})
}

func authFrom(r *http.Request) *authContext {
	auth, _ := r.Context().Value(actorKey).(*authContext)
	return auth
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return r.RemoteAddr
}

// requireRole wraps a handler with a role check.
func requireRole(check func(domain.Role) bool, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := authFrom(r)
		if auth == nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !check(auth.Role) {
			writeError(w, http.StatusForbidden, "insufficient role")
			return
		}
		next(w, r)
	}
}

func staffOnly(next http.HandlerFunc) http.HandlerFunc {
	return requireRole(domain.Role.CanManageLoans, next)
}

func adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return requireRole(func(r domain.Role) bool { return r == domain.RoleAdmin }, next)
}

// RateLimiter keeps one token bucket per client.
type RateLimiter struct {
	limiters sync.Map
	rps      float64
	burst    int
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{rps: rps, burst: burst}
}

func (l *RateLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(rate.Limit(l.rps), l.burst)
	actual, _ := l.limiters.LoadOrStore(key, lim)
	return actual.(*rate.Limiter)
}

func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.getLimiter(clientIP(r)).Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
