package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/FitnessFreakCoder/Freshmart-project/internal/common"
)

var errNoToken = errors.New("auth: token missing")

// Middleware wires authentication context into HTTP handlers.
type Middleware struct {
	Tokens Tokens
}

// Authenticate attaches the caller identity when a valid token is present,
// and lets anonymous requests through untouched.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := m.authenticateRequest(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth enforces that a valid token is present before executing the next handler.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := m.authenticateRequest(r)
		if err != nil {
			if appErr, ok := common.AsAppError(err); ok {
				status := appErr.StatusOr(http.StatusUnauthorized)
				common.JSONError(w, status, appErr.Code, appErr.Message, appErr.Details)
				return
			}
			common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireStaff allows staff and admin roles only. It implies RequireAuth.
func (m Middleware) RequireStaff(next http.Handler) http.Handler {
	return m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := common.IdentityFrom(r.Context())
		if !ok || !id.IsStaff() {
			common.JSONError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions", nil)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// RequireAdmin allows the admin role only. It implies RequireAuth.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := common.IdentityFrom(r.Context())
		if !ok || id.Role != common.RoleAdmin {
			common.JSONError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions", nil)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func (m Middleware) authenticateRequest(r *http.Request) (context.Context, error) {
	token := extractToken(r)
	if token == "" {
		return r.Context(), errNoToken
	}
	id, err := m.Tokens.Parse(token)
	if err != nil {
		return r.Context(), err
	}
	return common.WithIdentity(r.Context(), id), nil
}

func extractToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
