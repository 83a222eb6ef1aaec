package auth

import (
	"encoding/json"
	"net/http"
	"strings"
)

// CookieName carries the session token for browser clients.
const CookieName = "session"

// TokenFromRequest prefers the bearer header and falls back to the cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

func JWTAuth(svc *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := TokenFromRequest(r)
			if raw == "" {
				deny(w, http.StatusUnauthorized, "missing session")
				return
			}
			claims, err := svc.Authenticate(r.Context(), raw)
			if err != nil {
				deny(w, http.StatusUnauthorized, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequirePermission lets the request through when the caller holds the
// admin role or one of their roles carries code.
func RequirePermission(svc *Service, role, code string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := FromContext(r.Context())
			if !c.HasRole(role) {
				ok, err := svc.HasPermission(r.Context(), c.Subject, code)
				if err != nil {
					deny(w, http.StatusInternalServerError, err.Error())
					return
				}
				if !ok {
					deny(w, http.StatusForbidden, "forbidden")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func deny(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"code": 1, "message": msg})
}
