package middleware

import (
	"context"
	"net/http"
	"strings"

	"portfolio-service/config"
	"portfolio-service/utils"
)

type contextKey string

const adminClaimsKey contextKey = "adminClaims"

// AdminOnly admits requests carrying a valid admin access token, read from
// the access cookie first and the Authorization header second.
func AdminOnly(cfg config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r, cfg.Auth.AccessCookieName)
			if token == "" {
				writeErrorResponse(w, http.StatusUnauthorized, "No token provided")
				return
			}

			claims, err := utils.ParseAccessToken(token, cfg.Auth.AccessTokenSecret)
			if err != nil {
				writeErrorResponse(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			if claims.Scope != utils.AdminScope {
				writeErrorResponse(w, http.StatusForbidden, "Forbidden")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(adminClaimsKey).(*utils.Claims)
	return claims, ok
}

func ContextWithClaims(ctx context.Context, claims *utils.Claims) context.Context {
	return context.WithValue(ctx, adminClaimsKey, claims)
}

func tokenFromRequest(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}
