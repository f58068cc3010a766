package auth

import (
	"context"
	"net/http"

	"lunchbox-orders/internal/utils"
)

type contextKey string

const adminIDKey contextKey = "admin_id"

// AdminOnly guards admin routes with a signed bearer token. An empty secret
// disables the guard entirely; the storefront shipped for years with an
// unauthenticated dashboard and some deployments still run that way.
func AdminOnly(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				utils.WriteError(w, http.StatusUnauthorized, err.Error())
				return
			}

			adminID, err := VerifyAdminToken(rawToken, secret)
			if err != nil {
				utils.WriteError(w, http.StatusUnauthorized, "invalid token: "+err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), adminIDKey, adminID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminID extracts the authenticated administrator from the request context.
func AdminID(ctx context.Context) string {
	if id, ok := ctx.Value(adminIDKey).(string); ok {
		return id
	}
	return ""
}
