package api

import (
	"context"
	"net/http"

	"github.com/ukane-philemon/reportcard/internal/auth"
)

type ctxKey string

const (
	jwtHeader   = "Reportcard-Authentication-Token"
	adminCtxKey = ctxKey("admin")
)

// AuthMiddleware ensures the correct and valid auth token is provided in
// this request. Requests without a token pass through unauthenticated.
func AuthMiddleware(authManager *auth.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			authToken := req.Header.Get(jwtHeader)
			if authToken == "" {
				next.ServeHTTP(res, req)
				return
			}

			admin, validToken := authManager.IsValid(authToken)
			if !validToken {
				writeJSON(res, http.StatusForbidden, errorResponse{Error: "not authorized"})
				return
			}

			// Set the adminCtxKey for use by subsequent handlers.
			req = req.WithContext(context.WithValue(req.Context(), adminCtxKey, admin))
			next.ServeHTTP(res, req)
		})
	}
}

// reqAuthenticated checks that the request is authenticated.
func reqAuthenticated(ctx context.Context) bool {
	admin, ok := ctx.Value(adminCtxKey).(string)
	return ok && admin != ""
}
