package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/wallwars-go/internal/api/apierr"
	"github.com/mcoot/wallwars-go/internal/middleware"
)

type contextKey string

const idTokenContextKey contextKey = "id_token"

// Identity requires a bearer identity token and stores it in the request context.
// Tokens are issued by the external identity provider and taken at face value.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			apierr.WriteError(w, apierr.NewUnauthorizedError())
			return
		}

		ctx := context.WithValue(r.Context(), idTokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// GetIDToken returns the caller's identity token, or "" outside Identity
func GetIDToken(ctx context.Context) string {
	token, _ := ctx.Value(idTokenContextKey).(string)
	return token
}

// MustGetIDToken returns the caller's identity token or panics
func MustGetIDToken(ctx context.Context) string {
	token := GetIDToken(ctx)
	if token == "" {
		panic("no identity token in context - identity middleware not applied?")
	}
	return token
}

// Recovery turns panics into a JSON 500
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})
}
