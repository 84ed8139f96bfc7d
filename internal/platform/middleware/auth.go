package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"foncier/pkg/requestcontext"
)

// AgentClaims represents the claims we expect from the token validator.
type AgentClaims struct {
	AgentID int64
	Role    string
}

// TokenValidator defines the interface for validating agent bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*AgentClaims, error)
}

// RequireAgent rejects requests without a valid agent bearer token and puts
// the agent ID into the request context. Services receive the acting agent as
// an explicit parameter sourced from here, never from a shared singleton.
func RequireAgent(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok || token == "" {
				unauthorized(w)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				unauthorized(w)
				return
			}

			ctx := requestcontext.WithAgentID(r.Context(), claims.AgentID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Invalid or expired token"}`))
}
