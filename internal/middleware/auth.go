package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/keebmart/keebmart/internal/auth"
	"github.com/keebmart/keebmart/internal/metrics"
	"github.com/keebmart/keebmart/internal/model"
)

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger  *slog.Logger
	Tokens  *auth.TokenManager
	Metrics metrics.Recorder
}

// Auth returns a middleware that gates requests on a bearer token.
// A missing or malformed Authorization header is rejected with 401;
// a token that fails signature or expiry checks is rejected with 403.
// On success the decoded identity is attached to the request context.
//
// This is a pure gate: no database lookup confirms the user still
// exists, and there is no revocation path.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearerToken(r)
			if !ok {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
				return
			}

			claims, err := cfg.Tokens.Verify(token)
			if err != nil {
				recorder.IncTokenRejected()
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "invalid_token"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "Invalid or expired token")
				return
			}

			identity := &model.Identity{
				UserID: claims.Subject,
				Email:  claims.Email,
			}

			ctx := auth.ContextWithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken pulls the token out of "Authorization: Bearer <token>".
// Returns false for a missing header, a different scheme, or an empty value.
func extractBearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	return token, true
}

// writeAuthError writes a JSON auth failure response.
func writeAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `","code":"` + code + `"}`))
}
