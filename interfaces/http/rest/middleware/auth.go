package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"circulate-backend/pkg/auth"
)

// Authenticate extracts the caller's identity from the Authorization bearer
// token and places a UserContext on the request context. The parser decides
// whether to verify the signature locally or trust the gateway authorizer.
func Authenticate(parser *auth.TokenParser, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				respondUnauthorized(w, "Missing authorization header")
				return
			}

			user, err := parser.Parse(token)
			if err != nil {
				logger.Warn("rejected token",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				respondUnauthorized(w, "Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return header
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    http.StatusUnauthorized,
	})
}
