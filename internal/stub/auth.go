package stub

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/the-sdet/sdetkit/internal/logging"
)

// Option configures a Server.
type Option func(*Server)

// WithAPIKeys makes the server reject requests that do not carry one of keys,
// either as X-API-Key or as a Bearer token. No keys means no check.
func WithAPIKeys(keys ...string) Option {
	return func(s *Server) {
		s.apiKeys = append(s.apiKeys, keys...)
	}
}

func (s *Server) apiKeyAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.apiKeys) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := requestKey(r)
		if apiKey == "" {
			logging.Warn(r.Context(), "auth: missing API key", "path", r.URL.Path, "method", r.Method)
			writeError(w, http.StatusUnauthorized, "missing API key")
			return
		}
		if !isValidAPIKey(apiKey, s.apiKeys) {
			logging.Warn(r.Context(), "auth: invalid API key", "path", r.URL.Path, "method", r.Method)
			writeError(w, http.StatusForbidden, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func requestKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// isValidAPIKey compares against every key in constant time.
func isValidAPIKey(key string, validKeys []string) bool {
	valid := 0
	for _, validKey := range validKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(validKey))
	}
	return valid == 1
}
