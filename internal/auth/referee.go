package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"
)

type contextKey string

const refereeKey contextKey = "referee"

// RefereeConfig holds the bearer tokens that grant referee access to the API.
type RefereeConfig struct {
	tokens map[string]string
}

// NewRefereeConfig builds the config from "name:token" or bare "token" entries.
func NewRefereeConfig(entries []string) *RefereeConfig {
	cfg := &RefereeConfig{tokens: make(map[string]string)}
	for i, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, token, ok := strings.Cut(entry, ":")
		if !ok {
			name, token = "referee-"+strconv.Itoa(i+1), entry
		}
		if token != "" {
			cfg.tokens[token] = name
		}
	}
	return cfg
}

// Enabled reports whether any token is configured.
func (c *RefereeConfig) Enabled() bool {
	return len(c.tokens) > 0
}

// Lookup returns the referee name for a token.
func (c *RefereeConfig) Lookup(token string) (string, bool) {
	for known, name := range c.tokens {
		if subtle.ConstantTimeCompare([]byte(known), []byte(token)) == 1 {
			return name, true
		}
	}
	return "", false
}

// RefereeMiddleware rejects requests without a known bearer token.
func RefereeMiddleware(cfg *RefereeConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			name, ok := cfg.Lookup(token)
			if !ok {
				http.Error(w, "Forbidden: Referee access required", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), refereeKey, name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RefereeFromContext returns the referee name set by RefereeMiddleware.
func RefereeFromContext(ctx context.Context) string {
	name, _ := ctx.Value(refereeKey).(string)
	return name
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
