package auth

import (
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
)

const bearerPrefix = "bearer "

type Middleware struct {
	tokens TokenServiceInterface
}

func NewMiddleware(tokens TokenServiceInterface) *Middleware {
	return &Middleware{tokens: tokens}
}

// Require rejects requests without a valid Authorization bearer token.
func (m *Middleware) Require(next http.Handler) http.Handler {
	return m.wrap(next, false)
}

// RequireAllowQuery also accepts the token as ?token=, for links opened
// directly by a browser (file downloads).
func (m *Middleware) RequireAllowQuery(next http.Handler) http.Handler {
	return m.wrap(next, true)
}

func (m *Middleware) wrap(next http.Handler, allowQuery bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" && allowQuery {
			token = r.URL.Query().Get("token")
		}
		if err := m.tokens.Verify(token); err != nil {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BearerToken extracts the token from the Authorization header, or "".
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) <= len(bearerPrefix) || !strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(h[len(bearerPrefix):])
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}
