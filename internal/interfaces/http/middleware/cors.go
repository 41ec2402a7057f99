package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig holds configuration for the CORS middleware.
type CORSConfig struct {
	// AllowedOrigins lists exact origins or "*".  Empty allows none.
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	// MaxAge is how long, in seconds, preflight results may be cached.
	MaxAge int
}

// DefaultCORSConfig returns the methods and headers the viewer API uses and
// no allowed origin.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	}
}

// OriginChecker returns a predicate reporting whether an origin is allowed.
// Requests without an Origin header are always allowed.
func (c CORSConfig) OriginChecker() func(r *http.Request) bool {
	allowAll := false
	set := make(map[string]bool, len(c.AllowedOrigins))
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			allowAll = true
		}
		set[strings.ToLower(o)] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowAll || set[strings.ToLower(origin)]
	}
}

// CORS returns middleware that handles cross-origin requests.  Disallowed
// origins pass through without CORS headers and the browser blocks them.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	methods := strings.Join(config.AllowedMethods, ", ")
	headers := strings.Join(config.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(config.MaxAge)
	allowed := config.OriginChecker()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !allowed(r) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				if config.MaxAge > 0 {
					w.Header().Set("Access-Control-Max-Age", maxAge)
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}
			w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
			next.ServeHTTP(w, r)
		})
	}
}

//Personal.AI order the ending
