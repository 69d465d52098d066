package middleware

import (
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

var (
	corsAllowHeaders = strings.Join([]string{
		"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", SessionTokenHeader,
	}, ", ")
	corsAllowMethods = "POST, GET, OPTIONS, PUT, PATCH, DELETE"

	// tools and tests calling the API directly
	trustedUserAgentPrefixes = []string{"curl/", "test-agent"}
	// mailed links are opened straight from the mail client
	mailLinkPathPrefixes = []string{"/a/activate/", "/a/email/confirm/"}
)

// Cors rejects requests from unknown origins with a 403 and sets the CORS headers on the rest.
func Cors(allowedOrigins []string) func(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if !allowed[origin] && !corsExempt(r) {
				log.Warnf("CORS: origin [%s] not allowed for path [%s]", origin, r.URL.Path)
				w.WriteHeader(http.StatusForbidden)
				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Add("Vary", "Origin")

			next.ServeHTTP(w, r)
		})
	}
}

func corsExempt(r *http.Request) bool {
	return hasAnyPrefix(r.Header.Get("User-Agent"), trustedUserAgentPrefixes) ||
		hasAnyPrefix(r.URL.Path, mailLinkPathPrefixes)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
