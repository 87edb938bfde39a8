package myhttp

import "net/http"

// IsSecure also honours the scheme reported by a TLS terminating proxy.
func IsSecure(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
