package security

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// CheckAdmin reports whether the request carries the configured admin bearer
// token. An empty secret fails closed: with no token configured nothing
// authenticates.
func CheckAdmin(r *http.Request, secret string) bool {
	if secret == "" {
		return false
	}
	token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	if token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}
