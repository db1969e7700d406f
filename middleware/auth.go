package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Authorizer decides whether a provider key may use the relay. A failed
// check returns the payload to send back with the 401.
type Authorizer func(key string) (ok bool, payload gin.H)

// StaticKeyAuthorizer accepts any key from a comma-separated allowlist.
// An empty allowlist disables authentication.
func StaticKeyAuthorizer(tokens string) Authorizer {
	allowed := map[string]struct{}{}
	for _, token := range strings.Split(tokens, ",") {
		if token = strings.TrimSpace(token); token != "" {
			allowed[token] = struct{}{}
		}
	}
	return func(key string) (bool, gin.H) {
		if len(allowed) == 0 {
			return true, nil
		}
		if _, ok := allowed[key]; ok {
			return true, nil
		}
		return false, gin.H{"error": true, "message": "invalid provider key"}
	}
}

// TokenAuth authenticates requests with the configured authorizer, reading
// the provider key from the Authorization header.
func TokenAuth(authorize Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authorize == nil {
			c.Next()
			return
		}
		key := strings.TrimSpace(strings.TrimPrefix(c.Request.Header.Get("Authorization"), "Bearer "))
		ok, payload := authorize(key)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, payload)
			return
		}
		c.Next()
	}
}
