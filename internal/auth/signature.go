package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SignatureMiddleware enforces the optional fixed-value signature header
// some funnel deploys set on the collect endpoint. It is a shared
// secret, not a cryptographic signature; absence or mismatch is a 403
// with no side effects.
func SignatureMiddleware(header, expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := strings.TrimSpace(c.GetHeader(header))
		if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"ok": false, "error": "invalid_signature"})
			return
		}
		c.Next()
	}
}
