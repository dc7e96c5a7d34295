package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gstreco/internal/auth"
)

const (
	ContextKeySubject = "subject"
	ContextKeyEmail   = "email"
	ContextKeyClaims  = "claims"
)

// anonymousSubject is recorded as the requester when auth is disabled.
const anonymousSubject = "anonymous"

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthMiddleware returns Gin middleware that validates bearer tokens and
// injects the caller's identity. When enabled is false every request passes
// as the anonymous subject.
func AuthMiddleware(verifier TokenVerifier, enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Set(ContextKeySubject, anonymousSubject)
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing or invalid authorization header"},
			})
			return
		}

		claims, err := verifier.Verify(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "invalid or expired token"},
			})
			return
		}

		c.Set(ContextKeySubject, claims.Subject)
		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetSubject returns the authenticated subject, or "anonymous".
func GetSubject(c *gin.Context) string {
	if s := c.GetString(ContextKeySubject); s != "" {
		return s
	}
	return anonymousSubject
}

// GetEmail returns the email claim of the caller, if any.
func GetEmail(c *gin.Context) string {
	return c.GetString(ContextKeyEmail)
}
