// README: JWT auth middleware for the admin API.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const subjectKey = "auth.subject"

// Auth validates a Bearer JWT signed with the shared secret and stores
// the token subject on the request context.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !parsed.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		if sub, err := parsed.Claims.GetSubject(); err == nil {
			c.Set(subjectKey, sub)
		}
		c.Next()
	}
}

// CallerSubject returns the authenticated username, or "" outside Auth.
func CallerSubject(c *gin.Context) string {
	return c.GetString(subjectKey)
}
