package middleware

import (
	"net/http"
	"strings"

	"lucky_streets/internal/service"

	"github.com/gin-gonic/gin"
)

// JWT requires a bearer token and stores user_id and user_name in the context.
func JWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		claims, err := service.ParseClaims(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_name", claims.Name)
		c.Next()
	}
}

// OptionalJWT sets user_id when a valid token is present and never aborts.
func OptionalJWT() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer "); ok {
			if claims, err := service.ParseClaims(token); err == nil {
				c.Set("user_id", claims.UserID)
				c.Set("user_name", claims.Name)
			}
		}
		c.Next()
	}
}
