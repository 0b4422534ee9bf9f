package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lbin817/MSE/utils"
)

// AuthMiddleware guards admin routes. The token comes from the
// Authorization header, a ?token= query parameter (for CSV download links)
// or the session cookie set at login.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}
		if tokenStr == "" {
			if cookie, err := c.Cookie("admin_token"); err == nil {
				tokenStr = cookie
			}
		}

		if tokenStr == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		claims, err := utils.ParseAccessToken(jwtSecret, tokenStr)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("admin_username", claims.Username)
		c.Next()
	}
}

// GetAdminUsername returns the username stored by AuthMiddleware.
func GetAdminUsername(c *gin.Context) string {
	if v, ok := c.Get("admin_username"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
