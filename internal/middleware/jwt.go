package middleware

import (
	"net/http"
	"strings"

	"libro_back_end/internal/cache"
	"libro_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuthRequired valide le JWT Bearer, vérifie blacklist et bannissement,
// puis place les claims dans le context Gin.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token manquant"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Format Authorization invalide"})
			c.Abort()
			return
		}

		claims, err := utils.ParseAccessToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token invalide ou expiré"})
			c.Abort()
			return
		}

		if cache.IsTokenBlacklisted(claims.TokenID) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token révoqué"})
			c.Abort()
			return
		}

		if cache.IsUserBanned(claims.UserID) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Compte banni"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Set("token_id", claims.TokenID)

		c.Next()
	}
}
