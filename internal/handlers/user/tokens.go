package user

import (
	"log"
	"net/http"
	"strings"
	"time"

	"libro_back_end/internal/cache"
	"libro_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	User         gin.H  `json:"user"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func GenerateAuthTokens(userID, email, role string) (*LoginResponse, error) {
	accessToken, tokenID, err := utils.GenerateAccessToken(userID, email, role)
	if err != nil {
		return nil, err
	}

	refreshToken, err := utils.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	if err := cache.StoreRefreshToken(userID, refreshToken, 30*24*time.Hour); err != nil {
		log.Printf("⚠️ Erreur stockage refresh token: %v", err)
	}

	log.Printf("✅ Tokens générés - Access: %s, Refresh stocké pour user: %s", tokenID, userID)

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    900,
		TokenType:    "Bearer",
		User: gin.H{
			"user_id": userID,
			"email":   email,
			"role":    role,
		},
	}, nil
}

func RefreshAccessToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Refresh token manquant"})
		return
	}

	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token manquant"})
		return
	}

	// L'access token peut être expiré, mais doit être authentique :
	// ses claims identifient le propriétaire du refresh token.
	claims, err := utils.ParseAccessToken(authHeader[7:])
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token invalide"})
		return
	}
	userID := claims.UserID

	if cache.IsUserBanned(userID) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Compte banni"})
		return
	}

	stored, err := cache.GetRefreshToken(userID)
	if err != nil {
		log.Printf("❌ Refresh token non trouvé pour user %s: %v", userID, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token invalide ou expiré"})
		return
	}
	if stored != req.RefreshToken {
		log.Printf("❌ Refresh token ne correspond pas pour user %s", userID)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token invalide"})
		return
	}

	newAccessToken, tokenID, err := utils.GenerateAccessToken(claims.UserID, claims.Email, claims.Role)
	if err != nil {
		log.Printf("❌ Erreur génération nouveau token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	log.Printf("✅ Access token renouvelé - TokenID: %s, User: %s", tokenID, userID)

	c.JSON(http.StatusOK, gin.H{
		"access_token": newAccessToken,
		"expires_in":   900,
		"token_type":   "Bearer",
	})
}

// Logout révoque le refresh token et blackliste l'access token courant
// pour sa durée de vie restante.
func Logout(c *gin.Context) {
	userID := c.GetString("user_id")
	tokenID := c.GetString("token_id")

	if err := cache.DeleteRefreshToken(userID); err != nil {
		log.Printf("⚠️ Erreur suppression refresh token: %v", err)
	}
	if tokenID != "" {
		if err := cache.BlacklistToken(tokenID, 15*time.Minute); err != nil {
			log.Printf("⚠️ Erreur blacklist token: %v", err)
		}
	}

	log.Printf("✅ Logout pour user: %s", userID)
	c.JSON(http.StatusOK, gin.H{"message": "Déconnexion réussie"})
}
