package cache

import (
	"context"
	"fmt"
	"time"

	"libro_back_end/internal/database"
)

var ctx = context.Background()

// --- Refresh Tokens ---

// StoreRefreshToken stocke un refresh token pour un utilisateur
func StoreRefreshToken(userID, refreshToken string, duration time.Duration) error {
	key := fmt.Sprintf("refresh:%s", userID)
	return database.Redis.Set(ctx, key, refreshToken, duration).Err()
}

// GetRefreshToken récupère le refresh token d'un utilisateur
func GetRefreshToken(userID string) (string, error) {
	key := fmt.Sprintf("refresh:%s", userID)
	return database.Redis.Get(ctx, key).Result()
}

// DeleteRefreshToken supprime le refresh token (logout)
func DeleteRefreshToken(userID string) error {
	key := fmt.Sprintf("refresh:%s", userID)
	return database.Redis.Del(ctx, key).Err()
}

// --- Blacklist JWT (révocation avant expiration) ---

// BlacklistToken ajoute un token JWT à la blacklist
func BlacklistToken(tokenID string, duration time.Duration) error {
	key := fmt.Sprintf("blacklist:%s", tokenID)
	return database.Redis.Set(ctx, key, "revoked", duration).Err()
}

// IsTokenBlacklisted vérifie si un token est blacklisté
func IsTokenBlacklisted(tokenID string) bool {
	key := fmt.Sprintf("blacklist:%s", tokenID)
	return database.Redis.Exists(ctx, key).Val() > 0
}

// --- Bannissement ---

// BanUser marque un utilisateur comme banni et coupe son refresh token
func BanUser(userID string) error {
	if err := database.Redis.Set(ctx, "banned:"+userID, "1", 0).Err(); err != nil {
		return err
	}
	return DeleteRefreshToken(userID)
}

// UnbanUser lève le bannissement
func UnbanUser(userID string) error {
	return database.Redis.Del(ctx, "banned:"+userID).Err()
}

// IsUserBanned vérifie si un utilisateur est banni
func IsUserBanned(userID string) bool {
	return database.Redis.Exists(ctx, "banned:"+userID).Val() > 0
}
