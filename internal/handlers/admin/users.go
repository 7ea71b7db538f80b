package admin

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"libro_back_end/internal/cache"
	"libro_back_end/internal/database"

	"github.com/gin-gonic/gin"
)

// ListUsers : GET /api/admin/users?page=1&limit=50
// Scan complet du keyspace utilisateurs, mots de passe exclus.
func ListUsers(c *gin.Context) {
	pageNum, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limitNum, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if pageNum < 1 {
		pageNum = 1
	}
	if limitNum < 1 || limitNum > 200 {
		limitNum = 50
	}

	session, err := database.GetUsersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	iter := session.Query(`SELECT user_id, email, name, role, provider, is_active, created_at
		FROM users`).WithContext(ctx).Iter()

	var users []gin.H
	var userID, email, name, role, provider string
	var isActive bool
	var createdAt time.Time

	for iter.Scan(&userID, &email, &name, &role, &provider, &isActive, &createdAt) {
		users = append(users, gin.H{
			"user_id":    userID,
			"email":      email,
			"name":       name,
			"role":       role,
			"provider":   provider,
			"is_active":  isActive,
			"is_banned":  cache.IsUserBanned(userID),
			"created_at": createdAt,
		})
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture utilisateurs"})
		return
	}

	total := len(users)
	start := (pageNum - 1) * limitNum
	end := start + limitNum
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users[start:end],
		"pagination": gin.H{
			"page":        pageNum,
			"limit":       limitNum,
			"total":       total,
			"total_pages": (total + limitNum - 1) / limitNum,
		},
	})
}
