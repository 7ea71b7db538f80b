// Package admin regroupe les endpoints réservés aux administrateurs.
package admin

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"libro_back_end/internal/cache"
	"libro_back_end/internal/stats"
	"libro_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

var statsService = stats.NewService(stats.ScyllaSource{})

// Dashboard : GET /api/admin/stats/dashboard
func Dashboard(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	dash, err := statsService.Dashboard(ctx, time.Now().UTC())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur calcul statistiques"})
		return
	}
	c.JSON(http.StatusOK, dash)
}

// ProductRanking : GET /api/admin/stats/rankings?from=2025-01-01&to=2025-01-31&limit=10
// Sans bornes : le classement du jour.
func ProductRanking(c *gin.Context) {
	today := time.Now().UTC()
	from, to := today, today

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre from invalide (AAAA-MM-JJ)"})
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre to invalide (AAAA-MM-JJ)"})
			return
		}
		to = parsed
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La borne to précède from"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ranking, err := statsService.Ranking(ctx, from, to, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur calcul classement"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rankings": ranking})
}

// ================== MODÉRATION ==================

func BanUser(c *gin.Context) {
	targetID := c.Param("id")
	if err := cache.BanUser(targetID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur bannissement"})
		return
	}
	_ = cache.DeleteRefreshToken(targetID)
	utils.LogAction(c, utils.ActionUserBan, utils.ResourceUser, targetID, nil, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Utilisateur banni", "user_id": targetID})
}

func UnbanUser(c *gin.Context) {
	targetID := c.Param("id")
	if err := cache.UnbanUser(targetID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur réhabilitation"})
		return
	}
	utils.LogAction(c, utils.ActionUserUnban, utils.ResourceUser, targetID, nil, nil)
	c.JSON(http.StatusOK, gin.H{"message": "Utilisateur réhabilité", "user_id": targetID})
}
