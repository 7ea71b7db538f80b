package product

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"libro_back_end/internal/database"
	"libro_back_end/internal/models"
	"libro_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

// SearchProducts interroge Elasticsearch en priorité, avec repli sur un
// scan Scylla si l'index est indisponible.
func SearchProducts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre q manquant"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	// 🔎 1️⃣ Recherche dans Elasticsearch (prioritaire)
	if results, err := services.SearchProducts(query, limit); err == nil {
		c.JSON(http.StatusOK, gin.H{"results": results, "source": "elasticsearch"})
		return
	}

	// 2️⃣ Repli : scan du catalogue
	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	iter := session.Query(`SELECT ` + productColumns + ` FROM products`).WithContext(ctx).Iter()

	needle := strings.ToLower(query)
	var results []models.Product
	for {
		p, err := scanProductFromIter(iter)
		if p == nil || err != nil {
			break
		}
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Author), needle) ||
			strings.Contains(strings.ToLower(p.Publisher), needle) {
			results = append(results, *p)
		}
		if len(results) >= limit && limit > 0 {
			break
		}
	}
	iter.Close()

	c.JSON(http.StatusOK, gin.H{"results": results, "source": "scylladb"})
}
