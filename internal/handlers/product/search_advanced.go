package product

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"libro_back_end/internal/database"
	"libro_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// SearchProductsAdvanced recherche avancée avec filtres et tri.
// Les prix sont en centimes (min_price / max_price).
func SearchProductsAdvanced(c *gin.Context) {
	query := c.Query("q")
	category := c.Query("category")
	minPrice := c.Query("min_price")
	maxPrice := c.Query("max_price")
	sortBy := c.DefaultQuery("sort", "relevance")

	pageNum, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limitNum, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if pageNum < 1 {
		pageNum = 1
	}
	if limitNum < 1 || limitNum > 100 {
		limitNum = 20
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	iter := session.Query(`SELECT ` + productColumns + ` FROM products`).WithContext(ctx).Iter()

	var products []models.Product
	for {
		p, err := scanProductFromIter(iter)
		if p == nil || err != nil {
			break
		}
		products = append(products, *p)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture catalogue"})
		return
	}

	// Filtrer par catégorie
	if category != "" {
		var filtered []models.Product
		for _, p := range products {
			if strings.EqualFold(p.Category, category) {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	// Filtrer par prix (bornes en centimes)
	if minPrice != "" || maxPrice != "" {
		minCents, _ := strconv.ParseInt(minPrice, 10, 64)
		maxCents, _ := strconv.ParseInt(maxPrice, 10, 64)

		var filtered []models.Product
		for _, p := range products {
			if minPrice != "" && p.Price < models.Cents(minCents) {
				continue
			}
			if maxPrice != "" && p.Price > models.Cents(maxCents) {
				continue
			}
			filtered = append(filtered, p)
		}
		products = filtered
	}

	// Filtrer par texte libre
	if query != "" {
		needle := strings.ToLower(query)
		var filtered []models.Product
		for _, p := range products {
			if strings.Contains(strings.ToLower(p.Name), needle) ||
				strings.Contains(strings.ToLower(p.Author), needle) ||
				strings.Contains(strings.ToLower(p.Publisher), needle) ||
				strings.Contains(strings.ToLower(p.Description), needle) {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	switch sortBy {
	case "price_asc":
		sort.Slice(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case "price_desc":
		sort.Slice(products, func(i, j int) bool { return products[i].Price > products[j].Price })
	case "newest":
		sort.Slice(products, func(i, j int) bool { return products[j].CreatedAt.Before(products[i].CreatedAt) })
	}

	// Pagination
	total := len(products)
	start := (pageNum - 1) * limitNum
	end := start + limitNum
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products[start:end],
		"pagination": gin.H{
			"page":        pageNum,
			"limit":       limitNum,
			"total":       total,
			"total_pages": (total + limitNum - 1) / limitNum,
		},
		"filters": gin.H{
			"query":     query,
			"category":  category,
			"min_price": minPrice,
			"max_price": maxPrice,
			"sort":      sortBy,
		},
	})
}

// GetProductFilters retourne les filtres disponibles (catégories + bornes de prix)
func GetProductFilters(c *gin.Context) {
	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	iter := session.Query(`SELECT category, price FROM products`).WithContext(ctx).Iter()

	seen := map[string]bool{}
	var categories []string
	var minPrice, maxPrice int64
	first := true

	var category string
	var price int64
	for iter.Scan(&category, &price) {
		if category != "" && !seen[category] {
			seen[category] = true
			categories = append(categories, category)
		}
		if first {
			minPrice, maxPrice = price, price
			first = false
			continue
		}
		if price < minPrice {
			minPrice = price
		}
		if price > maxPrice {
			maxPrice = price
		}
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture catalogue"})
		return
	}
	sort.Strings(categories)

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"price_range": gin.H{
			"min": minPrice,
			"max": maxPrice,
		},
		"sort_options": []gin.H{
			{"value": "relevance", "label": "Pertinence"},
			{"value": "price_asc", "label": "Prix croissant"},
			{"value": "price_desc", "label": "Prix décroissant"},
			{"value": "newest", "label": "Plus récents"},
		},
	})
}
