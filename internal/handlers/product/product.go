package product

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"libro_back_end/internal/database"
	"libro_back_end/internal/models"
	"libro_back_end/internal/services"
	"libro_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

const productColumns = `product_id, name, description, author, publisher, price, stock, category, image_urls, created_at, updated_at`

func scanProduct(scan func(...interface{}) error) (*models.Product, error) {
	var p models.Product
	var price int64
	err := scan(&p.ID, &p.Name, &p.Description, &p.Author, &p.Publisher,
		&price, &p.Stock, &p.Category, &p.ImageURLs, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Price = models.Cents(price)
	return &p, nil
}

// ListProducts liste le catalogue avec pagination simple et filtre
// catégorie optionnel.
func ListProducts(c *gin.Context) {
	category := c.Query("category")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	iter := session.Query(`SELECT `+productColumns+` FROM products`).WithContext(ctx).Iter()

	var products []models.Product
	for {
		p, err := scanProductFromIter(iter)
		if p == nil || err != nil {
			break
		}
		if category != "" && p.Category != category {
			continue
		}
		products = append(products, *p)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture catalogue"})
		return
	}

	total := len(products)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products[start:end],
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

func scanProductFromIter(iter *gocql.Iter) (*models.Product, error) {
	var p models.Product
	var price int64
	if !iter.Scan(&p.ID, &p.Name, &p.Description, &p.Author, &p.Publisher,
		&price, &p.Stock, &p.Category, &p.ImageURLs, &p.CreatedAt, &p.UpdatedAt) {
		return nil, nil
	}
	p.Price = models.Cents(price)
	return &p, nil
}

func GetProduct(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	q := session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, productID).WithContext(ctx)
	p, err := scanProduct(q.Scan)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// ================== ADMIN ==================

type productInput struct {
	Name        string       `json:"name" binding:"required"`
	Description string       `json:"description"`
	Author      string       `json:"author" binding:"required"`
	Publisher   string       `json:"publisher"`
	Price       models.Cents `json:"price" binding:"required,min=1"`
	Stock       int          `json:"stock" binding:"min=0"`
	Category    string       `json:"category"`
	ImageURLs   []string     `json:"image_urls"`
}

func CreateProduct(c *gin.Context) {
	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	p := models.Product{
		ID:          gocql.TimeUUID(),
		Name:        input.Name,
		Description: input.Description,
		Author:      input.Author,
		Publisher:   input.Publisher,
		Price:       input.Price,
		Stock:       input.Stock,
		Category:    input.Category,
		ImageURLs:   input.ImageURLs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := session.Query(`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Author, p.Publisher, int64(p.Price),
		p.Stock, p.Category, p.ImageURLs, p.CreatedAt, p.UpdatedAt).
		WithContext(ctx).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit"})
		return
	}

	// 🔄 Indexation Elasticsearch
	go services.IndexProduct(p)
	utils.LogAction(c, utils.ActionProductCreate, utils.ResourceProduct, p.ID.String(), nil, p)

	log.Printf("📚 Livre ajouté au catalogue: %s (%s)", p.Name, p.ID)
	c.JSON(http.StatusCreated, p)
}

func UpdateProduct(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var input productInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	q := session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, productID).WithContext(ctx)
	existing, err := scanProduct(q.Scan)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	before := *existing

	existing.Name = input.Name
	existing.Description = input.Description
	existing.Author = input.Author
	existing.Publisher = input.Publisher
	existing.Price = input.Price
	existing.Stock = input.Stock
	existing.Category = input.Category
	if input.ImageURLs != nil {
		existing.ImageURLs = input.ImageURLs
	}
	existing.UpdatedAt = time.Now().UTC()

	if err := session.Query(`UPDATE products SET name = ?, description = ?, author = ?, publisher = ?, price = ?, stock = ?, category = ?, image_urls = ?, updated_at = ?
		WHERE product_id = ?`,
		existing.Name, existing.Description, existing.Author, existing.Publisher,
		int64(existing.Price), existing.Stock, existing.Category, existing.ImageURLs,
		existing.UpdatedAt, productID).WithContext(ctx).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit"})
		return
	}

	go services.IndexProduct(*existing)
	// Les changements de prix portent leur propre action dans la trace d'audit.
	utils.LogAction(c, utils.ProductUpdateAction(before.Price, existing.Price),
		utils.ResourceProduct, productID.String(), before, existing)
	c.JSON(http.StatusOK, existing)
}

// UpdateStock ajuste uniquement le stock, sans toucher au reste de la fiche.
func UpdateStock(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	var input struct {
		Stock int `json:"stock" binding:"min=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := session.Query(`UPDATE products SET stock = ?, updated_at = ? WHERE product_id = ?`,
		input.Stock, time.Now().UTC(), productID).WithContext(ctx).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour stock"})
		return
	}

	utils.LogAction(c, utils.ActionStockUpdate, utils.ResourceInventory, productID.String(),
		nil, gin.H{"stock": input.Stock})
	c.JSON(http.StatusOK, gin.H{"message": "Stock mis à jour", "stock": input.Stock})
}

func DeleteProduct(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := session.Query(`DELETE FROM products WHERE product_id = ?`, productID).
		WithContext(ctx).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression produit"})
		return
	}

	go services.RemoveProductFromIndex(productID.String())
	utils.LogAction(c, utils.ActionProductDelete, utils.ResourceProduct, productID.String(), nil, nil)

	log.Printf("🗑️ Livre retiré du catalogue: %s", productID)
	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé"})
}
