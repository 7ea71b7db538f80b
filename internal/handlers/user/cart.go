package user

import (
	"context"
	"net/http"
	"time"

	"libro_back_end/internal/cache"
	"libro_back_end/internal/database"
	"libro_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// Le panier de référence vit dans ScyllaDB (cart_lines) ; Redis n'en garde
// qu'une projection d'affichage, reconstruite à la demande.

func GetCart(c *gin.Context) {
	userID := c.GetString("user_id")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if view := cache.GetCartView(ctx, userID); view != nil {
		c.JSON(http.StatusOK, view)
		return
	}

	view, err := rebuildCartView(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}
	c.JSON(http.StatusOK, view)
}

func AddToCart(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		ProductID string `json:"product_id" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	productID, err := uuid.Parse(input.ProductID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID produit invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	productsSession, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	var stock int
	if err := productsSession.Query(`SELECT stock FROM products WHERE product_id = ?`, gocql.UUID(productID)).
		WithContext(ctx).Scan(&stock); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// Une seule ligne par produit : un nouvel ajout fusionne la quantité.
	lines, err := readCartLines(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	quantity := input.Quantity
	lineID := gocql.TimeUUID()
	for _, line := range lines {
		if line.ProductID == gocql.UUID(productID) {
			lineID = line.LineID
			quantity += line.Quantity
			break
		}
	}

	if stock < quantity {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock insuffisant"})
		return
	}

	if err := session.Query(`INSERT INTO cart_lines (user_id, line_id, product_id, quantity, added_at)
		VALUES (?, ?, ?, ?, ?)`,
		userID, lineID, gocql.UUID(productID), quantity, time.Now().UTC()).
		WithContext(ctx).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur ajout panier"})
		return
	}

	cache.InvalidateCartView(ctx, userID, "updated")
	view, _ := rebuildCartView(ctx, userID)
	c.JSON(http.StatusOK, view)
}

func UpdateCartLine(c *gin.Context) {
	userID := c.GetString("user_id")

	lineID, err := gocql.ParseUUID(c.Param("lineId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID ligne invalide"})
		return
	}

	var input struct {
		Quantity int `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	line, err := findCartLine(ctx, userID, lineID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ligne de panier introuvable"})
		return
	}

	productsSession, err := database.GetProductsSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}
	var stock int
	if err := productsSession.Query(`SELECT stock FROM products WHERE product_id = ?`, line.ProductID).
		WithContext(ctx).Scan(&stock); err == nil && stock < input.Quantity {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stock insuffisant"})
		return
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}
	if err := session.Query(`UPDATE cart_lines SET quantity = ? WHERE user_id = ? AND line_id = ?`,
		input.Quantity, userID, lineID).WithContext(ctx).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour panier"})
		return
	}

	cache.InvalidateCartView(ctx, userID, "updated")
	view, _ := rebuildCartView(ctx, userID)
	c.JSON(http.StatusOK, view)
}

func RemoveCartLine(c *gin.Context) {
	userID := c.GetString("user_id")

	lineID, err := gocql.ParseUUID(c.Param("lineId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID ligne invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := findCartLine(ctx, userID, lineID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ligne de panier introuvable"})
		return
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}
	if err := session.Query(`DELETE FROM cart_lines WHERE user_id = ? AND line_id = ?`,
		userID, lineID).WithContext(ctx).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression ligne"})
		return
	}

	cache.InvalidateCartView(ctx, userID, "updated")
	view, _ := rebuildCartView(ctx, userID)
	c.JSON(http.StatusOK, view)
}

func ClearCart(c *gin.Context) {
	userID := c.GetString("user_id")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}
	if err := session.Query(`DELETE FROM cart_lines WHERE user_id = ?`, userID).
		WithContext(ctx).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vidage panier"})
		return
	}

	cache.InvalidateCartView(ctx, userID, "cleared")
	c.JSON(http.StatusOK, gin.H{"items": []models.CartViewItem{}, "total": 0, "count": 0})
}

// ================== HELPERS ==================

func readCartLines(ctx context.Context, userID string) ([]models.CartLine, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT line_id, product_id, quantity, added_at FROM cart_lines WHERE user_id = ?`, userID).
		WithContext(ctx).Iter()

	var lines []models.CartLine
	var line models.CartLine
	for iter.Scan(&line.LineID, &line.ProductID, &line.Quantity, &line.AddedAt) {
		line.UserID = userID
		lines = append(lines, line)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return lines, nil
}

func findCartLine(ctx context.Context, userID string, lineID gocql.UUID) (*models.CartLine, error) {
	lines, err := readCartLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		if line.LineID == lineID {
			return &line, nil
		}
	}
	return nil, gocql.ErrNotFound
}

// rebuildCartView recompose la projection prix/noms depuis le catalogue et
// la repose dans Redis.
func rebuildCartView(ctx context.Context, userID string) (*models.CartView, error) {
	lines, err := readCartLines(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := models.CartView{Items: []models.CartViewItem{}}
	if len(lines) == 0 {
		cache.SetCartView(ctx, userID, view)
		return &view, nil
	}

	productsSession, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	for _, line := range lines {
		var name string
		var price int64
		var imageURLs []string
		if err := productsSession.Query(`SELECT name, price, image_urls FROM products WHERE product_id = ?`, line.ProductID).
			WithContext(ctx).Scan(&name, &price, &imageURLs); err != nil {
			// Produit retiré du catalogue : la ligne reste mais sans prix,
			// le checkout la refusera proprement.
			continue
		}

		imageURL := ""
		if len(imageURLs) > 0 {
			imageURL = imageURLs[0]
		}

		lineTotal := models.Cents(price).MulQty(line.Quantity)
		view.Items = append(view.Items, models.CartViewItem{
			LineID:    line.LineID.String(),
			ProductID: line.ProductID.String(),
			Name:      name,
			Price:     models.Cents(price),
			Quantity:  line.Quantity,
			LineTotal: lineTotal,
			ImageURL:  imageURL,
		})
		view.Total += lineTotal
	}
	view.Count = len(view.Items)

	cache.SetCartView(ctx, userID, view)
	return &view, nil
}
