package order

import (
	"context"
	"net/http"
	"time"

	"libro_back_end/internal/database"
	"libro_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// ListMyOrders retourne l'historique de l'utilisateur, du plus récent au
// plus ancien (ordre de clustering de orders_by_user).
func ListMyOrders(c *gin.Context) {
	userID := c.GetString("user_id")

	session, err := database.GetOrdersSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	iter := session.Query(`SELECT order_id, order_number, total_price, status, created_at
		FROM orders_by_user WHERE user_id = ? ORDER BY created_at DESC`, userID).
		WithContext(ctx).Iter()

	var orders []models.Order
	var o models.Order
	var total int64
	for iter.Scan(&o.ID, &o.OrderNumber, &total, &o.Status, &o.CreatedAt) {
		o.UserID = userID
		o.TotalPrice = models.Cents(total)
		orders = append(orders, o)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commandes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "count": len(orders)})
}

// GetMyOrder retourne une commande avec ses lignes, si elle appartient
// bien à l'appelant.
func GetMyOrder(c *gin.Context) {
	userID := c.GetString("user_id")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	order, err := loadOrderWithItems(ctx, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}
	if order.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette commande ne vous appartient pas"})
		return
	}

	c.JSON(http.StatusOK, order)
}

func loadOrderWithItems(ctx context.Context, orderIDParam string) (*models.Order, error) {
	orderID, err := gocql.ParseUUID(orderIDParam)
	if err != nil {
		return nil, err
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var o models.Order
	var total int64
	err = session.Query(`SELECT order_id, order_number, user_id, recipient_name, recipient_phone, recipient_address, total_price, status, created_at, updated_at
		FROM orders WHERE order_id = ?`, orderID).WithContext(ctx).
		Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.RecipientName, &o.RecipientPhone,
			&o.RecipientAddress, &total, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.TotalPrice = models.Cents(total)

	iter := session.Query(`SELECT item_id, product_id, product_name, quantity, unit_price, total_price
		FROM order_items WHERE order_id = ?`, orderID).WithContext(ctx).Iter()

	var item models.OrderItem
	var unitPrice, itemTotal int64
	for iter.Scan(&item.ItemID, &item.ProductID, &item.ProductName, &item.Quantity, &unitPrice, &itemTotal) {
		item.OrderID = orderID
		item.UnitPrice = models.Cents(unitPrice)
		item.TotalPrice = models.Cents(itemTotal)
		o.Items = append(o.Items, item)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	return &o, nil
}
