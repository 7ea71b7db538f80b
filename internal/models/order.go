package models

import (
	"time"

	"github.com/gocql/gocql"
)

const (
	OrderStatusPending   = "PENDING"
	OrderStatusPaid      = "PAID"
	OrderStatusCancelled = "CANCELLED"
)

type Order struct {
	ID               gocql.UUID  `json:"id"`
	OrderNumber      string      `json:"order_number"`
	UserID           string      `json:"user_id"`
	RecipientName    string      `json:"recipient_name"`
	RecipientPhone   string      `json:"recipient_phone"`
	RecipientAddress string      `json:"recipient_address"`
	TotalPrice       Cents       `json:"total_price"`
	Status           string      `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
	Items            []OrderItem `json:"items"`
}

// OrderItem fige le prix unitaire du produit au moment du checkout.
// TotalPrice est calculé une seule fois à la création, jamais relu du client.
type OrderItem struct {
	ItemID      gocql.UUID `json:"item_id"`
	OrderID     gocql.UUID `json:"order_id"`
	ProductID   gocql.UUID `json:"product_id"`
	ProductName string     `json:"product_name"`
	Quantity    int        `json:"quantity"`
	UnitPrice   Cents      `json:"unit_price"`
	TotalPrice  Cents      `json:"total_price"`
}
