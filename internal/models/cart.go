package models

import (
	"time"

	"github.com/gocql/gocql"
)

// CartLine est une ligne du panier persistée côté ScyllaDB.
// Une seule ligne par (user, produit) : un deuxième ajout fusionne la quantité.
type CartLine struct {
	LineID    gocql.UUID `json:"line_id"`
	UserID    string     `json:"user_id"`
	ProductID gocql.UUID `json:"product_id"`
	Quantity  int        `json:"quantity"`
	AddedAt   time.Time  `json:"added_at"`
}

// CartView est la projection du panier mise en cache Redis pour l'affichage.
type CartView struct {
	Items []CartViewItem `json:"items"`
	Total Cents          `json:"total"`
	Count int            `json:"count"`
}

type CartViewItem struct {
	LineID    string `json:"line_id"`
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     Cents  `json:"price"`
	Quantity  int    `json:"quantity"`
	LineTotal Cents  `json:"line_total"`
	ImageURL  string `json:"image_url,omitempty"`
}
