package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Product struct {
	ID          gocql.UUID `json:"id" db:"product_id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Author      string     `json:"author" db:"author"`
	Publisher   string     `json:"publisher,omitempty" db:"publisher"`
	Price       Cents      `json:"price" db:"price"`
	Stock       int        `json:"stock" db:"stock"`
	Category    string     `json:"category,omitempty" db:"category"`
	ImageURLs   []string   `json:"image_urls" db:"image_urls"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
