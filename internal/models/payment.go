package models

import (
	"time"

	"github.com/gocql/gocql"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFail    PaymentStatus = "FAIL"
	PaymentCancel  PaymentStatus = "CANCEL"
)

type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "CARD"
	PaymentMethodBank   PaymentMethod = "BANK"
	PaymentMethodMobile PaymentMethod = "MOBILE"
)

// ValidPaymentMethod vérifie qu'une méthode envoyée par le client est connue.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCard, PaymentMethodBank, PaymentMethodMobile:
		return true
	}
	return false
}

type Payment struct {
	ID             gocql.UUID    `json:"id"`
	OrderID        gocql.UUID    `json:"order_id"`
	UserID         string        `json:"user_id"`
	Method         PaymentMethod `json:"method"`
	Amount         Cents         `json:"amount"`
	Status         PaymentStatus `json:"status"`
	TransactionRef string        `json:"transaction_ref,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
