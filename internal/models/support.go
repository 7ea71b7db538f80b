package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Catégories partagées FAQ / demandes de support.
const (
	SupportCategoryOrder    = "order"
	SupportCategoryShipping = "shipping"
	SupportCategoryProduct  = "product"
	SupportCategoryPayment  = "payment"
	SupportCategoryAccount  = "account"
	SupportCategoryOther    = "other"
)

func ValidSupportCategory(c string) bool {
	switch c {
	case SupportCategoryOrder, SupportCategoryShipping, SupportCategoryProduct,
		SupportCategoryPayment, SupportCategoryAccount, SupportCategoryOther:
		return true
	}
	return false
}

const (
	InquirySubmitted  = "submitted"
	InquiryInProgress = "in_progress"
	InquiryCompleted  = "completed"
	InquiryOnHold     = "on_hold"
)

type FAQ struct {
	ID          gocql.UUID `json:"id"`
	Category    string     `json:"category"`
	Question    string     `json:"question"`
	Answer      string     `json:"answer"`
	IsPublished bool       `json:"is_published"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Inquiry struct {
	ID        gocql.UUID `json:"id"`
	UserID    string     `json:"user_id"`
	Category  string     `json:"category"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type InquiryReply struct {
	ID        gocql.UUID `json:"id"`
	InquiryID gocql.UUID `json:"inquiry_id"`
	AuthorID  string     `json:"author_id,omitempty"`
	Content   string     `json:"content"`
	IsAdmin   bool       `json:"is_admin"`
	IsAI      bool       `json:"is_ai"`
	CreatedAt time.Time  `json:"created_at"`
}
