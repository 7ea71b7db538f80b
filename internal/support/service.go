// Package support gère la FAQ et les demandes clients, avec réponse
// automatique générée par Gemini à la création d'une demande.
package support

import (
	"context"
	"time"

	"libro_back_end/internal/models"

	"github.com/gocql/gocql"
)

type FAQRepository interface {
	Create(ctx context.Context, f *models.FAQ) error
	Update(ctx context.Context, f *models.FAQ) error
	Delete(ctx context.Context, id gocql.UUID) error
	GetByID(ctx context.Context, id gocql.UUID) (*models.FAQ, error)
	List(ctx context.Context) ([]models.FAQ, error)
}

type InquiryRepository interface {
	Create(ctx context.Context, i *models.Inquiry) error
	Update(ctx context.Context, i *models.Inquiry) error
	GetByID(ctx context.Context, id gocql.UUID) (*models.Inquiry, error)
	ListByUser(ctx context.Context, userID string) ([]models.Inquiry, error)
	ListAll(ctx context.Context) ([]models.Inquiry, error)
}

type ReplyRepository interface {
	Create(ctx context.Context, r *models.InquiryReply) error
	ListByInquiry(ctx context.Context, inquiryID gocql.UUID) ([]models.InquiryReply, error)
}

// Responder génère la réponse automatique. Implémenté par ai.GeminiClient.
type Responder interface {
	AutoReply(ctx context.Context, category, title, body string) string
}

type Service struct {
	faqs      FAQRepository
	inquiries InquiryRepository
	replies   ReplyRepository
	responder Responder
}

func NewService(faqs FAQRepository, inquiries InquiryRepository, replies ReplyRepository, responder Responder) *Service {
	return &Service{
		faqs:      faqs,
		inquiries: inquiries,
		replies:   replies,
		responder: responder,
	}
}

// --- FAQ ---

func (s *Service) CreateFAQ(ctx context.Context, category, question, answer string, published bool) (*models.FAQ, error) {
	if !models.ValidSupportCategory(category) {
		return nil, ErrUnknownCategory
	}
	if question == "" {
		return nil, ErrEmptyTitle
	}
	if answer == "" {
		return nil, ErrEmptyContent
	}

	now := time.Now().UTC()
	f := &models.FAQ{
		ID:          gocql.TimeUUID(),
		Category:    category,
		Question:    question,
		Answer:      answer,
		IsPublished: published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.faqs.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) UpdateFAQ(ctx context.Context, id gocql.UUID, category, question, answer string, published bool) (*models.FAQ, error) {
	f, err := s.faqs.GetByID(ctx, id)
	if err != nil {
		return nil, ErrFAQNotFound
	}
	if !models.ValidSupportCategory(category) {
		return nil, ErrUnknownCategory
	}

	f.Category = category
	f.Question = question
	f.Answer = answer
	f.IsPublished = published
	f.UpdatedAt = time.Now().UTC()

	if err := s.faqs.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) DeleteFAQ(ctx context.Context, id gocql.UUID) error {
	if _, err := s.faqs.GetByID(ctx, id); err != nil {
		return ErrFAQNotFound
	}
	return s.faqs.Delete(ctx, id)
}

// ListFAQ retourne la FAQ, filtrable par catégorie. Les visiteurs ne
// voient que les entrées publiées ; l'admin voit tout.
func (s *Service) ListFAQ(ctx context.Context, category string, includeUnpublished bool) ([]models.FAQ, error) {
	all, err := s.faqs.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.FAQ, 0, len(all))
	for _, f := range all {
		if !includeUnpublished && !f.IsPublished {
			continue
		}
		if category != "" && f.Category != category {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// --- Demandes client ---

// InquiryDetail regroupe une demande et son fil de réponses.
type InquiryDetail struct {
	models.Inquiry
	Replies []models.InquiryReply `json:"replies"`
}

// CreateInquiry enregistre la demande puis y attache aussitôt la réponse
// automatique. L'échec de Gemini n'est jamais bloquant : le Responder
// retourne alors un message générique.
func (s *Service) CreateInquiry(ctx context.Context, userID, category, title, content string) (*models.Inquiry, error) {
	if !models.ValidSupportCategory(category) {
		return nil, ErrUnknownCategory
	}
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if content == "" {
		return nil, ErrEmptyContent
	}

	now := time.Now().UTC()
	inquiry := &models.Inquiry{
		ID:        gocql.TimeUUID(),
		UserID:    userID,
		Category:  category,
		Title:     title,
		Content:   content,
		Status:    models.InquirySubmitted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.inquiries.Create(ctx, inquiry); err != nil {
		return nil, err
	}

	auto := &models.InquiryReply{
		ID:        gocql.TimeUUID(),
		InquiryID: inquiry.ID,
		Content:   s.responder.AutoReply(ctx, category, title, content),
		IsAdmin:   true,
		IsAI:      true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.replies.Create(ctx, auto); err != nil {
		return nil, err
	}

	// La réponse automatique clôt la demande ; le client peut la rouvrir
	// en recréant une demande, l'admin en changeant le statut.
	inquiry.Status = models.InquiryCompleted
	inquiry.UpdatedAt = time.Now().UTC()
	if err := s.inquiries.Update(ctx, inquiry); err != nil {
		return nil, err
	}

	return inquiry, nil
}

func (s *Service) ListInquiries(ctx context.Context, userID string) ([]models.Inquiry, error) {
	return s.inquiries.ListByUser(ctx, userID)
}

func (s *Service) GetInquiry(ctx context.Context, userID string, id gocql.UUID) (*InquiryDetail, error) {
	inquiry, err := s.inquiries.GetByID(ctx, id)
	if err != nil {
		return nil, ErrInquiryNotFound
	}
	if inquiry.UserID != userID {
		return nil, ErrForbidden
	}
	return s.detail(ctx, inquiry)
}

func (s *Service) detail(ctx context.Context, inquiry *models.Inquiry) (*InquiryDetail, error) {
	replies, err := s.replies.ListByInquiry(ctx, inquiry.ID)
	if err != nil {
		return nil, err
	}
	return &InquiryDetail{Inquiry: *inquiry, Replies: replies}, nil
}

// --- Administration ---

func (s *Service) AdminListInquiries(ctx context.Context, statusFilter string) ([]models.Inquiry, error) {
	if statusFilter != "" && !validInquiryStatus(statusFilter) {
		return nil, ErrUnknownStatus
	}

	all, err := s.inquiries.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if statusFilter == "" {
		return all, nil
	}

	out := all[:0]
	for _, i := range all {
		if i.Status == statusFilter {
			out = append(out, i)
		}
	}
	return out, nil
}

func (s *Service) AdminGetInquiry(ctx context.Context, id gocql.UUID) (*InquiryDetail, error) {
	inquiry, err := s.inquiries.GetByID(ctx, id)
	if err != nil {
		return nil, ErrInquiryNotFound
	}
	return s.detail(ctx, inquiry)
}

func (s *Service) AdminSetStatus(ctx context.Context, id gocql.UUID, status string) (*models.Inquiry, error) {
	if !validInquiryStatus(status) {
		return nil, ErrUnknownStatus
	}

	inquiry, err := s.inquiries.GetByID(ctx, id)
	if err != nil {
		return nil, ErrInquiryNotFound
	}

	inquiry.Status = status
	inquiry.UpdatedAt = time.Now().UTC()
	if err := s.inquiries.Update(ctx, inquiry); err != nil {
		return nil, err
	}
	return inquiry, nil
}

// AdminReply attache une réponse d'un agent humain et passe la demande
// en cours de traitement si elle était simplement soumise.
func (s *Service) AdminReply(ctx context.Context, adminID string, inquiryID gocql.UUID, content string) (*models.InquiryReply, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}

	inquiry, err := s.inquiries.GetByID(ctx, inquiryID)
	if err != nil {
		return nil, ErrInquiryNotFound
	}

	reply := &models.InquiryReply{
		ID:        gocql.TimeUUID(),
		InquiryID: inquiryID,
		AuthorID:  adminID,
		Content:   content,
		IsAdmin:   true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.replies.Create(ctx, reply); err != nil {
		return nil, err
	}

	if inquiry.Status == models.InquirySubmitted {
		inquiry.Status = models.InquiryInProgress
		inquiry.UpdatedAt = time.Now().UTC()
		if err := s.inquiries.Update(ctx, inquiry); err != nil {
			return nil, err
		}
	}
	return reply, nil
}

func validInquiryStatus(s string) bool {
	switch s {
	case models.InquirySubmitted, models.InquiryInProgress, models.InquiryCompleted, models.InquiryOnHold:
		return true
	}
	return false
}
