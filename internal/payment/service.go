package payment

import (
	"context"
	"fmt"
	"log"
	"time"

	"libro_back_end/internal/models"

	"github.com/gocql/gocql"
)

// OrderReader donne au service paiement l'accès lecture/statut des commandes.
type OrderReader interface {
	GetOrder(ctx context.Context, orderID gocql.UUID) (*models.Order, error)
	MarkOrderPaid(ctx context.Context, order *models.Order) error
}

// Repository persiste les paiements (table payments + vues dénormalisées).
type Repository interface {
	Create(ctx context.Context, p *models.Payment) error
	Update(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id gocql.UUID) (*models.Payment, error)
	ListByOrder(ctx context.Context, orderID gocql.UUID) ([]models.Payment, error)
	ListByUser(ctx context.Context, userID string) ([]models.Payment, error)
}

type Service struct {
	payments Repository
	orders   OrderReader
	gateway  Gateway
}

func NewService(payments Repository, orders OrderReader, gateway Gateway) *Service {
	return &Service{
		payments: payments,
		orders:   orders,
		gateway:  gateway,
	}
}

// Initiate crée une tentative de paiement PENDING pour la commande puis la
// fait résoudre par la passerelle. Au plus un paiement SUCCESS par commande :
// vérifié avant toute création.
func (s *Service) Initiate(ctx context.Context, userID string, orderID gocql.UUID, method models.PaymentMethod) (*models.Payment, error) {
	if !models.ValidPaymentMethod(method) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}

	existing, err := s.payments.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("lecture paiements existants: %w", err)
	}
	for _, p := range existing {
		if p.Status == models.PaymentSuccess {
			return nil, ErrDuplicatePayment
		}
	}

	now := time.Now().UTC()
	pay := &models.Payment{
		ID:        gocql.TimeUUID(),
		OrderID:   orderID,
		UserID:    userID,
		Method:    method,
		Amount:    order.TotalPrice, // copié du total commande, jamais du client
		Status:    models.PaymentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.payments.Create(ctx, pay); err != nil {
		return nil, fmt.Errorf("création paiement: %w", err)
	}

	// La passerelle mock répond tout de suite ; une vraie passerelle
	// laisserait le paiement en PENDING jusqu'au webhook.
	result, err := s.gateway.Charge(ctx, pay.Amount, method)
	if err != nil {
		log.Printf("⚠️ Passerelle injoignable pour paiement %s: %v", pay.ID, err)
		return pay, nil
	}

	if err := s.Resolve(ctx, pay, result); err != nil {
		return nil, err
	}

	if pay.Status == models.PaymentSuccess {
		if err := s.orders.MarkOrderPaid(ctx, order); err != nil {
			log.Printf("⚠️ Paiement %s réussi mais statut commande non mis à jour: %v", pay.ID, err)
		}
	}

	log.Printf("💳 Paiement %s → %s (commande %s, %s)",
		pay.ID, pay.Status, order.OrderNumber, pay.Amount.Format())

	return pay, nil
}

// Resolve applique le verdict de la passerelle (événement de premier rang :
// un futur webhook l'appellera directement).
func (s *Service) Resolve(ctx context.Context, pay *models.Payment, result GatewayResult) error {
	event := EventResolveFail
	if result.Status == models.PaymentSuccess {
		event = EventResolveSuccess
	}

	next, err := Next(pay.Status, event)
	if err != nil {
		return err
	}

	pay.Status = next
	pay.TransactionRef = result.TransactionRef
	pay.UpdatedAt = time.Now().UTC()

	return s.payments.Update(ctx, pay)
}

// Cancel applique la table de transitions à une demande d'annulation.
// Rappeler Cancel sur un paiement déjà annulé est un refus défini, pas un crash.
func (s *Service) Cancel(ctx context.Context, userID string, paymentID gocql.UUID) (*models.Payment, error) {
	pay, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, ErrPaymentNotFound
	}
	if pay.UserID != userID {
		return nil, ErrForbidden
	}

	next, err := Next(pay.Status, EventCancel)
	if err != nil {
		return nil, err
	}

	pay.Status = next
	pay.UpdatedAt = time.Now().UTC()

	if err := s.payments.Update(ctx, pay); err != nil {
		return nil, fmt.Errorf("mise à jour paiement: %w", err)
	}

	log.Printf("↩️ Paiement %s annulé (utilisateur %s)", pay.ID, userID)
	return pay, nil
}

// ListForUser retourne les paiements de l'utilisateur, filtrables par statut.
func (s *Service) ListForUser(ctx context.Context, userID string, status models.PaymentStatus) ([]models.Payment, error) {
	payments, err := s.payments.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if status == "" {
		return payments, nil
	}

	filtered := payments[:0]
	for _, p := range payments {
		if p.Status == status {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// GetForUser retourne un paiement si l'appelant en est propriétaire.
func (s *Service) GetForUser(ctx context.Context, userID string, paymentID gocql.UUID) (*models.Payment, error) {
	pay, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, ErrPaymentNotFound
	}
	if pay.UserID != userID {
		return nil, ErrForbidden
	}
	return pay, nil
}
