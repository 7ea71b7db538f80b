// Package checkout convertit des lignes de panier en commande durable :
// prix unitaires figés au moment du checkout, total calculé côté serveur,
// purge des lignes consommées atomique avec la création de la commande.
package checkout

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"time"

	"libro_back_end/internal/models"

	"github.com/gocql/gocql"
)

// ProductReader lit un instantané prix/stock du catalogue.
type ProductReader interface {
	GetProduct(ctx context.Context, id gocql.UUID) (*models.Product, error)
}

// CartReader lit les lignes du panier d'un utilisateur.
type CartReader interface {
	GetLines(ctx context.Context, userID string) ([]models.CartLine, error)
}

// OrderWriter persiste la commande. CreateOrder doit écrire la commande,
// ses lignes ET la suppression des lignes de panier consommées en une
// seule écriture tout-ou-rien.
type OrderWriter interface {
	ReserveOrderNumber(ctx context.Context, number string) (bool, error)
	CreateOrder(ctx context.Context, order *models.Order, consumedLineIDs []gocql.UUID) error
}

// CartLocker sérialise les checkouts d'un même utilisateur. Le verrou est
// le point d'exclusion : chaque ligne de panier est consommée par au plus
// une commande.
type CartLocker interface {
	LockCart(ctx context.Context, userID string) (func(), error)
}

type Request struct {
	SelectedLineIDs  []string `json:"selected_line_ids"`
	RecipientName    string   `json:"recipient_name"`
	RecipientPhone   string   `json:"recipient_phone"`
	RecipientAddress string   `json:"recipient_address"`
}

type Service struct {
	products ProductReader
	carts    CartReader
	orders   OrderWriter
	locker   CartLocker
}

func NewService(products ProductReader, carts CartReader, orders OrderWriter, locker CartLocker) *Service {
	return &Service{
		products: products,
		carts:    carts,
		orders:   orders,
		locker:   locker,
	}
}

// Checkout convertit les lignes sélectionnées du panier de userID en commande.
// Toute erreur avant l'écriture finale laisse panier et commandes intacts :
// rien n'est écrit tant que la commande complète n'est pas calculée.
func (s *Service) Checkout(ctx context.Context, userID string, req Request) (*models.Order, error) {
	if verr := ValidateRecipient(req.RecipientName, req.RecipientPhone, req.RecipientAddress); verr != nil {
		return nil, verr
	}
	if len(req.SelectedLineIDs) == 0 {
		return nil, &ValidationError{Field: "selected_line_ids", Reason: "aucune ligne sélectionnée"}
	}

	// Verrou exclusif sur le panier : un checkout concurrent attend ici,
	// relit le panier et trouve ses lignes déjà consommées.
	unlock, err := s.locker.LockCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	lines, err := s.carts.GetLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lecture panier: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	selected := filterSelected(lines, req.SelectedLineIDs)
	if len(selected) == 0 {
		return nil, ErrNoValidSelection
	}

	number, err := s.reserveNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:               gocql.TimeUUID(),
		OrderNumber:      number,
		UserID:           userID,
		RecipientName:    req.RecipientName,
		RecipientPhone:   req.RecipientPhone,
		RecipientAddress: req.RecipientAddress,
		Status:           models.OrderStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	consumed := make([]gocql.UUID, 0, len(selected))
	var total models.Cents

	for _, line := range selected {
		product, err := s.products.GetProduct(ctx, line.ProductID)
		if errors.Is(err, ErrProductGone) {
			return nil, fmt.Errorf("%w: %s", ErrProductGone, line.ProductID)
		}
		if err != nil {
			// Panne d'infrastructure, pas un produit disparu : remonter telle
			// quelle pour que le handler réponde 500, pas 409.
			return nil, fmt.Errorf("lecture produit %s: %w", line.ProductID, err)
		}
		if product.Stock < line.Quantity {
			return nil, fmt.Errorf("%w: %s (disponible %d, demandé %d)",
				ErrInsufficientStock, product.Name, product.Stock, line.Quantity)
		}

		// Prix figé : lu maintenant, jamais recalculé même si le produit change.
		lineTotal := product.Price.MulQty(line.Quantity)
		order.Items = append(order.Items, models.OrderItem{
			ItemID:      gocql.TimeUUID(),
			OrderID:     order.ID,
			ProductID:   line.ProductID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.Price,
			TotalPrice:  lineTotal,
		})
		total += lineTotal
		consumed = append(consumed, line.LineID)
	}

	order.TotalPrice = total

	// Unique point d'écriture. Commande, lignes et purge du panier partent
	// dans le même batch : jamais de commande à moitié peuplée ni de panier
	// à moitié vidé.
	if err := s.orders.CreateOrder(ctx, order, consumed); err != nil {
		return nil, fmt.Errorf("écriture commande: %w", err)
	}

	log.Printf("🧾 Commande %s créée pour %s (%d lignes, total %s)",
		order.OrderNumber, userID, len(order.Items), order.TotalPrice.Format())

	return order, nil
}

func filterSelected(lines []models.CartLine, selectedIDs []string) []models.CartLine {
	wanted := make(map[string]bool, len(selectedIDs))
	for _, id := range selectedIDs {
		wanted[id] = true
	}

	var selected []models.CartLine
	for _, line := range lines {
		if wanted[line.LineID.String()] {
			selected = append(selected, line)
		}
	}
	return selected
}

// reserveNumber tire un numéro de commande aléatoire et le réserve.
// Un numéro réservé n'est jamais réutilisé, même si la commande échoue ensuite.
func (s *Service) reserveNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		number, err := randomOrderNumber()
		if err != nil {
			return "", err
		}
		ok, err := s.orders.ReserveOrderNumber(ctx, number)
		if err != nil {
			return "", fmt.Errorf("réservation numéro de commande: %w", err)
		}
		if ok {
			return number, nil
		}
	}
	return "", fmt.Errorf("impossible de réserver un numéro de commande unique")
}

const orderNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomOrderNumber() (string, error) {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, 10)
	for i, b := range buf {
		out[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}
	return "ORD-" + string(out), nil
}
