package payment

import (
	"errors"
	"fmt"

	"libro_back_end/internal/models"
)

var (
	// ErrForbidden : la commande ou le paiement n'appartient pas à l'appelant.
	ErrForbidden = errors.New("cette commande ne vous appartient pas")

	// ErrDuplicatePayment : la commande a déjà un paiement en état SUCCESS.
	ErrDuplicatePayment = errors.New("cette commande est déjà payée")

	// ErrOrderNotFound / ErrPaymentNotFound : référence inexistante.
	ErrOrderNotFound   = errors.New("commande introuvable")
	ErrPaymentNotFound = errors.New("paiement introuvable")

	// ErrUnknownMethod : méthode de paiement non supportée.
	ErrUnknownMethod = errors.New("méthode de paiement inconnue")
)

// InvalidTransitionError porte la raison précise du refus de transition,
// telle que définie par la table d'états.
type InvalidTransitionError struct {
	From   models.PaymentStatus
	Event  Event
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transition interdite (%s, %s): %s", e.From, e.Event, e.Reason)
}
