package checkout

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart : le panier ne contient aucune ligne.
	ErrEmptyCart = errors.New("le panier est vide")

	// ErrNoValidSelection : aucun id sélectionné ne correspond à une ligne
	// du panier de l'appelant (état client périmé ou lignes déjà consommées
	// par un checkout concurrent).
	ErrNoValidSelection = errors.New("aucune ligne valide dans la sélection")

	// ErrCartLocked : impossible d'obtenir le verrou panier dans le délai imparti.
	ErrCartLocked = errors.New("un autre checkout est en cours sur ce panier")

	// ErrProductGone : un produit référencé par le panier n'existe plus.
	ErrProductGone = errors.New("produit introuvable")

	// ErrInsufficientStock : stock insuffisant pour une des lignes.
	ErrInsufficientStock = errors.New("stock insuffisant")
)

// ValidationError signale un champ destinataire (ou une sélection) malformé.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation %s: %s", e.Field, e.Reason)
}
