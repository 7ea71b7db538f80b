// Package payment modélise une tentative de paiement par commande et ses
// transitions d'état : PENDING → SUCCESS/FAIL, puis éventuellement CANCEL.
// La table de transitions ci-dessous est la seule autorité — aucun handler
// ne change un statut sans passer par elle.
package payment

import "libro_back_end/internal/models"

type Event string

const (
	// EventResolveSuccess / EventResolveFail : résolution par la passerelle.
	// Synchrone avec la passerelle mock, mais événement de premier rang pour
	// qu'un webhook asynchrone puisse le déclencher sans toucher à la machine.
	EventResolveSuccess Event = "resolve_success"
	EventResolveFail    Event = "resolve_fail"

	// EventCancel : annulation demandée par l'utilisateur.
	EventCancel Event = "cancel"
)

var transitions = map[models.PaymentStatus]map[Event]models.PaymentStatus{
	models.PaymentPending: {
		EventResolveSuccess: models.PaymentSuccess,
		EventResolveFail:    models.PaymentFail,
		EventCancel:         models.PaymentCancel, // retrait avant résolution
	},
	models.PaymentSuccess: {
		EventCancel: models.PaymentCancel, // équivalent remboursement
	},
	// FAIL et CANCEL sont terminaux : aucune entrée.
}

// Raisons spécifiques des refus, lisibles par l'utilisateur.
var rejectionReasons = map[models.PaymentStatus]map[Event]string{
	models.PaymentFail: {
		EventCancel: "un paiement échoué ne peut pas être annulé",
	},
	models.PaymentCancel: {
		EventCancel: "paiement déjà annulé",
	},
}

// Next applique la table de transitions. Retourne le nouvel état ou une
// *InvalidTransitionError portant la raison du refus.
func Next(from models.PaymentStatus, event Event) (models.PaymentStatus, error) {
	if to, ok := transitions[from][event]; ok {
		return to, nil
	}

	reason := "transition non autorisée depuis l'état " + string(from)
	if r, ok := rejectionReasons[from][event]; ok {
		reason = r
	}
	return from, &InvalidTransitionError{From: from, Event: event, Reason: reason}
}
