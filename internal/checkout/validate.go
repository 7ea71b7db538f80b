package checkout

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Numéro de mobile attendu côté destinataire, tirets optionnels.
var phonePattern = regexp.MustCompile(`^01[016789]-?\d{3,4}-?\d{4}$`)

// ValidateRecipient vérifie les champs destinataire d'une demande de checkout.
// Nom entre 2 et 10 caractères, téléphone mobile valide, adresse non vide.
func ValidateRecipient(name, phone, address string) *ValidationError {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < 2 || n > 10 {
		return &ValidationError{Field: "recipient_name", Reason: "le nom doit faire entre 2 et 10 caractères"}
	}

	if !phonePattern.MatchString(strings.TrimSpace(phone)) {
		return &ValidationError{Field: "recipient_phone", Reason: "numéro de mobile invalide"}
	}

	if strings.TrimSpace(address) == "" {
		return &ValidationError{Field: "recipient_address", Reason: "l'adresse est obligatoire"}
	}

	return nil
}
