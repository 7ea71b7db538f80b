package support

import "errors"

var (
	ErrInquiryNotFound = errors.New("demande introuvable")
	ErrFAQNotFound     = errors.New("faq introuvable")

	// ErrForbidden : la demande appartient à un autre utilisateur.
	ErrForbidden = errors.New("cette demande ne vous appartient pas")

	ErrUnknownCategory = errors.New("catégorie inconnue")
	ErrUnknownStatus   = errors.New("statut inconnu")

	ErrEmptyTitle   = errors.New("le titre est obligatoire")
	ErrEmptyContent = errors.New("le contenu est obligatoire")
)
