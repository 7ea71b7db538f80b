// Package order expose les endpoints de commande : passage en caisse,
// historique et factures.
package order

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"libro_back_end/internal/cache"
	"libro_back_end/internal/checkout"
	"libro_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

var checkoutService = checkout.NewService(
	checkout.ScyllaProductReader{},
	checkout.ScyllaCartReader{},
	checkout.ScyllaOrderWriter{},
	nil, // verrou Redis injecté au démarrage, après connexion
)

// InitCheckout branche le verrou panier une fois Redis connecté.
func InitCheckout() {
	checkoutService = checkout.NewService(
		checkout.ScyllaProductReader{},
		checkout.ScyllaCartReader{},
		checkout.ScyllaOrderWriter{},
		checkout.NewRedisCartLocker(),
	)
}

// Checkout transforme les lignes sélectionnées du panier en commande.
// Toute la logique (verrou, prix gelés, écriture atomique) vit dans le
// service ; le handler ne fait que traduire les erreurs en HTTP.
func Checkout(c *gin.Context) {
	userID := c.GetString("user_id")

	var req checkout.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkout.RequestDeadline)
	defer cancel()

	order, err := checkoutService.Checkout(ctx, userID, req)
	if err != nil {
		var vErr *checkout.ValidationError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Reason, "field": vErr.Field})
		case errors.Is(err, checkout.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide"})
		case errors.Is(err, checkout.ErrNoValidSelection):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Aucune ligne sélectionnée valide"})
		case errors.Is(err, checkout.ErrCartLocked):
			c.JSON(http.StatusConflict, gin.H{"error": "Un passage en caisse est déjà en cours"})
		case errors.Is(err, checkout.ErrProductGone):
			c.JSON(http.StatusConflict, gin.H{"error": "Un produit du panier n'est plus disponible"})
		case errors.Is(err, checkout.ErrInsufficientStock):
			c.JSON(http.StatusConflict, gin.H{"error": "Stock insuffisant pour un produit du panier"})
		default:
			log.Printf("❌ Checkout échoué pour %s: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur passage en caisse"})
		}
		return
	}

	// Les lignes consommées ont disparu : la projection panier doit suivre.
	cache.InvalidateCartView(ctx, userID, "updated")

	// Confirmation par email avec facture, hors du chemin critique.
	go sendOrderConfirmation(c.GetString("email"), order.ID.String())

	c.JSON(http.StatusCreated, order)
}

func sendOrderConfirmation(email, orderID string) {
	if email == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	order, err := loadOrderWithItems(ctx, orderID)
	if err != nil {
		log.Printf("⚠️ Commande %s illisible pour l'email de confirmation: %v", orderID, err)
		return
	}

	pdf, err := utils.GenerateInvoicePDF(*order)
	if err != nil {
		log.Printf("⚠️ Facture PDF non générée pour %s: %v", order.OrderNumber, err)
		pdf = nil // l'email part quand même, sans pièce jointe
	}

	html := utils.GenerateOrderConfirmationHTML(*order, email)
	if err := utils.SendConfirmationEmail(email, "Confirmation de votre commande "+order.OrderNumber, html, pdf); err != nil {
		log.Printf("⚠️ Email de confirmation non envoyé pour %s: %v", order.OrderNumber, err)
		return
	}
	log.Printf("📧 Confirmation envoyée à %s pour la commande %s", email, order.OrderNumber)
}
