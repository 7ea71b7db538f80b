// Package payment expose la passerelle de paiement simulée sur HTTP.
package payment

import (
	"context"
	"errors"
	"net/http"
	"time"

	paysvc "libro_back_end/internal/payment"

	"libro_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

var service = paysvc.NewService(
	paysvc.ScyllaRepository{},
	paysvc.ScyllaOrderReader{},
	paysvc.NewMockGateway(),
)

// InitiatePayment crée et résout une tentative de paiement pour une
// commande de l'utilisateur.
func InitiatePayment(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		OrderID string `json:"order_id" binding:"required"`
		Method  string `json:"method" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	orderID, err := gocql.ParseUUID(input.OrderID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID commande invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pay, err := service.Initiate(ctx, userID, orderID, models.PaymentMethod(input.Method))
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pay)
}

// CancelPayment demande l'annulation ; la machine à états décide.
func CancelPayment(c *gin.Context) {
	userID := c.GetString("user_id")

	paymentID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID paiement invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pay, err := service.Cancel(ctx, userID, paymentID)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, pay)
}

// ListMyPayments liste les paiements de l'utilisateur, filtrables par
// statut (?status=SUCCESS).
func ListMyPayments(c *gin.Context) {
	userID := c.GetString("user_id")
	status := models.PaymentStatus(c.Query("status"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	payments, err := service.ListForUser(ctx, userID, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture paiements"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments, "count": len(payments)})
}

func GetMyPayment(c *gin.Context) {
	userID := c.GetString("user_id")

	paymentID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID paiement invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pay, err := service.GetForUser(ctx, userID, paymentID)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, pay)
}

func respondPaymentError(c *gin.Context, err error) {
	var invalid *paysvc.InvalidTransitionError
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusConflict, gin.H{"error": invalid.Reason})
	case errors.Is(err, paysvc.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, paysvc.ErrDuplicatePayment):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, paysvc.ErrOrderNotFound), errors.Is(err, paysvc.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, paysvc.ErrUnknownMethod):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Méthode de paiement inconnue"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur paiement"})
	}
}
