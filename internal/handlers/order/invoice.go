package order

import (
	"context"
	"net/http"
	"time"

	"libro_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

// DownloadInvoice génère la facture PDF de la commande à la volée
// (rendu chromedp de la page facture, QR de paiement inclus).
func DownloadInvoice(c *gin.Context) {
	userID := c.GetString("user_id")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	order, err := loadOrderWithItems(ctx, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}
	if order.UserID != userID && c.GetString("role") != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cette commande ne vous appartient pas"})
		return
	}

	pdf, err := utils.GenerateInvoicePDF(*order)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération facture"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="facture_`+order.OrderNumber+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
