// Package support expose la FAQ et les demandes clients sur HTTP.
package support

import (
	"context"
	"errors"
	"net/http"
	"time"

	"libro_back_end/internal/ai"
	supportsvc "libro_back_end/internal/support"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

var service = supportsvc.NewService(
	supportsvc.ScyllaFAQRepository{},
	supportsvc.ScyllaInquiryRepository{},
	supportsvc.ScyllaReplyRepository{},
	ai.NewGeminiClient(),
)

// ================== FAQ (public) ==================

func ListFAQ(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	faqs, err := service.ListFAQ(ctx, c.Query("category"), false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture FAQ"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"faqs": faqs})
}

// ================== FAQ (admin) ==================

type faqInput struct {
	Category    string `json:"category" binding:"required"`
	Question    string `json:"question" binding:"required"`
	Answer      string `json:"answer" binding:"required"`
	IsPublished bool   `json:"is_published"`
}

func AdminListFAQ(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	faqs, err := service.ListFAQ(ctx, c.Query("category"), true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture FAQ"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"faqs": faqs})
}

func AdminCreateFAQ(c *gin.Context) {
	var input faqInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	faq, err := service.CreateFAQ(ctx, input.Category, input.Question, input.Answer, input.IsPublished)
	if err != nil {
		respondSupportError(c, err)
		return
	}
	c.JSON(http.StatusCreated, faq)
}

func AdminUpdateFAQ(c *gin.Context) {
	faqID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID FAQ invalide"})
		return
	}

	var input faqInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	faq, err := service.UpdateFAQ(ctx, faqID, input.Category, input.Question, input.Answer, input.IsPublished)
	if err != nil {
		respondSupportError(c, err)
		return
	}
	c.JSON(http.StatusOK, faq)
}

func AdminDeleteFAQ(c *gin.Context) {
	faqID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID FAQ invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := service.DeleteFAQ(ctx, faqID); err != nil {
		respondSupportError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "FAQ supprimée"})
}

// ================== DEMANDES (client) ==================

func CreateInquiry(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		Category string `json:"category" binding:"required"`
		Title    string `json:"title" binding:"required"`
		Content  string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	// La réponse automatique Gemini est dans le chemin : timeout large.
	ctx, cancel := context.WithTimeout(context.Background(), 45*time.Second)
	defer cancel()

	inquiry, err := service.CreateInquiry(ctx, userID, input.Category, input.Title, input.Content)
	if err != nil {
		respondSupportError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inquiry)
}

func ListMyInquiries(c *gin.Context) {
	userID := c.GetString("user_id")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	inquiries, err := service.ListInquiries(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture demandes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inquiries": inquiries, "count": len(inquiries)})
}

func GetMyInquiry(c *gin.Context) {
	userID := c.GetString("user_id")

	inquiryID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID demande invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	detail, err := service.GetInquiry(ctx, userID, inquiryID)
	if err != nil {
		respondSupportError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// ================== DEMANDES (admin) ==================

func AdminListInquiries(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	inquiries, err := service.AdminListInquiries(ctx, c.Query("status"))
	if err != nil {
		respondSupportError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inquiries": inquiries, "count": len(inquiries)})
}

func AdminGetInquiry(c *gin.Context) {
	inquiryID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID demande invalide"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	detail, err := service.AdminGetInquiry(ctx, inquiryID)
	if err != nil {
		respondSupportError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func AdminUpdateInquiryStatus(c *gin.Context) {
	inquiryID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID demande invalide"})
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut manquant"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	inquiry, err := service.AdminSetStatus(ctx, inquiryID, input.Status)
	if err != nil {
		respondSupportError(c, err)
		return
	}
	c.JSON(http.StatusOK, inquiry)
}

func AdminReplyToInquiry(c *gin.Context) {
	adminID := c.GetString("user_id")

	inquiryID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID demande invalide"})
		return
	}

	var input struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Contenu manquant"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reply, err := service.AdminReply(ctx, adminID, inquiryID, input.Content)
	if err != nil {
		respondSupportError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reply)
}

func respondSupportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, supportsvc.ErrUnknownCategory),
		errors.Is(err, supportsvc.ErrUnknownStatus),
		errors.Is(err, supportsvc.ErrEmptyTitle),
		errors.Is(err, supportsvc.ErrEmptyContent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, supportsvc.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, supportsvc.ErrInquiryNotFound), errors.Is(err, supportsvc.ErrFAQNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur support"})
	}
}
