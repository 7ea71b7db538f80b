package utils

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"libro_back_end/internal/database"
	"libro_back_end/internal/models"
)

// Actions d'audit prédéfinies
const (
	ActionProductCreate      = "product.create"
	ActionProductUpdate      = "product.update"
	ActionProductPriceChange = "product.price_change"
	ActionProductDelete      = "product.delete"
	ActionStockUpdate        = "stock.update"

	ActionUserBan   = "user.ban"
	ActionUserUnban = "user.unban"

	ActionFAQCreate = "faq.create"
	ActionFAQUpdate = "faq.update"
	ActionFAQDelete = "faq.delete"
)

// Resources d'audit
const (
	ResourceProduct   = "product"
	ResourceInventory = "inventory"
	ResourceUser      = "user"
	ResourceSupport   = "support"
)

// ProductUpdateAction distingue un changement de prix d'une simple mise à
// jour : les changements de prix portent leur propre action pour que le
// filtre d'audit les isole.
func ProductUpdateAction(oldPrice, newPrice models.Cents) string {
	if oldPrice != newPrice {
		return ActionProductPriceChange
	}
	return ActionProductUpdate
}

// LogAction enregistre une action réussie dans les logs d'audit
func LogAction(c *gin.Context, action, resource, resourceID string, oldValue, newValue interface{}) {
	entry := newAuditEntry(c, action, resource, resourceID)
	entry.OldValue = marshalAuditValue(oldValue)
	entry.NewValue = marshalAuditValue(newValue)
	entry.Success = true

	go writeAuditEntry(entry)
}

// LogFailedAction enregistre une action échouée dans les logs d'audit
func LogFailedAction(c *gin.Context, action, resource, resourceID, errorMsg string) {
	entry := newAuditEntry(c, action, resource, resourceID)
	entry.ErrorMsg = errorMsg

	go writeAuditEntry(entry)
}

// newAuditEntry capture le contexte de la requête avant de quitter la
// goroutine du handler : gin.Context n'est pas sûr hors de celle-ci.
func newAuditEntry(c *gin.Context, action, resource, resourceID string) models.AuditLog {
	return models.AuditLog{
		ID:         gocql.TimeUUID(),
		UserID:     c.GetString("user_id"),
		UserEmail:  c.GetString("email"),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IPAddress:  c.ClientIP(),
		UserAgent:  c.GetHeader("User-Agent"),
		Timestamp:  time.Now().UTC(),
	}
}

func marshalAuditValue(v interface{}) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func writeAuditEntry(entry models.AuditLog) {
	session, err := database.GetUsersSession()
	if err != nil {
		log.Printf("❌ Erreur enregistrement log audit: %v", err)
		return
	}

	err = session.Query(`INSERT INTO audit_logs (id, user_id, user_email, action, resource, resource_id,
		old_value, new_value, ip_address, user_agent, success, error_msg, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.UserEmail, entry.Action, entry.Resource, entry.ResourceID,
		entry.OldValue, entry.NewValue, entry.IPAddress, entry.UserAgent, entry.Success,
		entry.ErrorMsg, entry.Timestamp,
	).Exec()
	if err != nil {
		log.Printf("❌ Erreur enregistrement log audit: %v", err)
	}
}
