package cache

import (
	"context"
	"encoding/json"
	"time"

	"libro_back_end/internal/database"
	"libro_back_end/internal/models"
)

const CartTTL = 30 * 24 * time.Hour // 30 jours

// GetCartView récupère la projection du panier depuis Redis (nil si absente)
func GetCartView(ctx context.Context, userID string) *models.CartView {
	data, err := database.Redis.Get(ctx, "cart:"+userID).Result()
	if err != nil || data == "" {
		return nil
	}

	var view models.CartView
	if err := json.Unmarshal([]byte(data), &view); err != nil {
		return nil
	}
	return &view
}

// SetCartView met en cache la projection du panier
func SetCartView(ctx context.Context, userID string, view models.CartView) {
	data, err := json.Marshal(view)
	if err != nil {
		return
	}
	database.Redis.Set(ctx, "cart:"+userID, data, CartTTL)
}

// InvalidateCartView vide le cache et notifie les websockets abonnés.
// event vaut "updated" ou "cleared".
func InvalidateCartView(ctx context.Context, userID, event string) {
	database.Redis.Del(ctx, "cart:"+userID)
	database.Redis.Publish(ctx, "cart-events:"+userID, event)
}
