package checkout

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"libro_back_end/internal/database"
	"libro_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/redis/go-redis/v9"
)

// --- Catalogue (keyspace products) ---

type ScyllaProductReader struct{}

func (ScyllaProductReader) GetProduct(ctx context.Context, id gocql.UUID) (*models.Product, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	var p models.Product
	var price int64
	err = session.Query(`SELECT product_id, name, price, stock FROM products WHERE product_id = ?`, id).
		WithContext(ctx).Scan(&p.ID, &p.Name, &price, &p.Stock)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, ErrProductGone
	}
	if err != nil {
		return nil, err
	}
	p.Price = models.Cents(price)
	return &p, nil
}

// --- Panier (keyspace orders) ---

type ScyllaCartReader struct{}

func (ScyllaCartReader) GetLines(ctx context.Context, userID string) ([]models.CartLine, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT line_id, user_id, product_id, quantity, added_at
		FROM cart_lines WHERE user_id = ?`, userID).WithContext(ctx).Iter()

	var lines []models.CartLine
	var line models.CartLine
	for iter.Scan(&line.LineID, &line.UserID, &line.ProductID, &line.Quantity, &line.AddedAt) {
		lines = append(lines, line)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return lines, nil
}

// --- Commandes (keyspace orders) ---

type ScyllaOrderWriter struct{}

// ReserveOrderNumber réserve un numéro via LWT : l'insert n'est appliqué
// que si le numéro n'a jamais servi.
func (ScyllaOrderWriter) ReserveOrderNumber(ctx context.Context, number string) (bool, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return false, err
	}

	applied, err := session.Query(
		`INSERT INTO order_numbers (order_number, reserved_at) VALUES (?, ?) IF NOT EXISTS`,
		number, time.Now().UTC()).WithContext(ctx).
		MapScanCAS(make(map[string]interface{}))
	if err != nil {
		return false, err
	}
	return applied, nil
}

// CreateOrder écrit commande, lignes de commande, vue par utilisateur et
// suppression des lignes de panier consommées dans un seul batch loggé :
// ScyllaDB garantit que toutes ces mutations sont appliquées ou aucune.
func (ScyllaOrderWriter) CreateOrder(ctx context.Context, order *models.Order, consumedLineIDs []gocql.UUID) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	batch := session.NewBatch(gocql.LoggedBatch).WithContext(ctx)

	batch.Query(`INSERT INTO orders (order_id, order_number, user_id, recipient_name, recipient_phone, recipient_address, total_price, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.OrderNumber, order.UserID, order.RecipientName, order.RecipientPhone,
		order.RecipientAddress, int64(order.TotalPrice), order.Status, order.CreatedAt, order.UpdatedAt)

	batch.Query(`INSERT INTO orders_by_user (user_id, created_at, order_id, order_number, total_price, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		order.UserID, order.CreatedAt, order.ID, order.OrderNumber, int64(order.TotalPrice), order.Status)

	day := order.CreatedAt.Format("2006-01-02")
	for _, item := range order.Items {
		batch.Query(`INSERT INTO order_items (order_id, item_id, product_id, product_name, quantity, unit_price, total_price, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			item.OrderID, item.ItemID, item.ProductID, item.ProductName,
			item.Quantity, int64(item.UnitPrice), int64(item.TotalPrice), order.CreatedAt)

		// Vue journalière : chaque ligne vendue atterrit dans la partition
		// de son jour, ce dont le tableau de bord a besoin.
		batch.Query(`INSERT INTO sales_by_day (day, item_id, order_id, product_id, product_name, quantity, total_price, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			day, item.ItemID, item.OrderID, item.ProductID, item.ProductName,
			item.Quantity, int64(item.TotalPrice), order.CreatedAt)
	}

	for _, lineID := range consumedLineIDs {
		batch.Query(`DELETE FROM cart_lines WHERE user_id = ? AND line_id = ?`, order.UserID, lineID)
	}

	if err := session.ExecuteBatch(batch); err != nil {
		return err
	}

	// Les compteurs globaux vivent dans une table counter, qui ne peut pas
	// rejoindre un batch loggé. Une divergence ici n'affecte que les totaux
	// du tableau de bord, jamais la commande elle-même.
	var quantity int64
	for _, item := range order.Items {
		quantity += int64(item.Quantity)
	}
	if err := session.Query(
		`UPDATE sales_totals SET quantity = quantity + ?, revenue = revenue + ? WHERE scope = 'all'`,
		quantity, int64(order.TotalPrice)).WithContext(ctx).Exec(); err != nil {
		log.Printf("⚠️ Compteurs de ventes non mis à jour pour %s: %v", order.OrderNumber, err)
	}

	return nil
}

// --- Verrou panier (Redis) ---

const (
	// RequestDeadline borne un checkout complet côté handler.
	RequestDeadline = 30 * time.Second

	// Le TTL doit survivre au pire batch Scylla (borné par RequestDeadline),
	// sinon le verrou expire en plein checkout et un second entre.
	cartLockTTL  = 2 * RequestDeadline
	cartLockWait = 5 * time.Second
	cartLockPoll = 100 * time.Millisecond
)

// Suppression conditionnelle : seul le détenteur du jeton relâche la clé.
// Un détenteur dont le verrou a expiré ne doit jamais supprimer celui du
// checkout suivant.
var releaseCartLock = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// RedisCartLocker sérialise les checkouts d'un même utilisateur via SET NX.
type RedisCartLocker struct {
	Client *redis.Client
}

func NewRedisCartLocker() *RedisCartLocker {
	return &RedisCartLocker{Client: database.Redis}
}

func (l *RedisCartLocker) LockCart(ctx context.Context, userID string) (func(), error) {
	key := "checkout:lock:" + userID
	token := newLockToken()
	deadline := time.Now().Add(cartLockWait)

	for {
		ok, err := l.Client.SetNX(ctx, key, token, cartLockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("verrou panier: %w", err)
		}
		if ok {
			return func() {
				if err := releaseCartLock.Run(context.Background(), l.Client, []string{key}, token).Err(); err != nil {
					log.Printf("⚠️ Libération verrou panier %s: %v", userID, err)
				}
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrCartLocked
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cartLockPoll):
		}
	}
}

// newLockToken identifie une acquisition de verrou. Chaque checkout tient
// son propre jeton : la libération ne touche jamais le verrou d'un autre.
func newLockToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
