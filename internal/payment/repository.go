package payment

import (
	"context"
	"time"

	"libro_back_end/internal/database"
	"libro_back_end/internal/models"

	"github.com/gocql/gocql"
)

// ScyllaRepository persiste les paiements dans le keyspace orders.
// Chaque écriture alimente payments et ses deux vues dénormalisées
// (payments_by_order, payments_by_user) dans un batch loggé.
type ScyllaRepository struct{}

func (ScyllaRepository) Create(ctx context.Context, p *models.Payment) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	batch := session.NewBatch(gocql.LoggedBatch).WithContext(ctx)

	batch.Query(`INSERT INTO payments (payment_id, order_id, user_id, method, amount, status, transaction_ref, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.OrderID, p.UserID, string(p.Method), int64(p.Amount),
		string(p.Status), p.TransactionRef, p.CreatedAt, p.UpdatedAt)

	batch.Query(`INSERT INTO payments_by_order (order_id, payment_id, status)
		VALUES (?, ?, ?)`, p.OrderID, p.ID, string(p.Status))

	batch.Query(`INSERT INTO payments_by_user (user_id, created_at, payment_id, order_id, amount, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.UserID, p.CreatedAt, p.ID, p.OrderID, int64(p.Amount), string(p.Status))

	return session.ExecuteBatch(batch)
}

func (ScyllaRepository) Update(ctx context.Context, p *models.Payment) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	batch := session.NewBatch(gocql.LoggedBatch).WithContext(ctx)

	batch.Query(`UPDATE payments SET status = ?, transaction_ref = ?, updated_at = ? WHERE payment_id = ?`,
		string(p.Status), p.TransactionRef, p.UpdatedAt, p.ID)

	batch.Query(`UPDATE payments_by_order SET status = ? WHERE order_id = ? AND payment_id = ?`,
		string(p.Status), p.OrderID, p.ID)

	batch.Query(`UPDATE payments_by_user SET status = ? WHERE user_id = ? AND created_at = ? AND payment_id = ?`,
		string(p.Status), p.UserID, p.CreatedAt, p.ID)

	return session.ExecuteBatch(batch)
}

func (ScyllaRepository) GetByID(ctx context.Context, id gocql.UUID) (*models.Payment, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var p models.Payment
	var method, status string
	var amount int64

	err = session.Query(`SELECT payment_id, order_id, user_id, method, amount, status, transaction_ref, created_at, updated_at
		FROM payments WHERE payment_id = ?`, id).WithContext(ctx).
		Scan(&p.ID, &p.OrderID, &p.UserID, &method, &amount, &status, &p.TransactionRef, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.Method = models.PaymentMethod(method)
	p.Amount = models.Cents(amount)
	p.Status = models.PaymentStatus(status)
	return &p, nil
}

func (r ScyllaRepository) ListByOrder(ctx context.Context, orderID gocql.UUID) ([]models.Payment, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT payment_id FROM payments_by_order WHERE order_id = ?`, orderID).
		WithContext(ctx).Iter()

	var ids []gocql.UUID
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	payments := make([]models.Payment, 0, len(ids))
	for _, pid := range ids {
		p, err := r.GetByID(ctx, pid)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, nil
}

func (ScyllaRepository) ListByUser(ctx context.Context, userID string) ([]models.Payment, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT payment_id, order_id, amount, status, created_at
		FROM payments_by_user WHERE user_id = ? ORDER BY created_at DESC`, userID).
		WithContext(ctx).Iter()

	var payments []models.Payment
	var p models.Payment
	var amount int64
	var status string
	for iter.Scan(&p.ID, &p.OrderID, &amount, &status, &p.CreatedAt) {
		p.UserID = userID
		p.Amount = models.Cents(amount)
		p.Status = models.PaymentStatus(status)
		payments = append(payments, p)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return payments, nil
}

// ScyllaOrderReader relit les commandes pour les contrôles de propriété
// et le passage en statut PAID après un paiement réussi.
type ScyllaOrderReader struct{}

func (ScyllaOrderReader) GetOrder(ctx context.Context, orderID gocql.UUID) (*models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var o models.Order
	var total int64
	err = session.Query(`SELECT order_id, order_number, user_id, recipient_name, recipient_phone, recipient_address, total_price, status, created_at, updated_at
		FROM orders WHERE order_id = ?`, orderID).WithContext(ctx).
		Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.RecipientName, &o.RecipientPhone,
			&o.RecipientAddress, &total, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.TotalPrice = models.Cents(total)
	return &o, nil
}

func (ScyllaOrderReader) MarkOrderPaid(ctx context.Context, order *models.Order) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	batch := session.NewBatch(gocql.LoggedBatch).WithContext(ctx)

	batch.Query(`UPDATE orders SET status = ?, updated_at = ? WHERE order_id = ?`,
		models.OrderStatusPaid, now, order.ID)
	batch.Query(`UPDATE orders_by_user SET status = ? WHERE user_id = ? AND created_at = ? AND order_id = ?`,
		models.OrderStatusPaid, order.UserID, order.CreatedAt, order.ID)

	return session.ExecuteBatch(batch)
}
