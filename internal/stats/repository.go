package stats

import (
	"context"
	"errors"

	"libro_back_end/internal/database"
	"libro_back_end/internal/models"

	"github.com/gocql/gocql"
)

// ScyllaSource lit les statistiques dans les trois keyspaces.
type ScyllaSource struct{}

func (ScyllaSource) CountUsers(ctx context.Context) (int64, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return 0, err
	}

	var n int64
	err = session.Query(`SELECT COUNT(*) FROM users`).WithContext(ctx).Scan(&n)
	return n, err
}

// TotalStock additionne le stock du catalogue complet. Le catalogue est
// borné (quelques milliers de titres), le scan reste raisonnable.
func (ScyllaSource) TotalStock(ctx context.Context) (int64, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return 0, err
	}

	iter := session.Query(`SELECT stock FROM products`).WithContext(ctx).Iter()
	var total int64
	var stock int
	for iter.Scan(&stock) {
		total += int64(stock)
	}
	return total, iter.Close()
}

func (ScyllaSource) AllTimeTotals(ctx context.Context) (SalesTotal, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return SalesTotal{}, err
	}

	var quantity, revenue int64
	err = session.Query(`SELECT quantity, revenue FROM sales_totals WHERE scope = 'all'`).
		WithContext(ctx).Scan(&quantity, &revenue)
	if errors.Is(err, gocql.ErrNotFound) {
		// Aucune vente encore enregistrée.
		return SalesTotal{}, nil
	}
	if err != nil {
		return SalesTotal{}, err
	}
	return SalesTotal{Quantity: quantity, Revenue: models.Cents(revenue)}, nil
}

func (ScyllaSource) DayLines(ctx context.Context, day string) ([]Line, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT order_id, product_id, product_name, quantity, total_price
		FROM sales_by_day WHERE day = ?`, day).WithContext(ctx).Iter()

	var lines []Line
	var l Line
	var total int64
	for iter.Scan(&l.OrderID, &l.ProductID, &l.ProductName, &l.Quantity, &total) {
		l.TotalPrice = models.Cents(total)
		lines = append(lines, l)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return lines, nil
}
