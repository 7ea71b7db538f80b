package stats

import (
	"context"
	"testing"
	"time"

	"libro_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	users int64
	stock int64
	total SalesTotal
	days  map[string][]Line
}

func (m *mockSource) CountUsers(context.Context) (int64, error)         { return m.users, nil }
func (m *mockSource) TotalStock(context.Context) (int64, error)         { return m.stock, nil }
func (m *mockSource) AllTimeTotals(context.Context) (SalesTotal, error) { return m.total, nil }
func (m *mockSource) DayLines(_ context.Context, day string) ([]Line, error) {
	return m.days[day], nil
}

func (m *mockSource) sell(day string, orderID, productID gocql.UUID, name string, qty int, total models.Cents) {
	if m.days == nil {
		m.days = make(map[string][]Line)
	}
	m.days[day] = append(m.days[day], Line{
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: name,
		Quantity:    qty,
		TotalPrice:  total,
	})
}

func TestDashboard_Aggregates(t *testing.T) {
	// Mercredi 15 janvier : semaine du lundi 13 au dimanche 19.
	base := time.Date(2025, 1, 15, 14, 30, 0, 0, time.UTC)

	src := &mockSource{
		users: 42,
		stock: 310,
		total: SalesTotal{Quantity: 500, Revenue: models.Cents(9_000_000)},
	}

	book := gocql.TimeUUID()
	order1 := gocql.TimeUUID()
	order2 := gocql.TimeUUID()

	// Deux commandes aujourd'hui, trois lignes.
	src.sell("2025-01-15", order1, book, "Le Petit Prince", 2, models.Cents(3000))
	src.sell("2025-01-15", order1, gocql.TimeUUID(), "L'Étranger", 1, models.Cents(1200))
	src.sell("2025-01-15", order2, book, "Le Petit Prince", 1, models.Cents(1500))

	// Lundi de la même semaine.
	src.sell("2025-01-13", gocql.TimeUUID(), book, "Le Petit Prince", 4, models.Cents(6000))

	// Plus tôt dans le mois, hors semaine courante.
	src.sell("2025-01-02", gocql.TimeUUID(), book, "Le Petit Prince", 10, models.Cents(15000))

	// Décembre : hors mois, mais dans la fenêtre de tendance de 30 jours.
	src.sell("2024-12-20", gocql.TimeUUID(), book, "Le Petit Prince", 7, models.Cents(10500))

	svc := NewService(src)
	dash, err := svc.Dashboard(context.Background(), base)
	require.NoError(t, err)

	assert.Equal(t, int64(42), dash.TotalUsers)
	assert.Equal(t, int64(310), dash.TotalStock)
	assert.Equal(t, models.Cents(9_000_000), dash.TotalRevenue)

	assert.Equal(t, int64(2), dash.TodayOrders)
	assert.Equal(t, SalesTotal{Quantity: 4, Revenue: 5700}, dash.DailySales)
	assert.Equal(t, SalesTotal{Quantity: 8, Revenue: 11700}, dash.WeeklySales)
	assert.Equal(t, SalesTotal{Quantity: 18, Revenue: 26700}, dash.MonthlySales)
}

func TestDashboard_TrendZeroFilledOldestFirst(t *testing.T) {
	base := time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC)

	src := &mockSource{}
	src.sell("2025-01-30", gocql.TimeUUID(), gocql.TimeUUID(), "Dune", 3, models.Cents(4500))
	src.sell("2025-01-01", gocql.TimeUUID(), gocql.TimeUUID(), "Dune", 1, models.Cents(1500))

	dash, err := NewService(src).Dashboard(context.Background(), base)
	require.NoError(t, err)

	require.Len(t, dash.Trend, TrendDays)

	// Du plus ancien au plus récent.
	assert.Equal(t, "2025-01-01", dash.Trend[0].Date)
	assert.Equal(t, "2025-01-30", dash.Trend[TrendDays-1].Date)

	assert.Equal(t, int64(1), dash.Trend[0].Quantity)
	assert.Equal(t, int64(3), dash.Trend[TrendDays-1].Quantity)

	// Jours sans vente : points zéro, jamais absents.
	assert.Equal(t, TrendPoint{Date: "2025-01-15"}, dash.Trend[14])
}

func TestRanking_TopByQuantity(t *testing.T) {
	src := &mockSource{}

	dune := gocql.TimeUUID()
	prince := gocql.TimeUUID()
	etranger := gocql.TimeUUID()

	src.sell("2025-01-10", gocql.TimeUUID(), dune, "Dune", 5, models.Cents(7500))
	src.sell("2025-01-11", gocql.TimeUUID(), dune, "Dune", 2, models.Cents(3000))
	src.sell("2025-01-10", gocql.TimeUUID(), prince, "Le Petit Prince", 4, models.Cents(6000))
	src.sell("2025-01-11", gocql.TimeUUID(), etranger, "L'Étranger", 9, models.Cents(10800))

	from := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)

	ranking, err := NewService(src).Ranking(context.Background(), from, to, 10)
	require.NoError(t, err)

	require.Len(t, ranking, 3)
	assert.Equal(t, "L'Étranger", ranking[0].ProductName)
	assert.Equal(t, 1, ranking[0].Rank)
	assert.Equal(t, int64(9), ranking[0].Quantity)

	assert.Equal(t, "Dune", ranking[1].ProductName)
	assert.Equal(t, int64(7), ranking[1].Quantity)
	assert.Equal(t, models.Cents(10500), ranking[1].Revenue)

	assert.Equal(t, 3, ranking[2].Rank)
}

func TestRanking_LimitApplied(t *testing.T) {
	src := &mockSource{}
	day := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 15; i++ {
		src.sell("2025-01-10", gocql.TimeUUID(), gocql.TimeUUID(), "Livre", i+1, models.Cents(1000))
	}

	ranking, err := NewService(src).Ranking(context.Background(), day, day, 10)
	require.NoError(t, err)
	assert.Len(t, ranking, 10)
	assert.Equal(t, int64(15), ranking[0].Quantity, "les plus vendus d'abord")
}
