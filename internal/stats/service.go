// Package stats calcule les statistiques du tableau de bord admin et le
// classement des ventes. Toutes les agrégations partent des lignes vendues
// par jour (vue sales_by_day alimentée au checkout).
package stats

import (
	"context"
	"sort"
	"sync"
	"time"

	"libro_back_end/internal/models"

	"github.com/gocql/gocql"
)

const dayFormat = "2006-01-02"

// Line est une ligne vendue, projetée depuis la vue journalière.
type Line struct {
	OrderID     gocql.UUID
	ProductID   gocql.UUID
	ProductName string
	Quantity    int
	TotalPrice  models.Cents
}

// Source fournit les données brutes. Une seule primitive par jour suffit :
// le service agrège en mémoire.
type Source interface {
	CountUsers(ctx context.Context) (int64, error)
	TotalStock(ctx context.Context) (int64, error)
	AllTimeTotals(ctx context.Context) (SalesTotal, error)
	DayLines(ctx context.Context, day string) ([]Line, error)
}

type SalesTotal struct {
	Quantity int64        `json:"quantity"`
	Revenue  models.Cents `json:"revenue"`
}

type TrendPoint struct {
	Date     string       `json:"date"`
	Quantity int64        `json:"quantity"`
	Revenue  models.Cents `json:"revenue"`
}

type Dashboard struct {
	TotalUsers   int64        `json:"total_users"`
	TotalRevenue models.Cents `json:"total_revenue"`
	TotalStock   int64        `json:"total_stock"`
	TodayOrders  int64        `json:"today_orders"`
	DailySales   SalesTotal   `json:"daily_sales"`
	WeeklySales  SalesTotal   `json:"weekly_sales"`
	MonthlySales SalesTotal   `json:"monthly_sales"`
	Trend        []TrendPoint `json:"trend"`
}

type RankingEntry struct {
	Rank        int          `json:"rank"`
	ProductID   gocql.UUID   `json:"product_id"`
	ProductName string       `json:"name"`
	Quantity    int64        `json:"quantity"`
	Revenue     models.Cents `json:"revenue"`
}

// TrendDays est la profondeur de la courbe de tendance du tableau de bord.
const TrendDays = 30

type Service struct {
	source Source
}

func NewService(source Source) *Service {
	return &Service{source: source}
}

// Dashboard assemble toutes les statistiques en parallèle : un goroutine
// par bloc, comme les blocs sont indépendants.
func (s *Service) Dashboard(ctx context.Context, base time.Time) (*Dashboard, error) {
	base = base.UTC().Truncate(24 * time.Hour)

	var (
		dash Dashboard
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs []error
	)

	run := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}

	run(func() error {
		n, err := s.source.CountUsers(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		dash.TotalUsers = n
		mu.Unlock()
		return nil
	})

	run(func() error {
		n, err := s.source.TotalStock(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		dash.TotalStock = n
		mu.Unlock()
		return nil
	})

	run(func() error {
		total, err := s.source.AllTimeTotals(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		dash.TotalRevenue = total.Revenue
		mu.Unlock()
		return nil
	})

	run(func() error {
		lines, err := s.source.DayLines(ctx, base.Format(dayFormat))
		if err != nil {
			return err
		}
		orders := make(map[gocql.UUID]struct{})
		var today SalesTotal
		for _, l := range lines {
			orders[l.OrderID] = struct{}{}
			today.Quantity += int64(l.Quantity)
			today.Revenue += l.TotalPrice
		}
		mu.Lock()
		dash.TodayOrders = int64(len(orders))
		dash.DailySales = today
		mu.Unlock()
		return nil
	})

	run(func() error {
		// Semaine lundi→dimanche contenant la date de référence.
		offset := (int(base.Weekday()) + 6) % 7
		start := base.AddDate(0, 0, -offset)
		total, err := s.sumRange(ctx, start, start.AddDate(0, 0, 6))
		if err != nil {
			return err
		}
		mu.Lock()
		dash.WeeklySales = total
		mu.Unlock()
		return nil
	})

	run(func() error {
		start := time.Date(base.Year(), base.Month(), 1, 0, 0, 0, 0, time.UTC)
		total, err := s.sumRange(ctx, start, start.AddDate(0, 1, -1))
		if err != nil {
			return err
		}
		mu.Lock()
		dash.MonthlySales = total
		mu.Unlock()
		return nil
	})

	run(func() error {
		trend, err := s.trend(ctx, base)
		if err != nil {
			return err
		}
		mu.Lock()
		dash.Trend = trend
		mu.Unlock()
		return nil
	})

	wg.Wait()

	if len(errs) > 0 {
		return nil, errs[0]
	}
	return &dash, nil
}

func (s *Service) sumRange(ctx context.Context, from, to time.Time) (SalesTotal, error) {
	var total SalesTotal
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		lines, err := s.source.DayLines(ctx, d.Format(dayFormat))
		if err != nil {
			return SalesTotal{}, err
		}
		for _, l := range lines {
			total.Quantity += int64(l.Quantity)
			total.Revenue += l.TotalPrice
		}
	}
	return total, nil
}

// trend remonte TrendDays jours, du plus ancien au plus récent, avec un
// point zéro pour chaque jour sans vente.
func (s *Service) trend(ctx context.Context, base time.Time) ([]TrendPoint, error) {
	points := make([]TrendPoint, 0, TrendDays)
	for i := TrendDays - 1; i >= 0; i-- {
		d := base.AddDate(0, 0, -i)
		point := TrendPoint{Date: d.Format(dayFormat)}

		lines, err := s.source.DayLines(ctx, point.Date)
		if err != nil {
			return nil, err
		}
		for _, l := range lines {
			point.Quantity += int64(l.Quantity)
			point.Revenue += l.TotalPrice
		}
		points = append(points, point)
	}
	return points, nil
}

// Ranking agrège les ventes par produit sur [from, to] et retourne le
// top limit par quantité vendue.
func (s *Service) Ranking(ctx context.Context, from, to time.Time, limit int) ([]RankingEntry, error) {
	from = from.UTC().Truncate(24 * time.Hour)
	to = to.UTC().Truncate(24 * time.Hour)
	if limit <= 0 {
		limit = 10
	}

	byProduct := make(map[gocql.UUID]*RankingEntry)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		lines, err := s.source.DayLines(ctx, d.Format(dayFormat))
		if err != nil {
			return nil, err
		}
		for _, l := range lines {
			entry, ok := byProduct[l.ProductID]
			if !ok {
				entry = &RankingEntry{ProductID: l.ProductID, ProductName: l.ProductName}
				byProduct[l.ProductID] = entry
			}
			entry.Quantity += int64(l.Quantity)
			entry.Revenue += l.TotalPrice
		}
	}

	entries := make([]RankingEntry, 0, len(byProduct))
	for _, e := range byProduct {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Quantity != entries[j].Quantity {
			return entries[i].Quantity > entries[j].Quantity
		}
		return entries[i].ProductName < entries[j].ProductName
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
