package service

import (
	"context"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"storefront-service/internal/auth"
	"storefront-service/internal/entity"
	"storefront-service/internal/repository"
	"time"
)

const (
	defaultRevenueDays = 30
	maxRevenueDays     = 365
	defaultTopProducts = 10
	maxTopProducts     = 100
)

// AnalyticsService backs the admin dashboard.
type AnalyticsService struct {
	store *repository.Store
	now   func() time.Time
}

func NewAnalyticsService(store *repository.Store) *AnalyticsService {
	return &AnalyticsService{store: store, now: time.Now}
}

// Stats runs the dashboard queries concurrently.
func (s *AnalyticsService) Stats(ctx context.Context) (*entity.OrderStats, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	var (
		byStatus map[entity.OrderStatus]int
		revenue  decimal.Decimal
		products int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		byStatus, err = s.store.Orders.CountByStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		revenue, err = s.store.Orders.Revenue(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.store.Products.CountProducts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("Error loading dashboard stats")
		return nil, err
	}

	total := 0
	for _, n := range byStatus {
		total += n
	}
	return &entity.OrderStats{
		TotalOrders:   total,
		ByStatus:      byStatus,
		Revenue:       revenue,
		TotalProducts: products,
	}, nil
}

// RevenueByDate returns one entry per UTC day for the last days days,
// oldest first, including days without orders.
func (s *AnalyticsService) RevenueByDate(ctx context.Context, days int) ([]entity.DailyRevenue, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = defaultRevenueDays
	}
	if days > maxRevenueDays {
		days = maxRevenueDays
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(days - 1))

	totals, err := s.store.Orders.GetOrderTotalsSince(ctx, since)
	if err != nil {
		logger.Error().Err(err).Msg("Error loading revenue")
		return nil, err
	}

	series := make([]entity.DailyRevenue, days)
	index := make(map[string]int, days)
	for i := range series {
		date := since.AddDate(0, 0, i).Format("2006-01-02")
		series[i] = entity.DailyRevenue{Date: date, Revenue: decimal.Zero}
		index[date] = i
	}
	for _, t := range totals {
		i, ok := index[t.CreatedAt.UTC().Format("2006-01-02")]
		if !ok {
			continue
		}
		series[i].Revenue = series[i].Revenue.Add(t.TotalPrice)
		series[i].OrderCount++
	}
	return series, nil
}

func (s *AnalyticsService) TopProducts(ctx context.Context, limit int) ([]entity.TopProduct, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTopProducts
	}
	if limit > maxTopProducts {
		limit = maxTopProducts
	}

	top, err := s.store.Orders.GetTopProducts(ctx, limit)
	if err != nil {
		logger.Error().Err(err).Msg("Error loading top products")
		return nil, err
	}
	return top, nil
}
