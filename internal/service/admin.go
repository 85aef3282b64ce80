package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/pharmacy_shop/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/internal/repo"
)

const (
	LowStockThreshold = 20
	recentOrdersLimit = 10
)

type AdminService struct {
	Repo *repo.GormRepo
	Now  func() time.Time
}

type Dashboard struct {
	TotalProducts    int64          `json:"totalProducts"`
	TotalOrders      int64          `json:"totalOrders"`
	PendingOrders    int64          `json:"pendingOrders"`
	LowStockProducts int64          `json:"lowStockProducts"`
	RecentOrders     []models.Order `json:"recentOrders"`
}

type Statistics struct {
	TotalOrders      int64           `json:"totalOrders"`
	PendingOrders    int64           `json:"pendingOrders"`
	ConfirmedOrders  int64           `json:"confirmedOrders"`
	ProcessingOrders int64           `json:"processingOrders"`
	ShippedOrders    int64           `json:"shippedOrders"`
	DeliveredOrders  int64           `json:"deliveredOrders"`
	CancelledOrders  int64           `json:"cancelledOrders"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	TodayOrders      int64           `json:"todayOrders"`
}

func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		d   Dashboard
		err error
	)
	if d.TotalProducts, err = s.Repo.CountProducts(ctx); err != nil {
		return nil, err
	}
	if d.TotalOrders, err = s.Repo.CountOrders(ctx); err != nil {
		return nil, err
	}
	counts, err := s.Repo.CountOrdersByStatus(ctx)
	if err != nil {
		return nil, err
	}
	d.PendingOrders = counts[models.OrderStatusPending]
	if d.LowStockProducts, err = s.Repo.CountLowStock(ctx, LowStockThreshold); err != nil {
		return nil, err
	}
	if d.RecentOrders, err = s.Repo.RecentOrders(ctx, recentOrdersLimit); err != nil {
		return nil, err
	}
	return &d, nil
}

// Statistics counts orders per status. Revenue only includes Delivered orders.
func (s *AdminService) Statistics(ctx context.Context) (*Statistics, error) {
	counts, err := s.Repo.CountOrdersByStatus(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.Repo.SumTotals(ctx, models.OrderStatusDelivered)
	if err != nil {
		return nil, err
	}
	today, err := s.Repo.CountOrdersSince(ctx, s.midnight())
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	return &Statistics{
		TotalOrders:      total,
		PendingOrders:    counts[models.OrderStatusPending],
		ConfirmedOrders:  counts[models.OrderStatusConfirmed],
		ProcessingOrders: counts[models.OrderStatusProcessing],
		ShippedOrders:    counts[models.OrderStatusShipped],
		DeliveredOrders:  counts[models.OrderStatusDelivered],
		CancelledOrders:  counts[models.OrderStatusCancelled],
		TotalRevenue:     revenue,
		TodayOrders:      today,
	}, nil
}

// midnight is the start of the current local day, in UTC.
func (s *AdminService) midnight() time.Time {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	local := now.Local()
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local).UTC()
}
