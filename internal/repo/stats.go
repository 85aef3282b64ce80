package repo

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/pharmacy_shop/internal/models"
)

func (r *GormRepo) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Order{}).Count(&count).Error
	return count, err
}

func (r *GormRepo) CountOrdersSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Order{}).Where("order_date >= ?", since).Count(&count).Error
	return count, err
}

func (r *GormRepo) CountOrdersByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	var rows []struct {
		Status models.OrderStatus
		Count  int64
	}
	err := r.DB.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[models.OrderStatus]int64, len(models.OrderStatuses()))
	for _, st := range models.OrderStatuses() {
		out[st] = 0
	}
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *GormRepo) SumTotals(ctx context.Context, status models.OrderStatus) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("status = ?", status).
		Select("COALESCE(SUM(total_amount), 0)").
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total.Round(4), nil
}
