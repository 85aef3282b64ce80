package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/pharmacy_shop/internal/models"
)

// CreateOrder writes the header first and then its lines, so every line carries the new order id.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	items := order.Items
	order.Items = nil
	defer func() { order.Items = items }()

	db := r.DB.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(order).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	return db.Omit(clause.Associations).Create(&items).Error
}

func (r *GormRepo) withItems(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Preload("Items.Product")
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.withItems(ctx).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) GetUserOrder(ctx context.Context, userID, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.withItems(ctx).Where("user_id = ?", userID).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListUserOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.withItems(ctx).Where("user_id = ?", userID).Order("order_date DESC, id DESC").Find(&orders).Error
	return orders, err
}

func (r *GormRepo) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.withItems(ctx).Order("order_date DESC, id DESC").Find(&orders).Error
	return orders, err
}

func (r *GormRepo) OrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	err := r.withItems(ctx).Where("status = ?", status).Order("order_date DESC, id DESC").Find(&orders).Error
	return orders, err
}

func (r *GormRepo) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	orders := make([]models.Order, 0, limit)
	err := r.withItems(ctx).Order("order_date DESC, id DESC").Limit(limit).Find(&orders).Error
	return orders, err
}

// UpdateOrder locks the order, lets mutate change it, and persists status and lifecycle dates.
func (r *GormRepo) UpdateOrder(ctx context.Context, id uint, mutate func(o *models.Order) error) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.forUpdate(tx).First(&order, id).Error; err != nil {
			return err
		}
		if err := mutate(&order); err != nil {
			return err
		}
		return tx.Model(&order).
			Select("status", "shipped_date", "delivered_date").
			Updates(map[string]any{
				"status":         order.Status,
				"shipped_date":   order.ShippedDate,
				"delivered_date": order.DeliveredDate,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
