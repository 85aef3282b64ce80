package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/pharmacy_shop/internal/events"
	"github.com/Skotchmaster/pharmacy_shop/internal/logging"
	"github.com/Skotchmaster/pharmacy_shop/internal/metrics"
	"github.com/Skotchmaster/pharmacy_shop/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/internal/pricing"
	"github.com/Skotchmaster/pharmacy_shop/internal/repo"
	"github.com/Skotchmaster/pharmacy_shop/internal/transport"
)

const PaymentCashOnDelivery = "Cash on Delivery"

type OrderService struct {
	Repo    *repo.GormRepo
	Events  events.Publisher
	Metrics *metrics.Metrics
	Now     func() time.Time
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Checkout turns the user's cart into a Pending order. Reading the cart,
// writing the order and its lines and emptying the cart share one
// transaction; any failure leaves cart and orders as they were.
func (s *OrderService) Checkout(ctx context.Context, userID uint, req transport.CheckoutRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.checkout", "user_id", userID)

	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	req.ShippingAddress = strings.TrimSpace(req.ShippingAddress)
	req.City = strings.TrimSpace(req.City)
	req.PostalCode = strings.TrimSpace(req.PostalCode)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	var order *models.Order
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %d", ErrNotFound, userID)
			}
			return err
		}

		cart, err := tx.GetCartForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if len(cart) == 0 {
			return ErrEmptyCart
		}

		lines := make([]pricing.Line, 0, len(cart))
		items := make([]models.OrderItem, 0, len(cart))
		consumed := make([]uint, 0, len(cart))
		for _, ci := range cart {
			p, err := tx.GetProduct(ctx, ci.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product %d is no longer available", ErrConflict, ci.ProductID)
				}
				return err
			}
			if !p.IsActive {
				return fmt.Errorf("%w: %s is no longer available", ErrConflict, p.Name)
			}

			line := pricing.Line{UnitPrice: p.Price, Quantity: ci.Quantity}
			lines = append(lines, line)
			items = append(items, models.OrderItem{
				ProductID:  p.ID,
				Quantity:   ci.Quantity,
				UnitPrice:  p.Price,
				TotalPrice: line.Total(),
			})
			consumed = append(consumed, ci.ID)
		}

		totals, err := pricing.Compute(lines)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}

		order = &models.Order{
			UserID:              userID,
			CustomerName:        req.CustomerName,
			CustomerEmail:       user.Email,
			CustomerPhone:       req.CustomerPhone,
			ShippingAddress:     req.ShippingAddress,
			City:                req.City,
			PostalCode:          req.PostalCode,
			PaymentMethod:       PaymentCashOnDelivery,
			SpecialInstructions: req.SpecialInstructions,
			Subtotal:            totals.Subtotal,
			TaxAmount:           totals.TaxAmount,
			ShippingCost:        totals.ShippingCost,
			TotalAmount:         totals.TotalAmount,
			Status:              models.OrderStatusPending,
			OrderDate:           s.now(),
			Items:               items,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		if _, err := tx.DeleteCartItems(ctx, userID, consumed); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		l.Warn("checkout_failed", "error", err)
		return nil, err
	}

	s.Metrics.OrderPlaced()
	l.Info("checkout_success", "order_id", order.ID, "total", order.TotalAmount.String())
	publish(ctx, s.Events, events.TopicOrders, orderKey(order.ID), events.New(events.OrderPlaced, map[string]any{
		"order_id":     order.ID,
		"user_id":      userID,
		"item_count":   len(order.Items),
		"total_amount": order.TotalAmount,
	}))
	return order, nil
}

// Get returns the order only to its owner; anyone else sees ErrNotFound.
func (s *OrderService) Get(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	o, err := s.Repo.GetUserOrder(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	return o, nil
}

func (s *OrderService) ListForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.Repo.ListUserOrders(ctx, userID)
}

func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.Repo.ListOrders(ctx)
}

func (s *OrderService) Details(ctx context.Context, id uint) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
		}
		return nil, err
	}
	return o, nil
}

func (s *OrderService) Pending(ctx context.Context) ([]models.Order, error) {
	return s.Repo.OrdersByStatus(ctx, models.OrderStatusPending)
}

// UpdateStatus sets any status. Shipped and Delivered stamp their dates.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	st, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return s.transition(ctx, id, st, nil)
}

func (s *OrderService) Accept(ctx context.Context, id uint) (*models.Order, error) {
	return s.transition(ctx, id, models.OrderStatusConfirmed, []models.OrderStatus{models.OrderStatusPending})
}

func (s *OrderService) Reject(ctx context.Context, id uint) (*models.Order, error) {
	return s.transition(ctx, id, models.OrderStatusCancelled, []models.OrderStatus{models.OrderStatusPending, models.OrderStatusConfirmed})
}

// transition moves the order to next. A non-empty from restricts the
// statuses it may leave.
func (s *OrderService) transition(ctx context.Context, id uint, next models.OrderStatus, from []models.OrderStatus) (*models.Order, error) {
	var prev models.OrderStatus
	order, err := s.Repo.UpdateOrder(ctx, id, func(o *models.Order) error {
		prev = o.Status
		if len(from) > 0 && !containsStatus(from, o.Status) {
			return fmt.Errorf("%w: order %d is %s", ErrConflict, id, o.Status)
		}
		now := s.now()
		o.Status = next
		switch next {
		case models.OrderStatusShipped:
			o.ShippedDate = &now
		case models.OrderStatusDelivered:
			o.DeliveredDate = &now
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
		}
		return nil, err
	}

	s.Metrics.OrderStatusChanged(string(next))
	logging.FromContext(ctx).Info("order_status_changed", "order_id", id, "from", prev, "to", next)
	publish(ctx, s.Events, events.TopicOrders, orderKey(id), events.New(events.OrderStatusChanged, map[string]any{
		"order_id": id,
		"from":     prev,
		"to":       next,
	}))
	return order, nil
}

func containsStatus(list []models.OrderStatus, st models.OrderStatus) bool {
	for _, s := range list {
		if s == st {
			return true
		}
	}
	return false
}

func orderKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
