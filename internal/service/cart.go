package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/pharmacy_shop/internal/events"
	"github.com/Skotchmaster/pharmacy_shop/internal/metrics"
	"github.com/Skotchmaster/pharmacy_shop/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/internal/pricing"
	"github.com/Skotchmaster/pharmacy_shop/internal/repo"
)

type CartService struct {
	Repo    *repo.GormRepo
	Events  events.Publisher
	Metrics *metrics.Metrics
}

// CartView is the cart plus the totals checkout would charge for it now.
// Lines whose product is gone or inactive are listed in Unavailable and left
// out of the totals; checkout refuses the cart until they are removed.
type CartView struct {
	Items       []models.CartItem `json:"items"`
	ItemCount   int               `json:"item_count"`
	Unavailable []uint            `json:"unavailable"`
	pricing.Totals
}

func (s *CartService) Get(ctx context.Context, userID uint) (*CartView, error) {
	items, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return preview(items)
}

func preview(items []models.CartItem) (*CartView, error) {
	view := &CartView{Items: items, Unavailable: []uint{}}
	if len(items) == 0 {
		view.Items = []models.CartItem{}
		return view, nil
	}

	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		view.ItemCount += it.Quantity
		if it.Product == nil || !it.Product.IsActive {
			view.Unavailable = append(view.Unavailable, it.ProductID)
			continue
		}
		lines = append(lines, pricing.Line{UnitPrice: it.Product.Price, Quantity: it.Quantity})
	}
	if len(lines) == 0 {
		return view, nil
	}
	totals, err := pricing.Compute(lines)
	if err != nil {
		return nil, err
	}
	view.Totals = totals
	return view, nil
}

// Add puts qty units of a product in the cart; zero means one.
func (s *CartService) Add(ctx context.Context, userID, productID uint, qty int) (*models.CartItem, error) {
	if qty < 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	if qty == 0 {
		qty = 1
	}

	if _, err := s.Repo.GetActiveProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, productID)
		}
		return nil, err
	}

	item := &models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
		AddedAt:   time.Now().UTC(),
	}
	if err := s.Repo.AddToCart(ctx, item); err != nil {
		return nil, err
	}

	s.Metrics.CartOp("add")
	publish(ctx, s.Events, events.TopicCart, userKey(userID), events.New(events.CartItemAdded, map[string]any{
		"user_id":    userID,
		"product_id": productID,
		"added":      qty,
		"quantity":   item.Quantity,
	}))
	return item, nil
}

func (s *CartService) Update(ctx context.Context, userID, productID uint, qty int) (*models.CartItem, error) {
	if qty < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	item, err := s.Repo.SetCartQuantity(ctx, userID, productID, qty)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d is not in the cart", ErrNotFound, productID)
		}
		return nil, err
	}

	s.Metrics.CartOp("update")
	publish(ctx, s.Events, events.TopicCart, userKey(userID), events.New(events.CartItemUpdated, map[string]any{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   qty,
	}))
	return item, nil
}

func (s *CartService) Remove(ctx context.Context, userID, productID uint) error {
	if err := s.Repo.RemoveFromCart(ctx, userID, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d is not in the cart", ErrNotFound, productID)
		}
		return err
	}

	s.Metrics.CartOp("remove")
	publish(ctx, s.Events, events.TopicCart, userKey(userID), events.New(events.CartItemRemoved, map[string]any{
		"user_id":    userID,
		"product_id": productID,
	}))
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID uint) error {
	n, err := s.Repo.ClearCart(ctx, userID)
	if err != nil {
		return err
	}

	s.Metrics.CartOp("clear")
	publish(ctx, s.Events, events.TopicCart, userKey(userID), events.New(events.CartCleared, map[string]any{
		"user_id": userID,
		"removed": n,
	}))
	return nil
}

func userKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
