package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pharmacy_shop/internal/events"
	"github.com/Skotchmaster/pharmacy_shop/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/internal/transport"
)

func countRows(t *testing.T, e *env, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.repo.DB.Model(model).Count(&n).Error)
	return n
}

func TestOrderService_CheckoutWorkedExample(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "alice")
	para := e.product(t, "Paracetamol 500mg", "Pain Relief", "5.99")
	amox := e.product(t, "Amoxicillin 250mg", "Antibiotics", "12.99")

	_, err := e.cart.Add(ctx, u.ID, para.ID, 2)
	require.NoError(t, err)
	_, err = e.cart.Add(ctx, u.ID, amox.ID, 1)
	require.NoError(t, err)

	order, err := e.orders.Checkout(ctx, u.ID, checkoutReq())
	require.NoError(t, err)

	assert.Equal(t, "24.97", order.Subtotal.String())
	assert.Equal(t, "1.2485", order.TaxAmount.String())
	assert.True(t, order.ShippingCost.Equal(decimal.RequireFromString("5.00")))
	assert.Equal(t, "31.2185", order.TotalAmount.String())
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, PaymentCashOnDelivery, order.PaymentMethod)
	assert.Equal(t, "alice@example.com", order.CustomerEmail)
	assert.Nil(t, order.ShippedDate)
	assert.Nil(t, order.DeliveredDate)
	require.Len(t, order.Items, 2)

	sum := decimal.Zero
	for _, it := range order.Items {
		assert.Equal(t, order.ID, it.OrderID)
		sum = sum.Add(it.TotalPrice)
	}
	assert.True(t, sum.Equal(order.Subtotal))
	assert.True(t, order.TotalAmount.Equal(order.Subtotal.Add(order.TaxAmount).Add(order.ShippingCost)))

	view, err := e.cart.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	assert.Contains(t, e.events.Types(), events.OrderPlaced)
}

func TestOrderService_CheckoutValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "alice")

	req := checkoutReq()
	req.City = "  "
	_, err := e.orders.Checkout(ctx, u.ID, req)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.orders.Checkout(ctx, u.ID, checkoutReq())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, countRows(t, e, &models.Order{}))
}

func TestOrderService_CheckoutRollsBackOnInactiveProduct(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "alice")
	a := e.product(t, "Paracetamol", "Pain Relief", "5.99")
	b := e.product(t, "Amoxicillin", "Antibiotics", "12.99")

	_, err := e.cart.Add(ctx, u.ID, a.ID, 1)
	require.NoError(t, err)
	_, err = e.cart.Add(ctx, u.ID, b.ID, 1)
	require.NoError(t, err)
	require.NoError(t, e.catalog.Delete(ctx, b.ID))

	_, err = e.orders.Checkout(ctx, u.ID, transport.CheckoutRequest(checkoutReq()))
	assert.ErrorIs(t, err, ErrConflict)

	assert.Zero(t, countRows(t, e, &models.Order{}))
	assert.Zero(t, countRows(t, e, &models.OrderItem{}))
	view, err := e.cart.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, view.Items, 2)
	assert.Equal(t, []uint{b.ID}, view.Unavailable)
	assert.Equal(t, "5.99", view.Subtotal.String())
}

func TestOrderService_HistoricalPricesSurviveRepricing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "alice")
	p := e.product(t, "Paracetamol", "Pain Relief", "5.99")

	_, err := e.cart.Add(ctx, u.ID, p.ID, 2)
	require.NoError(t, err)
	order, err := e.orders.Checkout(ctx, u.ID, checkoutReq())
	require.NoError(t, err)

	newPrice := decimal.RequireFromString("9.99")
	_, err = e.catalog.Patch(ctx, p.ID, transport.PatchProductRequest{Price: &newPrice})
	require.NoError(t, err)

	got, err := e.orders.Get(ctx, u.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "5.99", got.Items[0].UnitPrice.String())
	assert.Equal(t, "11.98", got.Items[0].TotalPrice.String())
	assert.Equal(t, "11.98", got.Subtotal.String())
}

func TestOrderService_OwnerOnly(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	p := e.product(t, "Paracetamol", "Pain Relief", "5.99")

	_, err := e.cart.Add(ctx, alice.ID, p.ID, 1)
	require.NoError(t, err)
	order, err := e.orders.Checkout(ctx, alice.ID, checkoutReq())
	require.NoError(t, err)

	_, err = e.orders.Get(ctx, bob.ID, order.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	mine, err := e.orders.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	theirs, err := e.orders.ListForUser(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func placeOrder(t *testing.T, e *env, userID uint, productID uint) *models.Order {
	t.Helper()
	_, err := e.cart.Add(context.Background(), userID, productID, 1)
	require.NoError(t, err)
	o, err := e.orders.Checkout(context.Background(), userID, checkoutReq())
	require.NoError(t, err)
	return o
}

func TestOrderService_StatusTimestamps(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "alice")
	p := e.product(t, "Paracetamol", "Pain Relief", "5.99")
	o := placeOrder(t, e, u.ID, p.ID)

	got, err := e.orders.UpdateStatus(ctx, o.ID, "processing")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusProcessing, got.Status)
	assert.Nil(t, got.ShippedDate)
	assert.Nil(t, got.DeliveredDate)

	got, err = e.orders.UpdateStatus(ctx, o.ID, "Shipped")
	require.NoError(t, err)
	require.NotNil(t, got.ShippedDate)
	assert.Nil(t, got.DeliveredDate)

	got, err = e.orders.UpdateStatus(ctx, o.ID, "Delivered")
	require.NoError(t, err)
	require.NotNil(t, got.DeliveredDate)

	stored, err := e.orders.Details(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ShippedDate)
	require.NotNil(t, stored.DeliveredDate)
	assert.WithinDuration(t, time.Now(), *stored.DeliveredDate, time.Minute)

	_, err = e.orders.UpdateStatus(ctx, o.ID, "Lost")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = e.orders.UpdateStatus(ctx, 9999, "Shipped")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderService_AcceptReject(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "alice")
	p := e.product(t, "Paracetamol", "Pain Relief", "5.99")

	first := placeOrder(t, e, u.ID, p.ID)
	second := placeOrder(t, e, u.ID, p.ID)

	pending, err := e.orders.Pending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	got, err := e.orders.Accept(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, got.Status)

	_, err = e.orders.Accept(ctx, first.ID)
	assert.ErrorIs(t, err, ErrConflict)

	got, err = e.orders.Reject(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)

	_, err = e.orders.Reject(ctx, first.ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = e.orders.UpdateStatus(ctx, second.ID, "Shipped")
	require.NoError(t, err)
	_, err = e.orders.Reject(ctx, second.ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = e.orders.Accept(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := e.orders.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
