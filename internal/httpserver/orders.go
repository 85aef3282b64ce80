package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy_shop/internal/logging"
	"github.com/Skotchmaster/pharmacy_shop/internal/middleware/session"
	"github.com/Skotchmaster/pharmacy_shop/internal/service"
	"github.com/Skotchmaster/pharmacy_shop/internal/transport"
	"github.com/Skotchmaster/pharmacy_shop/internal/util"
)

type OrderHTTP struct {
	Orders *service.OrderService
	Cart   *service.CartService
}

// Preview shows what checkout would charge for the current cart.
func (h *OrderHTTP) Preview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.preview")

	view, err := h.Cart.Get(ctx, session.UserID(c))
	if err != nil {
		return fail(l, "checkout_preview_failed", err, "cannot load cart")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"cart":           view,
		"payment_method": service.PaymentCashOnDelivery,
	})
}

func (h *OrderHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.place")

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "checkout_failed", "invalid body", err)
	}

	order, err := h.Orders.Checkout(ctx, session.UserID(c), req)
	if err != nil {
		return fail(l, "checkout_failed", err, "cannot place order")
	}
	return success(c, http.StatusCreated, "order placed", echo.Map{"order": order})
}

func (h *OrderHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.list")

	orders, err := h.Orders.ListForUser(ctx, session.UserID(c))
	if err != nil {
		return fail(l, "list_orders_failed", err, "cannot list orders")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": orders})
}

func (h *OrderHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.get")

	id, ok := util.ParseUint(c.Param("id"))
	if !ok {
		return badRequest(l, "get_order_failed", "invalid order id", nil)
	}
	order, err := h.Orders.Get(ctx, session.UserID(c), id)
	if err != nil {
		return fail(l, "get_order_failed", err, "cannot get order")
	}
	return c.JSON(http.StatusOK, order)
}
