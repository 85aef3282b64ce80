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

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	view, err := h.Svc.Get(ctx, session.UserID(c))
	if err != nil {
		return fail(l, "get_cart_failed", err, "cannot load cart")
	}
	return c.JSON(http.StatusOK, view)
}

func (h *CartHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_to_cart_failed", "invalid body", err)
	}
	if req.ProductID == 0 {
		return badRequest(l, "add_to_cart_failed", "product_id is required", nil)
	}

	item, err := h.Svc.Add(ctx, session.UserID(c), req.ProductID, req.Quantity)
	if err != nil {
		return fail(l, "add_to_cart_failed", err, "cannot add to cart")
	}
	return success(c, http.StatusOK, "product added to cart", echo.Map{"item": item})
}

func (h *CartHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	productID, ok := util.ParseUint(c.Param("productId"))
	if !ok {
		return badRequest(l, "update_cart_failed", "invalid product id", nil)
	}
	var req transport.UpdateCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_cart_failed", "invalid body", err)
	}

	item, err := h.Svc.Update(ctx, session.UserID(c), productID, req.Quantity)
	if err != nil {
		return fail(l, "update_cart_failed", err, "cannot update cart")
	}
	return success(c, http.StatusOK, "cart updated", echo.Map{"item": item})
}

func (h *CartHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	productID, ok := util.ParseUint(c.Param("productId"))
	if !ok {
		return badRequest(l, "remove_from_cart_failed", "invalid product id", nil)
	}
	if err := h.Svc.Remove(ctx, session.UserID(c), productID); err != nil {
		return fail(l, "remove_from_cart_failed", err, "cannot remove from cart")
	}
	return success(c, http.StatusOK, "product removed from cart", nil)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	if err := h.Svc.Clear(ctx, session.UserID(c)); err != nil {
		return fail(l, "clear_cart_failed", err, "cannot clear cart")
	}
	return success(c, http.StatusOK, "cart cleared", nil)
}
