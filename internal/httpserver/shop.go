package httpserver

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy_shop/internal/logging"
	"github.com/Skotchmaster/pharmacy_shop/internal/service"
	"github.com/Skotchmaster/pharmacy_shop/internal/util"
)

type ShopHTTP struct {
	Catalog *service.CatalogService
}

func (h *ShopHTTP) Products(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shop.products")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Catalog.ListActive(ctx, offset, limit)
	if err != nil {
		return fail(l, "get_products_failed", err, "cannot list products")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": util.Meta(page, limit, offset, total),
	})
}

func (h *ShopHTTP) Product(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shop.product")

	id, ok := util.ParseUint(c.Param("id"))
	if !ok {
		return badRequest(l, "get_product_failed", "invalid product id", nil)
	}

	details, err := h.Catalog.Get(ctx, id)
	if err != nil {
		return fail(l, "get_product_failed", err, "cannot get product")
	}
	return c.JSON(http.StatusOK, details)
}

func (h *ShopHTTP) Category(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shop.category")

	category := c.Param("category")
	if unescaped, err := url.PathUnescape(category); err == nil {
		category = unescaped
	}

	items, err := h.Catalog.ByCategory(ctx, category)
	if err != nil {
		return fail(l, "get_category_failed", err, "cannot list category")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"category": category,
		"data":     items,
	})
}

func (h *ShopHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shop.search")

	q := strings.TrimSpace(c.QueryParam("q"))
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Catalog.Search(ctx, q, offset, limit)
	if err != nil {
		return fail(l, "search_failed", err, "cannot search products")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"query": q,
		"data":  items,
		"meta":  util.Meta(page, limit, offset, total),
	})
}
