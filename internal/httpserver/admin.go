package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/pharmacy_shop/internal/logging"
	"github.com/Skotchmaster/pharmacy_shop/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/internal/service"
	"github.com/Skotchmaster/pharmacy_shop/internal/transport"
	"github.com/Skotchmaster/pharmacy_shop/internal/upload"
	"github.com/Skotchmaster/pharmacy_shop/internal/util"
)

type AdminHTTP struct {
	Admin   *service.AdminService
	Catalog *service.CatalogService
	Orders  *service.OrderService
	Uploads *upload.Store
}

func (h *AdminHTTP) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.dashboard")

	d, err := h.Admin.Dashboard(ctx)
	if err != nil {
		return fail(l, "dashboard_failed", err, "cannot load dashboard")
	}
	return c.JSON(http.StatusOK, d)
}

func (h *AdminHTTP) Statistics(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.statistics")

	s, err := h.Admin.Statistics(ctx)
	if err != nil {
		return fail(l, "statistics_failed", err, "cannot load statistics")
	}
	return c.JSON(http.StatusOK, s)
}

func (h *AdminHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.products")

	items, err := h.Catalog.ListAll(ctx)
	if err != nil {
		return fail(l, "list_products_failed", err, "cannot list products")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

// CreateProduct accepts JSON or a multipart form with an optional "image" file.
func (h *AdminHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_product")

	var req transport.CreateProductRequest
	stored := ""
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return badRequest(l, "product_create_failed", "invalid form", err)
		}
		if err := createFromForm(form, &req); err != nil {
			return fail(l, "product_create_failed", err, "cannot create product")
		}
		url, err := h.saveImage(form)
		if err != nil {
			return fail(l, "product_create_failed", err, "cannot store image")
		}
		req.ImageURL = url
		stored = url
	} else if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_create_failed", "invalid body", err)
	}

	p, err := h.Catalog.Create(ctx, req)
	if err != nil {
		h.discardImage(l, stored)
		return fail(l, "product_create_failed", err, "cannot create product")
	}

	l.Info("product_create_success", "product_id", p.ID)
	return success(c, http.StatusCreated, "product created", echo.Map{"product": p})
}

func (h *AdminHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.patch_product")

	id, ok := util.ParseUint(c.Param("id"))
	if !ok {
		return badRequest(l, "product_patch_failed", "invalid product id", nil)
	}

	var req transport.PatchProductRequest
	stored := ""
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return badRequest(l, "product_patch_failed", "invalid form", err)
		}
		if err := patchFromForm(form, &req); err != nil {
			return fail(l, "product_patch_failed", err, "cannot update product")
		}
		url, err := h.saveImage(form)
		if err != nil {
			return fail(l, "product_patch_failed", err, "cannot store image")
		}
		if url != "" {
			req.ImageURL = &url
			stored = url
		}
	} else if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_patch_failed", "invalid body", err)
	}

	p, err := h.Catalog.Patch(ctx, id, req)
	if err != nil {
		h.discardImage(l, stored)
		return fail(l, "product_patch_failed", err, "cannot update product")
	}

	l.Info("product_patch_success", "product_id", p.ID)
	return success(c, http.StatusOK, "product updated", echo.Map{"product": p})
}

func (h *AdminHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_product")

	id, ok := util.ParseUint(c.Param("id"))
	if !ok {
		return badRequest(l, "product_delete_failed", "invalid product id", nil)
	}
	if err := h.Catalog.Delete(ctx, id); err != nil {
		return fail(l, "product_delete_failed", err, "cannot delete product")
	}

	l.Info("product_delete_success", "product_id", id)
	return success(c, http.StatusOK, "product deactivated", nil)
}

func (h *AdminHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.orders")

	orders, err := h.Orders.ListAll(ctx)
	if err != nil {
		return fail(l, "list_orders_failed", err, "cannot list orders")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": orders})
}

func (h *AdminHTTP) PendingOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.pending_orders")

	orders, err := h.Orders.Pending(ctx)
	if err != nil {
		return fail(l, "list_pending_failed", err, "cannot list pending orders")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": orders})
}

func (h *AdminHTTP) OrderDetails(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.order")

	id, ok := util.ParseUint(c.Param("id"))
	if !ok {
		return badRequest(l, "get_order_failed", "invalid order id", nil)
	}
	o, err := h.Orders.Details(ctx, id)
	if err != nil {
		return fail(l, "get_order_failed", err, "cannot get order")
	}
	return c.JSON(http.StatusOK, o)
}

func (h *AdminHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_status")

	id, ok := util.ParseUint(c.Param("id"))
	if !ok {
		return badRequest(l, "update_status_failed", "invalid order id", nil)
	}
	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_status_failed", "invalid body", err)
	}

	o, err := h.Orders.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return fail(l, "update_status_failed", err, "cannot update order status")
	}
	return success(c, http.StatusOK, fmt.Sprintf("order #%d status updated to %s", o.ID, o.Status), echo.Map{"order": o})
}

func (h *AdminHTTP) Accept(c echo.Context) error {
	return h.decide(c, "accept", h.Orders.Accept, "accepted")
}

func (h *AdminHTTP) Reject(c echo.Context) error {
	return h.decide(c, "reject", h.Orders.Reject, "rejected")
}

func (h *AdminHTTP) decide(c echo.Context, op string, apply func(context.Context, uint) (*models.Order, error), verb string) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin."+op+"_order")

	id, ok := util.ParseUint(c.Param("id"))
	if !ok {
		return badRequest(l, op+"_order_failed", "invalid order id", nil)
	}
	o, err := apply(ctx, id)
	if err != nil {
		return fail(l, op+"_order_failed", err, "cannot "+op+" order")
	}
	return success(c, http.StatusOK, fmt.Sprintf("order #%d %s", o.ID, verb), echo.Map{"order": o})
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}

// saveImage stores the optional "image" file and returns its URL, or "" when
// the form carries none.
func (h *AdminHTTP) saveImage(form *multipart.Form) (string, error) {
	files := form.File["image"]
	if len(files) == 0 || files[0].Filename == "" {
		return "", nil
	}
	if h.Uploads == nil {
		return "", errors.New("image uploads are not configured")
	}
	return h.Uploads.Save(files[0])
}

// discardImage removes an image saved for a request the service rejected.
func (h *AdminHTTP) discardImage(l *slog.Logger, url string) {
	if url == "" || h.Uploads == nil {
		return
	}
	if err := h.Uploads.Remove(url); err != nil {
		l.Warn("image_cleanup_failed", "image_url", url, "error", err)
	}
}

func formValue(form *multipart.Form, key string) (string, bool) {
	v, ok := form.Value[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return strings.TrimSpace(v[0]), true
}

func createFromForm(form *multipart.Form, req *transport.CreateProductRequest) error {
	var patch transport.PatchProductRequest
	if err := patchFromForm(form, &patch); err != nil {
		return err
	}
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	req.Name = deref(patch.Name)
	req.Description = deref(patch.Description)
	req.Category = deref(patch.Category)
	req.Manufacturer = deref(patch.Manufacturer)
	req.DosageForm = deref(patch.DosageForm)
	req.Strength = deref(patch.Strength)
	req.IsActive = patch.IsActive
	if patch.Price != nil {
		req.Price = *patch.Price
	}
	if patch.StockQuantity != nil {
		req.StockQuantity = *patch.StockQuantity
	}
	return nil
}

// patchFromForm sets only the fields present in the form.
func patchFromForm(form *multipart.Form, req *transport.PatchProductRequest) error {
	str := func(key string) *string {
		if v, ok := formValue(form, key); ok {
			return &v
		}
		return nil
	}
	req.Name = str("name")
	req.Description = str("description")
	req.Category = str("category")
	req.Manufacturer = str("manufacturer")
	req.DosageForm = str("dosage_form")
	req.Strength = str("strength")

	if v, ok := formValue(form, "price"); ok && v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("%w: price is not a number", service.ErrValidation)
		}
		req.Price = &price
	}
	if v, ok := formValue(form, "stock_quantity"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: stock_quantity is not a number", service.ErrValidation)
		}
		req.StockQuantity = &n
	}
	if v, ok := formValue(form, "is_active"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			b = v == "on"
		}
		req.IsActive = &b
	}
	return nil
}
