package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/pharmacy_shop/internal/db"
	"github.com/Skotchmaster/pharmacy_shop/internal/logging"
	"github.com/Skotchmaster/pharmacy_shop/internal/metrics"
	"github.com/Skotchmaster/pharmacy_shop/internal/middleware/session"
)

type Deps struct {
	Auth    *AuthHTTP
	Shop    *ShopHTTP
	Cart    *CartHTTP
	Orders  *OrderHTTP
	Admin   *AdminHTTP
	Session *session.Middleware
	DB      *gorm.DB
	Metrics *metrics.Metrics
}

func Register(e *echo.Echo, d *Deps) {
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context(), d.DB); err != nil {
			logging.FromContext(c.Request().Context()).Error("readiness_failed", "status", 503, "error", err)
			return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable")
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	api := e.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/logout", d.Auth.Logout, d.Session.RequireLogin)
	auth.GET("/me", d.Auth.Me, d.Session.RequireLogin)

	shop := api.Group("/shop", d.Session.RequireLogin)
	shop.GET("/products", d.Shop.Products)
	shop.GET("/products/:id", d.Shop.Product)
	shop.GET("/categories/:category", d.Shop.Category)
	shop.GET("/search", d.Shop.Search)

	cart := api.Group("/cart", d.Session.RequireLogin)
	cart.GET("", d.Cart.Get)
	cart.DELETE("", d.Cart.Clear)
	cart.POST("/items", d.Cart.Add)
	cart.PUT("/items/:productId", d.Cart.Update)
	cart.DELETE("/items/:productId", d.Cart.Remove)

	checkout := api.Group("/checkout", d.Session.RequireLogin)
	checkout.GET("", d.Orders.Preview)
	checkout.POST("", d.Orders.Checkout)

	orders := api.Group("/orders", d.Session.RequireLogin)
	orders.GET("", d.Orders.List)
	orders.GET("/:id", d.Orders.Get)

	admin := api.Group("/admin", d.Session.RequireAdmin)
	admin.GET("/dashboard", d.Admin.Dashboard)
	admin.GET("/statistics", d.Admin.Statistics)
	admin.GET("/products", d.Admin.ListProducts)
	admin.POST("/products", d.Admin.CreateProduct)
	admin.PATCH("/products/:id", d.Admin.PatchProduct)
	admin.DELETE("/products/:id", d.Admin.DeleteProduct)
	admin.GET("/orders", d.Admin.ListOrders)
	admin.GET("/orders/pending", d.Admin.PendingOrders)
	admin.GET("/orders/:id", d.Admin.OrderDetails)
	admin.POST("/orders/:id/status", d.Admin.UpdateStatus)
	admin.POST("/orders/:id/accept", d.Admin.Accept)
	admin.POST("/orders/:id/reject", d.Admin.Reject)
}
