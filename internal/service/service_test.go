package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skotchmaster/pharmacy_shop/internal/db/dbtest"
	"github.com/Skotchmaster/pharmacy_shop/internal/events"
	"github.com/Skotchmaster/pharmacy_shop/internal/hash"
	"github.com/Skotchmaster/pharmacy_shop/internal/metrics"
	"github.com/Skotchmaster/pharmacy_shop/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/internal/repo"
	"github.com/Skotchmaster/pharmacy_shop/internal/transport"
)

func TestMain(m *testing.M) {
	hash.Cost = bcrypt.MinCost
	os.Exit(m.Run())
}

type env struct {
	repo    *repo.GormRepo
	events  *events.Recorder
	metrics *metrics.Metrics
	auth    *AuthService
	catalog *CatalogService
	cart    *CartService
	orders  *OrderService
	admin   *AdminService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	r := &repo.GormRepo{DB: dbtest.New(t)}
	rec := &events.Recorder{}
	m := metrics.New("test")
	return &env{
		repo:    r,
		events:  rec,
		metrics: m,
		auth: &AuthService{
			Repo: r, Events: rec, Metrics: m,
			Secret:      []byte("test-session-secret"),
			IdleTimeout: 30 * time.Minute,
			MaxAge:      12 * time.Hour,
		},
		catalog: &CatalogService{Repo: r, Events: rec},
		cart:    &CartService{Repo: r, Events: rec, Metrics: m},
		orders:  &OrderService{Repo: r, Events: rec, Metrics: m},
		admin:   &AdminService{Repo: r},
	}
}

func (e *env) user(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := e.auth.Register(context.Background(), transport.RegisterRequest{
		Username: username,
		Password: "secret123",
		FullName: "User " + username,
		Email:    username + "@example.com",
	})
	require.NoError(t, err)
	return u
}

func (e *env) product(t *testing.T, name, category, price string) *models.Product {
	t.Helper()
	p, err := e.catalog.Create(context.Background(), transport.CreateProductRequest{
		Name:          name,
		Category:      category,
		Price:         decimal.RequireFromString(price),
		StockQuantity: 100,
	})
	require.NoError(t, err)
	return p
}

func checkoutReq() transport.CheckoutRequest {
	return transport.CheckoutRequest{
		CustomerName:    "Jane Doe",
		CustomerPhone:   "555-0100",
		ShippingAddress: "1 Main St",
		City:            "Springfield",
		PostalCode:      "12345",
		PaymentMethod:   "Credit Card",
	}
}
