package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pharmacy_shop/internal/events"
	"github.com/Skotchmaster/pharmacy_shop/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/internal/transport"
)

func TestCatalogService_CreateDefaultsAndValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	p := e.product(t, "Paracetamol 500mg", "Pain Relief", "5.99")
	assert.Equal(t, DefaultImageURL, p.ImageURL)
	assert.True(t, p.IsActive)
	assert.Contains(t, e.events.Types(), events.ProductCreated)

	for _, price := range []string{"0", "-1", "1.999"} {
		_, err := e.catalog.Create(ctx, transport.CreateProductRequest{Name: "X", Price: decimal.RequireFromString(price)})
		assert.True(t, errors.Is(err, ErrValidation), "price %s", price)
	}

	_, err := e.catalog.Create(ctx, transport.CreateProductRequest{Name: " ", Price: decimal.RequireFromString("1")})
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = e.catalog.Create(ctx, transport.CreateProductRequest{Name: "X", Price: decimal.RequireFromString("1"), StockQuantity: -1})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestCatalogService_GetWithRelated(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	main := e.product(t, "Vitamin C", "Vitamins", "8.99")
	for _, n := range []string{"Vitamin A", "Vitamin B", "Vitamin D", "Vitamin E", "Vitamin K"} {
		e.product(t, n, "vitamins", "3.00")
	}
	e.product(t, "Amoxicillin", "Antibiotics", "12.99")

	d, err := e.catalog.Get(ctx, main.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vitamin C", d.Product.Name)
	require.Len(t, d.Related, 4)
	for _, r := range d.Related {
		assert.NotEqual(t, main.ID, r.ID)
	}

	require.NoError(t, e.catalog.Delete(ctx, main.ID))
	_, err = e.catalog.Get(ctx, main.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.catalog.Get(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCatalogService_ByCategoryAndSearch(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.product(t, "Paracetamol", "Pain Relief", "5.99")
	e.product(t, "Ibuprofen", "pain relief", "4.50")
	hidden := e.product(t, "Aspirin", "Pain Relief", "3.00")
	require.NoError(t, e.catalog.Delete(ctx, hidden.ID))

	items, err := e.catalog.ByCategory(ctx, "PAIN RELIEF")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	total, found, err := e.catalog.Search(ctx, "relief", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, found, 2)

	total, found, err = e.catalog.Search(ctx, "   ", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, found)
}

type recordingSearcher struct {
	queries []string
	indexed []uint
	deleted []uint
}

func (s *recordingSearcher) Search(_ context.Context, query string, _, _ int) (int64, []models.Product, error) {
	s.queries = append(s.queries, query)
	return 0, []models.Product{}, nil
}

func (s *recordingSearcher) Index(_ context.Context, p models.Product) error {
	s.indexed = append(s.indexed, p.ID)
	return nil
}

func (s *recordingSearcher) Delete(_ context.Context, id uint) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func TestCatalogService_UsesConfiguredSearcher(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	rs := &recordingSearcher{}
	e.catalog.Searcher = rs

	p := e.product(t, "Paracetamol", "Pain Relief", "5.99")
	require.NoError(t, e.catalog.Delete(ctx, p.ID))
	_, _, err := e.catalog.Search(ctx, " para ", 0, 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"para"}, rs.queries)
	assert.Equal(t, []uint{p.ID}, rs.indexed)
	assert.Equal(t, []uint{p.ID}, rs.deleted)
}

func TestCatalogService_PatchAndSoftDelete(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p := e.product(t, "Paracetamol", "Pain Relief", "5.99")

	price := decimal.RequireFromString("6.49")
	stock := 7
	patched, err := e.catalog.Patch(ctx, p.ID, transport.PatchProductRequest{Price: &price, StockQuantity: &stock})
	require.NoError(t, err)
	assert.Equal(t, "6.49", patched.Price.String())
	assert.Equal(t, 7, patched.StockQuantity)
	assert.Equal(t, "Paracetamol", patched.Name)

	bad := decimal.RequireFromString("0")
	_, err = e.catalog.Patch(ctx, p.ID, transport.PatchProductRequest{Price: &bad})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = e.catalog.Patch(ctx, 9999, transport.PatchProductRequest{})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, e.catalog.Delete(ctx, p.ID))
	all, err := e.catalog.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.False(t, all[0].IsActive)

	assert.ErrorIs(t, e.catalog.Delete(ctx, 9999), ErrNotFound)
	assert.Contains(t, e.events.Types(), events.ProductDeactivated)

	total, active, err := e.catalog.ListActive(ctx, 0, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, active)
}
