package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/pharmacy_shop/internal/events"
	"github.com/Skotchmaster/pharmacy_shop/internal/logging"
	"github.com/Skotchmaster/pharmacy_shop/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/internal/pricing"
	"github.com/Skotchmaster/pharmacy_shop/internal/repo"
	"github.com/Skotchmaster/pharmacy_shop/internal/search"
	"github.com/Skotchmaster/pharmacy_shop/internal/transport"
)

const (
	DefaultImageURL = "/images/products/default-medicine.jpg"
	relatedLimit    = 4
)

type CatalogService struct {
	Repo     *repo.GormRepo
	Searcher search.Searcher
	Events   events.Publisher
}

type ProductDetails struct {
	Product models.Product   `json:"product"`
	Related []models.Product `json:"related"`
}

func (s *CatalogService) ListActive(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.ListActiveProducts(ctx, offset, limit)
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*ProductDetails, error) {
	p, err := s.Repo.GetActiveProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, err
	}
	related, err := s.Repo.RelatedProducts(ctx, p.Category, p.ID, relatedLimit)
	if err != nil {
		return nil, err
	}
	return &ProductDetails{Product: *p, Related: related}, nil
}

func (s *CatalogService) ByCategory(ctx context.Context, category string) ([]models.Product, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return []models.Product{}, nil
	}
	return s.Repo.ProductsByCategory(ctx, category)
}

// Search returns nothing for a blank query instead of the whole catalog.
func (s *CatalogService) Search(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, []models.Product{}, nil
	}
	return s.searcher().Search(ctx, query, offset, limit)
}

func (s *CatalogService) ListAll(ctx context.Context) ([]models.Product, error) {
	return s.Repo.ListAllProducts(ctx)
}

func (s *CatalogService) Create(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !pricing.ValidPrice(req.Price) {
		return nil, fmt.Errorf("%w: price must be positive with at most 2 decimals", ErrValidation)
	}

	p := &models.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		Category:      req.Category,
		Manufacturer:  req.Manufacturer,
		DosageForm:    req.DosageForm,
		Strength:      req.Strength,
		ImageURL:      req.ImageURL,
		IsActive:      true,
	}
	if p.ImageURL == "" {
		p.ImageURL = DefaultImageURL
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	s.sync(ctx, *p, events.ProductCreated)
	return p, nil
}

func (s *CatalogService) Patch(ctx context.Context, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrValidation)
		}
		p.Name = name
	}
	if req.Price != nil {
		if !pricing.ValidPrice(*req.Price) {
			return nil, fmt.Errorf("%w: price must be positive with at most 2 decimals", ErrValidation)
		}
		p.Price = *req.Price
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.StockQuantity != nil {
		p.StockQuantity = *req.StockQuantity
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Manufacturer != nil {
		p.Manufacturer = *req.Manufacturer
	}
	if req.DosageForm != nil {
		p.DosageForm = *req.DosageForm
	}
	if req.Strength != nil {
		p.Strength = *req.Strength
	}
	if req.ImageURL != nil && *req.ImageURL != "" {
		p.ImageURL = *req.ImageURL
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		return nil, err
	}

	s.sync(ctx, *p, events.ProductUpdated)
	return p, nil
}

// Delete deactivates the product. Order lines keep pointing at it.
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	if err := s.Repo.DeactivateProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return err
	}

	if err := s.searcher().Delete(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("search_sync_failed", "product_id", id, "error", err)
	}
	publish(ctx, s.Events, events.TopicProducts, strconv.FormatUint(uint64(id), 10), events.New(events.ProductDeactivated, map[string]any{
		"product_id": id,
	}))
	return nil
}

func (s *CatalogService) sync(ctx context.Context, p models.Product, eventType string) {
	if err := s.searcher().Index(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_sync_failed", "product_id", p.ID, "error", err)
	}
	publish(ctx, s.Events, events.TopicProducts, strconv.FormatUint(uint64(p.ID), 10), events.New(eventType, map[string]any{
		"product_id": p.ID,
		"name":       p.Name,
		"price":      p.Price,
		"is_active":  p.IsActive,
	}))
}

func (s *CatalogService) searcher() search.Searcher {
	if s.Searcher != nil {
		return s.Searcher
	}
	return &search.DBSearcher{Repo: s.Repo}
}
