// Package seed creates the first admin account and a starter catalog.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Skotchmaster/pharmacy_shop/internal/hash"
	"github.com/Skotchmaster/pharmacy_shop/internal/logging"
	"github.com/Skotchmaster/pharmacy_shop/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/internal/repo"
	"github.com/Skotchmaster/pharmacy_shop/internal/service"
	"github.com/Skotchmaster/pharmacy_shop/internal/transport"
)

//go:embed catalog.yaml
var defaultCatalog []byte

const DefaultAdminEmail = "admin@pharmacy.com"

type catalogFile struct {
	Products []productEntry `yaml:"products"`
}

type productEntry struct {
	Name          string `yaml:"name"`
	Description   string `yaml:"description"`
	Price         string `yaml:"price"`
	StockQuantity int    `yaml:"stock_quantity"`
	Category      string `yaml:"category"`
	Manufacturer  string `yaml:"manufacturer"`
	DosageForm    string `yaml:"dosage_form"`
	Strength      string `yaml:"strength"`
	ImageURL      string `yaml:"image_url"`
}

// LoadCatalog reads a product list from path, or the built-in one when path
// is empty.
func LoadCatalog(path string) ([]transport.CreateProductRequest, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		data = b
	}
	return parseCatalog(data)
}

func parseCatalog(data []byte) ([]transport.CreateProductRequest, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	out := make([]transport.CreateProductRequest, 0, len(f.Products))
	for i, p := range f.Products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d (%s): bad price %q", i, p.Name, p.Price)
		}
		out = append(out, transport.CreateProductRequest{
			Name:          p.Name,
			Description:   p.Description,
			Price:         price,
			StockQuantity: p.StockQuantity,
			Category:      p.Category,
			Manufacturer:  p.Manufacturer,
			DosageForm:    p.DosageForm,
			Strength:      p.Strength,
			ImageURL:      p.ImageURL,
		})
	}
	return out, nil
}

type Seeder struct {
	Repo    *repo.GormRepo
	Catalog *service.CatalogService
	Now     func() time.Time
}

// Admin creates the admin account unless the username already exists.
func (s *Seeder) Admin(ctx context.Context, username, password string) (bool, error) {
	l := logging.FromContext(ctx).With("svc", "seed.admin", "username", username)

	if username == "" || password == "" {
		return false, errors.New("admin username and password are required")
	}
	taken, err := s.Repo.UsernameTaken(ctx, username)
	if err != nil {
		return false, err
	}
	if taken {
		l.Info("seed_admin_skipped", "reason", "username exists")
		return false, nil
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return false, err
	}
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	u := &models.User{
		Username:     username,
		PasswordHash: pwHash,
		FullName:     "Admin User",
		Email:        DefaultAdminEmail,
		Role:         models.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		LastLogin:    now,
	}
	if err := s.Repo.CreateUser(ctx, u); err != nil {
		return false, err
	}

	l.Info("seed_admin_created", "user_id", u.ID)
	return true, nil
}

// Products adds items only to an empty catalog and returns how many it added.
func (s *Seeder) Products(ctx context.Context, items []transport.CreateProductRequest) (int, error) {
	l := logging.FromContext(ctx).With("svc", "seed.products")

	n, err := s.Repo.CountProducts(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		l.Info("seed_products_skipped", "reason", "catalog not empty", "count", n)
		return 0, nil
	}

	for _, req := range items {
		if _, err := s.Catalog.Create(ctx, req); err != nil {
			return 0, fmt.Errorf("seed %s: %w", req.Name, err)
		}
	}

	l.Info("seed_products_created", "count", len(items))
	return len(items), nil
}
