// Package search finds catalog products. Elasticsearch is optional; the
// database always answers when it is absent or failing.
package search

import (
	"context"

	"github.com/Skotchmaster/pharmacy_shop/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/internal/repo"
)

type Searcher interface {
	Search(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error)
	Index(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id uint) error
}

// DBSearcher runs a LIKE query over the product table. Index and Delete are
// no-ops since the table is the source.
type DBSearcher struct {
	Repo *repo.GormRepo
}

func (s *DBSearcher) Search(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.SearchProducts(ctx, query, offset, limit)
}

func (s *DBSearcher) Index(context.Context, models.Product) error { return nil }

func (s *DBSearcher) Delete(context.Context, uint) error { return nil }
