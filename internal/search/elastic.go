package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/pharmacy_shop/internal/config"
	"github.com/Skotchmaster/pharmacy_shop/internal/logging"
	"github.com/Skotchmaster/pharmacy_shop/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/internal/repo"
)

// NewClient connects to the cluster in cfg and checks it answers.
func NewClient(ctx context.Context, cfg config.Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ESURL},
		Username:  cfg.ESUser,
		Password:  cfg.ESPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: new client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("info", res)
	}
	return client, nil
}

// ElasticSearcher ranks ids in Elasticsearch and loads the products from the
// database, so deactivated or deleted rows never leak from a stale index.
type ElasticSearcher struct {
	Client    *elasticsearch.Client
	IndexName string
	Repo      *repo.GormRepo
	Fallback  Searcher
}

type productDoc struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Manufacturer string `json:"manufacturer"`
	DosageForm   string `json:"dosage_form"`
	Strength     string `json:"strength"`
	Price        string `json:"price"`
	IsActive     bool   `json:"is_active"`
}

func toDoc(p models.Product) productDoc {
	return productDoc{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		Manufacturer: p.Manufacturer,
		DosageForm:   p.DosageForm,
		Strength:     p.Strength,
		Price:        p.Price.StringFixed(2),
		IsActive:     p.IsActive,
	}
}

func (s *ElasticSearcher) Search(ctx context.Context, query string, offset, limit int) (int64, []models.Product, error) {
	total, ids, err := s.searchIDs(ctx, query, offset, limit)
	if err != nil {
		if s.Fallback == nil {
			return 0, nil, err
		}
		logging.FromContext(ctx).Warn("search_fallback", "reason", "elasticsearch_failed", "error", err)
		return s.Fallback.Search(ctx, query, offset, limit)
	}

	items, err := s.Repo.ActiveProductsByIDs(ctx, ids)
	if err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (s *ElasticSearcher) searchIDs(ctx context.Context, query string, offset, limit int) (int64, []uint, error) {
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"name^2", "description", "category", "manufacturer"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"is_active": true},
				},
			},
		},
		"_source": false,
		"from":    offset,
		"size":    limit,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := s.Client.Search(
		s.Client.Search.WithContext(ctx),
		s.Client.Search.WithIndex(s.IndexName),
		s.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("elasticsearch: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search", res)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("elasticsearch: decode search: %w", err)
	}

	ids := make([]uint, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		id, err := strconv.ParseUint(h.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return r.Hits.Total.Value, ids, nil
}

func (s *ElasticSearcher) Index(ctx context.Context, p models.Product) error {
	data, err := json.Marshal(toDoc(p))
	if err != nil {
		return err
	}
	res, err := s.Client.Index(s.IndexName, bytes.NewReader(data),
		s.Client.Index.WithContext(ctx),
		s.Client.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch: index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res)
	}
	return nil
}

func (s *ElasticSearcher) Delete(ctx context.Context, id uint) error {
	res, err := s.Client.Delete(s.IndexName, strconv.FormatUint(uint64(id), 10),
		s.Client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch: delete: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		return responseError("delete", res)
	}
	return nil
}

// Reindex writes every product, active or not, into the index.
func (s *ElasticSearcher) Reindex(ctx context.Context) (int, error) {
	products, err := s.Repo.ListAllProducts(ctx)
	if err != nil {
		return 0, err
	}
	for i, p := range products {
		if err := s.Index(ctx, p); err != nil {
			return i, err
		}
	}
	return len(products), nil
}

func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
	return fmt.Errorf("elasticsearch: %s: %s: %s", op, res.Status(), bytes.TrimSpace(body))
}
