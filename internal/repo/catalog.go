package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/pharmacy_shop/internal/models"
)

func (r *GormRepo) ListActiveProducts(ctx context.Context, offset, limit int) (int64, []models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) ListAllProducts(ctx context.Context) ([]models.Product, error) {
	var items []models.Product
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) GetActiveProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) RelatedProducts(ctx context.Context, category string, excludeID uint, limit int) ([]models.Product, error) {
	items := make([]models.Product, 0, limit)
	err := r.DB.WithContext(ctx).
		Where("is_active = ? AND LOWER(category) = LOWER(?) AND id <> ?", true, category, excludeID).
		Order("id ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *GormRepo) ProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	var items []models.Product
	err := r.DB.WithContext(ctx).
		Where("is_active = ? AND LOWER(category) = LOWER(?)", true, category).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

// ActiveProductsByIDs keeps the order of ids and skips ids that are gone or inactive.
func (r *GormRepo) ActiveProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var found []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ? AND is_active = ?", ids, true).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// SearchProducts matches name, description, category and manufacturer, case-insensitively.
func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	pattern := likePattern(q)
	where := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("is_active = ?", true).
		Where(
			r.DB.Where(`LOWER(name) LIKE ? ESCAPE '\'`, pattern).
				Or(`LOWER(description) LIKE ? ESCAPE '\'`, pattern).
				Or(`LOWER(category) LIKE ? ESCAPE '\'`, pattern).
				Or(`LOWER(manufacturer) LIKE ? ESCAPE '\'`, pattern),
		).
		Session(&gorm.Session{})

	var total int64
	if err := where.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := where.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) SaveProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Save(p).Error
}

func (r *GormRepo) DeactivateProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&count).Error
	return count, err
}

func (r *GormRepo) CountLowStock(ctx context.Context, threshold int) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Product{}).Where("stock_quantity < ?", threshold).Count(&count).Error
	return count, err
}
