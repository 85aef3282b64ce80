package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/pharmacy_shop/internal/models"
)

func (r *GormRepo) CreateSession(ctx context.Context, s *models.Session) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *GormRepo) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) TouchSession(ctx context.Context, id string, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.Session{}).Where("id = ?", id).Update("last_seen_at", at).Error
}

func (r *GormRepo) RevokeSession(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Model(&models.Session{}).Where("id = ?", id).Update("revoked", true).Error
}

// DeleteStaleSessions removes revoked sessions and those past their hard expiry.
func (r *GormRepo) DeleteStaleSessions(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Where("revoked = ? OR expires_at < ?", true, now).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}
