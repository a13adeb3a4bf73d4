package repo

import (
	"context"

	"github.com/Skotchmaster/medical_shop/internal/models"
)

func (r *GormRepo) ListFAQs(ctx context.Context) ([]models.FAQ, error) {
	faqs := make([]models.FAQ, 0)
	if err := r.DB.WithContext(ctx).Order("position ASC").Find(&faqs).Error; err != nil {
		return nil, err
	}
	return faqs, nil
}
