package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/medical_shop/internal/models"
)

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *GormRepo) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var cat models.Category
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

func (r *GormRepo) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var cat models.Category
	if err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

// SlugTaken reports whether another category already uses slug.
func (r *GormRepo) SlugTaken(ctx context.Context, slug string, except uuid.UUID) (bool, error) {
	var n int64
	q := r.DB.WithContext(ctx).Model(&models.Category{}).Where("slug = ?", slug)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) CreateCategory(ctx context.Context, cat *models.Category) error {
	return r.DB.WithContext(ctx).Create(cat).Error
}

func (r *GormRepo) UpdateCategory(ctx context.Context, cat *models.Category) error {
	res := r.DB.WithContext(ctx).Model(&models.Category{}).Where("id = ?", cat.ID).
		Updates(map[string]any{"name": cat.Name, "slug": cat.Slug, "parent_id": cat.ParentID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) CountCategoryDependents(ctx context.Context, id uuid.UUID) (children, products int64, err error) {
	if err = r.DB.WithContext(ctx).Model(&models.Category{}).Where("parent_id = ?", id).Count(&children).Error; err != nil {
		return 0, 0, err
	}
	if err = r.DB.WithContext(ctx).Model(&models.Product{}).Where("category_id = ?", id).Count(&products).Error; err != nil {
		return 0, 0, err
	}
	return children, products, nil
}

func (r *GormRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
