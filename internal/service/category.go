package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/medical_shop/internal/domain"
	"github.com/Skotchmaster/medical_shop/internal/models"
	"github.com/Skotchmaster/medical_shop/internal/repo"
	"github.com/Skotchmaster/medical_shop/internal/transport"
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type CategoryService struct {
	Repo *repo.GormRepo
}

func (s *CategoryService) tree(ctx context.Context) (*domain.CategoryTree, error) {
	cats, err := s.Repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return domain.NewCategoryTree(cats), nil
}

func (s *CategoryService) Tree(ctx context.Context) ([]*domain.Node, error) {
	t, err := s.tree(ctx)
	if err != nil {
		return nil, err
	}
	return t.Roots(), nil
}

func (s *CategoryService) validate(ctx context.Context, id uuid.UUID, req transport.CategoryRequest) (name, slug string, err error) {
	name = strings.TrimSpace(req.Name)
	slug = strings.ToLower(strings.TrimSpace(req.Slug))
	if name == "" || slug == "" {
		return "", "", fmt.Errorf("%w: name and slug are required", ErrValidation)
	}
	if !slugRe.MatchString(slug) {
		return "", "", fmt.Errorf("%w: slug may contain lowercase letters, digits and dashes", ErrValidation)
	}

	taken, err := s.Repo.SlugTaken(ctx, slug, id)
	if err != nil {
		return "", "", err
	}
	if taken {
		return "", "", fmt.Errorf("%w: slug already in use", ErrConflict)
	}

	t, err := s.tree(ctx)
	if err != nil {
		return "", "", err
	}
	switch err := t.ValidateParent(id, req.ParentID); {
	case errors.Is(err, domain.ErrCycle):
		return "", "", fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, domain.ErrUnknownParent):
		return "", "", fmt.Errorf("%w: %w", ErrValidation, err)
	case err != nil:
		return "", "", err
	}
	return name, slug, nil
}

func (s *CategoryService) Create(ctx context.Context, req transport.CategoryRequest) (*models.Category, error) {
	id := uuid.New()
	name, slug, err := s.validate(ctx, id, req)
	if err != nil {
		return nil, err
	}

	cat := &models.Category{ID: id, Name: name, Slug: slug, ParentID: req.ParentID}
	if err := s.Repo.CreateCategory(ctx, cat); err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req transport.CategoryRequest) (*models.Category, error) {
	if _, err := s.Repo.GetCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category: %w", ErrNotFound)
		}
		return nil, err
	}

	name, slug, err := s.validate(ctx, id, req)
	if err != nil {
		return nil, err
	}

	cat := &models.Category{ID: id, Name: name, Slug: slug, ParentID: req.ParentID}
	if err := s.Repo.UpdateCategory(ctx, cat); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category: %w", ErrNotFound)
		}
		return nil, err
	}
	return s.Repo.GetCategory(ctx, id)
}

// Delete refuses to remove a category that still has children or products.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	children, products, err := s.Repo.CountCategoryDependents(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 || products > 0 {
		return fmt.Errorf("%w: category has %d subcategories and %d products", ErrConflict, children, products)
	}

	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("category: %w", ErrNotFound)
		}
		return err
	}
	return nil
}
