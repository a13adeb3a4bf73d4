package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/medical_shop/internal/domain"
	"github.com/Skotchmaster/medical_shop/internal/models"
	"github.com/Skotchmaster/medical_shop/internal/repo"
	"github.com/Skotchmaster/medical_shop/internal/transport"
	"github.com/Skotchmaster/medical_shop/internal/util"
	"github.com/Skotchmaster/medical_shop/pkg/events"
	"github.com/Skotchmaster/medical_shop/pkg/logging"
)

// ProductSearcher finds product ids for a free-text query, best match first.
type ProductSearcher interface {
	Search(ctx context.Context, q string, offset, limit int) (int64, []uuid.UUID, error)
}

type CatalogService struct {
	Repo      *repo.GormRepo
	Publisher events.Publisher
	Searcher  ProductSearcher
}

type ProductQuery struct {
	Page         int
	Size         int
	CategorySlug string
}

type ProductPage struct {
	Data []models.Product  `json:"data"`
	Meta transport.PageMeta `json:"meta"`
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product: %w", ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) GetProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	page, size, offset := util.Normalize(q.Page, q.Size)

	var f repo.ProductFilter
	if q.CategorySlug != "" {
		cat, err := s.Repo.GetCategoryBySlug(ctx, q.CategorySlug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("category: %w", ErrNotFound)
			}
			return nil, err
		}
		cats, err := s.Repo.ListCategories(ctx)
		if err != nil {
			return nil, err
		}
		f.CategoryIDs = domain.NewCategoryTree(cats).Descendants(cat.ID)
	}

	total, items, err := s.Repo.GetProducts(ctx, f, offset, size)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Data: items, Meta: transport.NewPageMeta(page, size, total)}, nil
}

// SearchProducts asks the search index first and falls back to the database.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, pageNum, pageSize int) (*ProductPage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrValidation)
	}
	page, size, offset := util.Normalize(pageNum, pageSize)

	if s.Searcher != nil {
		total, ids, err := s.Searcher.Search(ctx, query, offset, size)
		if err == nil {
			items, err := s.productsInOrder(ctx, ids)
			if err != nil {
				return nil, err
			}
			return &ProductPage{Data: items, Meta: transport.NewPageMeta(page, size, total)}, nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "reason", "falling back to database", "error", err)
	}

	total, items, err := s.Repo.SearchProducts(ctx, query, offset, size)
	if err != nil {
		return nil, err
	}
	return &ProductPage{Data: items, Meta: transport.NewPageMeta(page, size, total)}, nil
}

func (s *CatalogService) productsInOrder(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	found, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *CatalogService) checkCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.Repo.GetCategory(ctx, *id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: category does not exist", ErrValidation)
		}
		return err
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !req.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be > 0", ErrValidation)
	}
	if req.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must be >= 0", ErrValidation)
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	prod := &models.Product{
		Name:        name,
		Description: req.Description,
		Price:       req.Price.Round(2),
		Stock:       req.Stock,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
	}
	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, err
	}

	publish(ctx, s.Publisher, events.TopicProduct, prod.ID.String(), transport.EventProductCreated, productEvent(prod))
	return prod, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req transport.UpdateProductRequest) (*models.Product, error) {
	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrValidation)
		}
		fields["name"] = name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			return nil, fmt.Errorf("%w: price must be > 0", ErrValidation)
		}
		fields["price"] = req.Price.Round(2)
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, fmt.Errorf("%w: stock must be >= 0", ErrValidation)
		}
		fields["stock"] = *req.Stock
	}
	if req.CategoryID != nil {
		if err := s.checkCategory(ctx, req.CategoryID); err != nil {
			return nil, err
		}
		fields["category_id"] = *req.CategoryID
	}
	if req.ImageURL != nil {
		fields["image_url"] = *req.ImageURL
	}

	prod, err := s.Repo.UpdateProduct(ctx, id, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product: %w", ErrNotFound)
		}
		return nil, err
	}

	publish(ctx, s.Publisher, events.TopicProduct, prod.ID.String(), transport.EventProductUpdated, productEvent(prod))
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("product: %w", ErrNotFound)
		}
		return err
	}

	publish(ctx, s.Publisher, events.TopicProduct, id.String(), transport.EventProductDeleted, transport.ProductEvent{ID: id})
	return nil
}

func productEvent(p *models.Product) transport.ProductEvent {
	return transport.ProductEvent{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
		ImageURL:    p.ImageURL,
	}
}
