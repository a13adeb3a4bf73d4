package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/medical_shop/internal/models"
	"github.com/Skotchmaster/medical_shop/internal/repo"
	"github.com/Skotchmaster/medical_shop/internal/transport"
)

type CartService struct {
	Repo *repo.GormRepo
}

type CartView struct {
	Items []repo.CartLine `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	lines, err := s.Repo.GetCartLines(ctx, userID)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return &CartView{Items: lines, Total: total}, nil
}

// AddToCart records intent only; stock is checked at checkout.
func (s *CartService) AddToCart(ctx context.Context, userID uuid.UUID, req transport.AddToCartRequest) (*models.CartItem, error) {
	if req.ProductID == uuid.Nil {
		return nil, fmt.Errorf("%w: product_id is required", ErrValidation)
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}

	if _, err := s.Repo.GetProduct(ctx, req.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product: %w", ErrNotFound)
		}
		return nil, err
	}

	item := &models.CartItem{UserID: userID, ProductID: req.ProductID, Quantity: req.Quantity}
	if err := s.Repo.AddToCart(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be > 0", ErrValidation)
	}
	item, err := s.Repo.SetCartQuantity(ctx, userID, itemID, quantity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart item: %w", ErrNotFound)
		}
		return nil, err
	}
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	if err := s.Repo.DeleteCartItem(ctx, userID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("cart item: %w", ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	_, err := s.Repo.ClearCart(ctx, userID)
	return err
}
