package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/medical_shop/internal/models"
)

// CartLine is a cart item joined with the current state of its product.
type CartLine struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url"`
	Stock     int             `json:"-"`
	Quantity  int             `json:"quantity"`
}

func (r *GormRepo) cartLines(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return r.DB.WithContext(ctx).
		Table("cart_items AS c").
		Select("c.id, c.product_id, p.name, p.price, p.image_url, p.stock, c.quantity").
		Joins("JOIN products p ON p.id = c.product_id").
		Where("c.user_id = ?", userID).
		Order("c.created_at ASC")
}

func (r *GormRepo) GetCartLines(ctx context.Context, userID uuid.UUID) ([]CartLine, error) {
	lines := make([]CartLine, 0)
	if err := r.cartLines(ctx, userID).Scan(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// LockCartLines reads the cart like GetCartLines and holds row locks on the
// cart items (not the products) until the surrounding transaction ends.
func (r *GormRepo) LockCartLines(ctx context.Context, userID uuid.UUID) ([]CartLine, error) {
	lines := make([]CartLine, 0)
	err := r.cartLines(ctx, userID).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "c"}}).
		Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// AddToCart increments an existing line for the product or creates a new one.
func (r *GormRepo) AddToCart(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).
			Update("quantity", gorm.Expr("quantity + ?", item.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).First(item).Error
		}
		return tx.Create(item).Error
	})
}

func (r *GormRepo) SetCartQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartItem, error) {
	res := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", quantity)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	var item models.CartItem
	if err := r.DB.WithContext(ctx).Where("id = ?", itemID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, userID, itemID uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ClearCart deletes every cart item of the user and reports how many went.
func (r *GormRepo) ClearCart(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
