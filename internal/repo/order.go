package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/medical_shop/internal/models"
)

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Create(order).Error
}

// DecrementStock takes qty units from the product only if that many are left.
// It reports false when the row was not updated.
func (r *GormRepo) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

type AdminOrderRow struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	UserName    string          `json:"user_name"`
	UserEmail   string          `json:"user_email"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (r *GormRepo) ListAllOrders(ctx context.Context, status string) ([]AdminOrderRow, error) {
	rows := make([]AdminOrderRow, 0)
	q := r.DB.WithContext(ctx).
		Table("orders AS o").
		Select("o.id, o.user_id, u.name AS user_name, u.email AS user_email, o.total_amount, o.status, o.created_at").
		Joins("JOIN users u ON u.id = o.user_id")
	if status != "" {
		q = q.Where("o.status = ?", status)
	}
	if err := q.Order("o.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateOrderStatus moves the order from one status to another; false means
// the order was no longer in the expected status.
func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
