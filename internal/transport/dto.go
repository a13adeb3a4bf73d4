package transport

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type CreateProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  *uuid.UUID      `json:"category_id"`
	ImageURL    string          `json:"image_url"`
}

// UpdateProductRequest leaves nil fields untouched.
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	CategoryID  *uuid.UUID       `json:"category_id"`
	ImageURL    *string          `json:"image_url"`
}

type CategoryRequest struct {
	Name     string     `json:"name"`
	Slug     string     `json:"slug"`
	ParentID *uuid.UUID `json:"parent_id"`
}

type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

type PlaceOrderRequest struct {
	ShippingAddress string `json:"shipping_address"`
	Phone           string `json:"phone"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type PlaceOrderResult struct {
	OrderID     uuid.UUID       `json:"orderId"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type PageMeta struct {
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

func NewPageMeta(page, size int, total int64) PageMeta {
	offset := (page - 1) * size
	return PageMeta{
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: (total + int64(size) - 1) / int64(size),
		HasPrev:    page > 1,
		HasNext:    int64(offset+size) < total,
	}
}
