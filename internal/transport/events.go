package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventUserRegistered         = "user_registered"
	EventPasswordResetRequested = "password_reset_requested"
	EventPasswordReset          = "password_reset"
	EventProductCreated         = "product_created"
	EventProductUpdated         = "product_updated"
	EventProductDeleted         = "product_deleted"
	EventOrderPlaced            = "order_placed"
	EventOrderStatusChanged     = "order_status_changed"
)

type UserEvent struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

// PasswordResetRequestedEvent carries the one-time token to the mail sender.
type PasswordResetRequestedEvent struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ProductEvent struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
}

type OrderPlacedItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderPlacedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	UserID      uuid.UUID         `json:"user_id"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Items       []OrderPlacedItem `json:"items"`
}

type OrderStatusChangedEvent struct {
	OrderID uuid.UUID `json:"order_id"`
	From    string    `json:"from"`
	To      string    `json:"to"`
}
