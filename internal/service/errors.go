package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/medical_shop/internal/domain"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
	ErrConflict   = errors.New("conflict")   // 409

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")

	ErrEmptyCart            = errors.New("cart is empty")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrOrderPlacementFailed = errors.New("failed to place order")
	ErrInvalidTransition    = errors.New("invalid order status transition")

	ErrCycle = domain.ErrCycle

	// errCartChanged means another checkout consumed the cart mid-transaction.
	errCartChanged = errors.New("cart changed during checkout")
)

// InsufficientStockError names the product whose stock cannot cover the cart line.
type InsufficientStockError struct {
	ProductID uuid.UUID
	Name      string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.Name)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
