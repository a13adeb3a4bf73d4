package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/medical_shop/internal/models"
	"github.com/Skotchmaster/medical_shop/internal/repo"
	"github.com/Skotchmaster/medical_shop/internal/transport"
	"github.com/Skotchmaster/medical_shop/pkg/events"
	"github.com/Skotchmaster/medical_shop/pkg/logging"
)

type OrderService struct {
	Repo      *repo.GormRepo
	Publisher events.Publisher
}

// PlaceOrder turns the user's cart into a pending order. Reading the cart,
// checking stock and every write share one transaction; stock is taken with a
// conditional update so a concurrent checkout or admin edit cannot oversell.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req transport.PlaceOrderRequest) (*transport.PlaceOrderResult, error) {
	l := logging.FromContext(ctx).With("svc", "order.place_order", "user_id", userID)

	var order *models.Order
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		lines, err := tx.LockCartLines(ctx, userID)
		if err != nil {
			return fmt.Errorf("read cart: %w", err)
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		for _, line := range lines {
			if line.Quantity > line.Stock {
				return &InsufficientStockError{ProductID: line.ProductID, Name: line.Name}
			}
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			items = append(items, models.OrderItem{
				ProductID:   line.ProductID,
				ProductName: line.Name,
				UnitPrice:   line.Price,
				Quantity:    line.Quantity,
			})
		}

		order = &models.Order{
			UserID:          userID,
			TotalAmount:     total,
			Status:          models.OrderStatusPending,
			ShippingAddress: strings.TrimSpace(req.ShippingAddress),
			Phone:           strings.TrimSpace(req.Phone),
			Items:           items,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, line := range lines {
			ok, err := tx.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if !ok {
				return &InsufficientStockError{ProductID: line.ProductID, Name: line.Name}
			}
		}

		cleared, err := tx.ClearCart(ctx, userID)
		if err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		if cleared != int64(len(lines)) {
			return fmt.Errorf("clear cart: %w: removed %d of %d lines", errCartChanged, cleared, len(lines))
		}
		return nil
	})
	if err != nil {
		var stockErr *InsufficientStockError
		switch {
		case errors.Is(err, ErrEmptyCart):
			l.Info("place_order_rejected", "reason", "empty cart")
			return nil, err
		case errors.As(err, &stockErr):
			l.Info("place_order_rejected", "reason", "insufficient stock", "product_id", stockErr.ProductID)
			return nil, err
		default:
			l.Error("place_order_failed", "error", err)
			return nil, fmt.Errorf("%w: %w", ErrOrderPlacementFailed, err)
		}
	}

	placed := transport.OrderPlacedEvent{OrderID: order.ID, UserID: userID, TotalAmount: order.TotalAmount}
	for _, it := range order.Items {
		placed.Items = append(placed.Items, transport.OrderPlacedItem{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	publish(ctx, s.Publisher, events.TopicOrder, order.ID.String(), transport.EventOrderPlaced, placed)

	return &transport.PlaceOrderResult{OrderID: order.ID, TotalAmount: order.TotalAmount}, nil
}

func (s *OrderService) ListOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.Repo.ListOrders(ctx, userID)
}

// GetOrder hides orders owned by other users behind ErrNotFound.
func (s *OrderService) GetOrder(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order: %w", ErrNotFound)
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("order: %w", ErrNotFound)
	}
	return order, nil
}

func (s *OrderService) ListAllOrders(ctx context.Context, status string) ([]repo.AdminOrderRow, error) {
	if status != "" && !models.IsOrderStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.Repo.ListAllOrders(ctx, status)
}

func (s *OrderService) AdminGetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order: %w", ErrNotFound)
		}
		return nil, err
	}
	return order, nil
}

// UpdateStatus changes only the status column; line items are never touched.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !models.IsOrderStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	order, err := s.AdminGetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	from := order.Status
	if !models.CanTransition(from, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, status)
	}

	ok, err := s.Repo.UpdateOrderStatus(ctx, id, from, status)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: status changed concurrently", ErrInvalidTransition)
	}
	order.Status = status

	publish(ctx, s.Publisher, events.TopicOrder, id.String(), transport.EventOrderStatusChanged,
		transport.OrderStatusChangedEvent{OrderID: id, From: from, To: status})
	return order, nil
}
