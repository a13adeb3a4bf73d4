package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/medical_shop/internal/service"
	"github.com/Skotchmaster/medical_shop/internal/transport"
	"github.com/Skotchmaster/medical_shop/pkg/logging"
	middleware "github.com/Skotchmaster/medical_shop/pkg/middleware/auth"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.place")

	userID, err := middleware.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	var req transport.PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "place_order_error", "invalid body", err)
	}

	res, err := h.Svc.PlaceOrder(ctx, userID, req)
	if err != nil {
		return fail(l, "place_order_error", err)
	}

	l.Info("place_order_success", "order_id", res.OrderID, "total_amount", res.TotalAmount.String())
	return c.JSON(http.StatusCreated, map[string]any{
		"message":      "Order placed successfully!",
		"orderId":      res.OrderID,
		"total_amount": res.TotalAmount,
	})
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	userID, err := middleware.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	orders, err := h.Svc.ListOrders(ctx, userID)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	userID, err := middleware.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	id, err := parseID(c, l, "get_order_error")
	if err != nil {
		return err
	}

	order, err := h.Svc.GetOrder(ctx, userID, id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) AdminListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_orders")

	orders, err := h.Svc.ListAllOrders(ctx, c.QueryParam("status"))
	if err != nil {
		return fail(l, "admin_list_orders_error", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) AdminGetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.get_order")

	id, err := parseID(c, l, "admin_get_order_error")
	if err != nil {
		return err
	}
	order, err := h.Svc.AdminGetOrder(ctx, id)
	if err != nil {
		return fail(l, "admin_get_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_order_status")

	id, err := parseID(c, l, "update_order_status_error")
	if err != nil {
		return err
	}

	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_order_status_error", "invalid body", err)
	}

	order, err := h.Svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		return fail(l, "update_order_status_error", err)
	}

	l.Info("update_order_status_success", "order_id", id, "status", order.Status)
	return c.JSON(http.StatusOK, order)
}
