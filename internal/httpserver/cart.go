package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/medical_shop/internal/service"
	"github.com/Skotchmaster/medical_shop/internal/transport"
	"github.com/Skotchmaster/medical_shop/pkg/logging"
	middleware "github.com/Skotchmaster/medical_shop/pkg/middleware/auth"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, err := middleware.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	cart, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := middleware.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_to_cart_error", "invalid body", err)
	}

	item, err := h.Svc.AddToCart(ctx, userID, req)
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}

	l.Info("add_to_cart_success", "product_id", item.ProductID, "quantity", item.Quantity)
	return c.JSON(http.StatusCreated, item)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	userID, err := middleware.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	id, err := parseID(c, l, "update_cart_item_error")
	if err != nil {
		return err
	}

	var req transport.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_cart_item_error", "invalid body", err)
	}

	item, err := h.Svc.UpdateQuantity(ctx, userID, id, req.Quantity)
	if err != nil {
		return fail(l, "update_cart_item_error", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	userID, err := middleware.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	id, err := parseID(c, l, "remove_cart_item_error")
	if err != nil {
		return err
	}

	if err := h.Svc.RemoveItem(ctx, userID, id); err != nil {
		return fail(l, "remove_cart_item_error", err)
	}

	l.Info("remove_cart_item_success", "item_id", id)
	return c.JSON(http.StatusOK, map[string]string{"message": "Item removed from cart"})
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	userID, err := middleware.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	if err := h.Svc.Clear(ctx, userID); err != nil {
		return fail(l, "clear_cart_error", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Cart cleared"})
}
