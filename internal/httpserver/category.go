package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/medical_shop/internal/service"
	"github.com/Skotchmaster/medical_shop/internal/transport"
	"github.com/Skotchmaster/medical_shop/pkg/logging"
)

type CategoryHTTP struct {
	Svc *service.CategoryService
}

func (h *CategoryHTTP) Tree(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.tree")

	roots, err := h.Svc.Tree(ctx)
	if err != nil {
		return fail(l, "category_tree_error", err)
	}
	return c.JSON(http.StatusOK, roots)
}

func (h *CategoryHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.create")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "category_create_error", "invalid body", err)
	}

	cat, err := h.Svc.Create(ctx, req)
	if err != nil {
		return fail(l, "category_create_error", err)
	}

	l.Info("category_create_success", "category_id", cat.ID)
	return c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.update")

	id, err := parseID(c, l, "category_update_error")
	if err != nil {
		return err
	}

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "category_update_error", "invalid body", err)
	}

	cat, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return fail(l, "category_update_error", err)
	}

	l.Info("category_update_success", "category_id", id)
	return c.JSON(http.StatusOK, cat)
}

func (h *CategoryHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete")

	id, err := parseID(c, l, "category_delete_error")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, id); err != nil {
		return fail(l, "category_delete_error", err)
	}

	l.Info("category_delete_success", "category_id", id)
	return c.JSON(http.StatusOK, map[string]string{"message": "Category deleted"})
}
