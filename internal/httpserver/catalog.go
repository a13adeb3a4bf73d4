package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/medical_shop/internal/service"
	"github.com/Skotchmaster/medical_shop/internal/transport"
	"github.com/Skotchmaster/medical_shop/internal/util"
	"github.com/Skotchmaster/medical_shop/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := parseID(c, l, "get_product_error")
	if err != nil {
		return err
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page, err := h.Svc.GetProducts(ctx, service.ProductQuery{
		Page:         util.ParseIntDefault(c.QueryParam("page"), 1),
		Size:         util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
		CategorySlug: c.QueryParam("category"),
	})
	if err != nil {
		return fail(l, "get_products_error", err)
	}

	l.Info("get_products_success", "total", page.Meta.Total)
	return c.JSON(http.StatusOK, page)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page, err := h.Svc.SearchProducts(ctx,
		c.QueryParam("q"),
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
	)
	if err != nil {
		return fail(l, "search_products_error", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_create_error", "invalid body", err)
	}

	product, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		return fail(l, "product_create_error", err)
	}

	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, product)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "update_product")

	id, err := parseID(c, l, "product_update_error")
	if err != nil {
		return err
	}

	var req transport.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_update_error", "invalid body", err)
	}

	product, err := h.Svc.UpdateProduct(ctx, id, req)
	if err != nil {
		return fail(l, "product_update_error", err)
	}

	l.Info("update_product_success", "product_id", id)
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delete_product")

	id, err := parseID(c, l, "product_delete_error")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return fail(l, "product_delete_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, map[string]string{"message": "Product deleted"})
}
