package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/medical_shop/internal/service"
	"github.com/Skotchmaster/medical_shop/pkg/logging"
)

type SupportHTTP struct {
	Svc *service.SupportService
}

func (h *SupportHTTP) FAQs(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "support.faqs")

	faqs, err := h.Svc.FAQs(ctx)
	if err != nil {
		return fail(l, "get_faqs_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"faqs": faqs})
}

func (h *SupportHTTP) Contact(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Svc.Contact())
}
