package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	middleware "github.com/Skotchmaster/medical_shop/pkg/middleware/auth"
	loggingmw "github.com/Skotchmaster/medical_shop/pkg/middleware/logging"
	"github.com/Skotchmaster/medical_shop/pkg/middleware/ratelimit"
)

type Deps struct {
	Auth     *AuthHTTP
	Catalog  *CatalogHTTP
	Category *CategoryHTTP
	Cart     *CartHTTP
	Order    *OrderHTTP
	Support  *SupportHTTP

	Gate         *middleware.Gate
	LoginLimiter *ratelimit.Limiter
	// Ready reports whether backing stores answer; nil means always ready.
	Ready func(ctx context.Context) error
}

// NewEcho returns an echo instance with the shared middleware chain and error rendering.
func NewEcho(logger *slog.Logger, allowedOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomw.Secure())
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready").SetInternal(err)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	limited := func(h echo.HandlerFunc) echo.HandlerFunc { return h }
	if d.LoginLimiter != nil {
		limited = d.LoginLimiter.Middleware
	}

	e.POST("/register", d.Auth.Register)
	e.POST("/login", limited(d.Auth.Login))
	e.POST("/forgot-password", limited(d.Auth.ForgotPassword))
	e.POST("/reset-password", d.Auth.ResetPassword)
	e.POST("/logout", d.Auth.Logout, d.Gate.RequireAuth)
	e.GET("/dashboard", d.Auth.Dashboard, d.Gate.RequireAuth)
	e.GET("/me", d.Auth.Me, d.Gate.RequireAuth)

	products := e.Group("/products")
	products.GET("", d.Catalog.GetProducts)
	products.GET("/search", d.Catalog.SearchProducts)
	products.GET("/:id", d.Catalog.GetProduct)
	e.GET("/categories", d.Category.Tree)

	cart := e.Group("/cart", d.Gate.RequireAuth)
	cart.GET("", d.Cart.GetCart)
	cart.POST("", d.Cart.AddToCart)
	cart.DELETE("", d.Cart.Clear)
	cart.PATCH("/:id", d.Cart.UpdateItem)
	cart.DELETE("/:id", d.Cart.RemoveItem)

	orders := e.Group("/orders", d.Gate.RequireAuth)
	orders.GET("", d.Order.ListOrders)
	orders.POST("", d.Order.PlaceOrder)
	orders.GET("/:id", d.Order.GetOrder)

	support := e.Group("/support")
	support.GET("/faqs", d.Support.FAQs)
	support.GET("/contact", d.Support.Contact)

	admin := e.Group("/admin", d.Gate.RequireAdmin)
	admin.GET("/products", d.Catalog.GetProducts)
	admin.GET("/products/:id", d.Catalog.GetProduct)
	admin.POST("/products", d.Catalog.CreateProduct)
	admin.PUT("/products/:id", d.Catalog.UpdateProduct)
	admin.DELETE("/products/:id", d.Catalog.DeleteProduct)

	admin.GET("/categories", d.Category.Tree)
	admin.POST("/categories", d.Category.Create)
	admin.PUT("/categories/:id", d.Category.Update)
	admin.DELETE("/categories/:id", d.Category.Delete)

	admin.GET("/orders", d.Order.AdminListOrders)
	admin.GET("/orders/:id", d.Order.AdminGetOrder)
	admin.PATCH("/orders/:id", d.Order.UpdateStatus)

	admin.GET("/users", d.Auth.ListUsers)
}
