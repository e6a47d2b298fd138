package api

import (
	"context"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
	"storefront-service/internal/auth"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	JWTSecret []byte
	RateLimit float64 // requests per second per client; 0 disables
	RateBurst int
	UploadDir string // served at /uploads when set
}

func NewRouter(cfg RouterConfig, orders *OrderHandler, products *ProductHandler, carts *CartHandler, admin *AdminHandler, db Pinger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiterWithConfig(rateLimiterConfig(cfg.RateLimit, cfg.RateBurst)))
	}

	if cfg.UploadDir != "" {
		e.Static("/uploads", cfg.UploadDir)
	}

	e.GET("/products", products.ListProducts)
	e.GET("/products/:id", products.GetProduct)

	e.GET("/cart", carts.GetCart)
	e.DELETE("/cart", carts.ClearCart)
	e.POST("/cart/items", carts.AddItem)
	e.PUT("/cart/items/:productId", carts.UpdateItem)
	e.DELETE("/cart/items/:productId", carts.RemoveItem)

	e.POST("/orders", orders.PlaceOrder)
	e.GET("/orders/:orderId", orders.GetOrder)
	e.GET("/orders/:orderId/invoice", orders.GetInvoice)

	g := e.Group("/admin", auth.JWT(cfg.JWTSecret), auth.AdminOnly)
	g.GET("/products", products.AdminListProducts)
	g.POST("/products", products.CreateProduct)
	g.PUT("/products/:id", products.UpdateProduct)
	g.DELETE("/products/:id", products.DeleteProduct)
	g.POST("/products/:id/restore", products.RestoreProduct)
	g.GET("/orders", orders.ListOrders)
	g.PUT("/orders/:orderId/status", orders.UpdateStatus)
	g.GET("/dashboard", admin.Dashboard)
	g.GET("/analytics/revenue", admin.Revenue)
	g.GET("/analytics/top-products", admin.TopProducts)
	g.POST("/upload", admin.Upload)

	e.GET("/health", func(c echo.Context) error {
		status := "ok"
		code := 200
		if err := db.Ping(c.Request().Context()); err != nil {
			logger.Error().Err(err).Msg("Health check failed")
			status = "unavailable"
			code = 503
		}
		return c.JSON(code, map[string]interface{}{
			"status":  status,
			"service": "storefront-service",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	return e
}

func rateLimiterConfig(limit float64, burst int) middleware.RateLimiterConfig {
	return middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health"
		},
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(limit),
				Burst:     burst,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}
}
