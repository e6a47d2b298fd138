package api

import (
	"fmt"
	"github.com/labstack/echo/v4"
	"storefront-service/internal/cart"
	"storefront-service/internal/invoice"
	"storefront-service/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
	carts        *cart.Manager
	storeName    string
	orderURL     string
}

// NewOrderHandler creates a new instance of OrderHandler. orderURL is the
// public order page with a %s placeholder for the order id.
func NewOrderHandler(orderService *service.OrderService, carts *cart.Manager, storeName, orderURL string) *OrderHandler {
	return &OrderHandler{orderService: orderService, carts: carts, storeName: storeName, orderURL: orderURL}
}

// PlaceOrder --> POST /orders
func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	req := service.PlaceOrderRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}
	req.IdempotentKey = c.Request().Header.Get("Idempotent-Key")

	order, err := h.orderService.PlaceOrder(ctx, req)
	if err != nil {
		return respondError(c, err, 400)
	}

	if session, ok := existingSession(c); ok && h.carts != nil {
		if err := h.carts.Clear(ctx, session); err != nil {
			logger.Error().Err(err).Msgf("Error clearing cart after order %s", order.OrderID)
		}
	}

	return c.JSON(200, map[string]interface{}{"success": true, "orderId": order.OrderID})
}

// GetOrder --> GET /orders/:orderId
func (h *OrderHandler) GetOrder(c echo.Context) error {
	order, err := h.orderService.GetOrder(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		return respondError(c, err, 500)
	}
	return c.JSON(200, order)
}

// GetInvoice --> GET /orders/:orderId/invoice
func (h *OrderHandler) GetInvoice(c echo.Context) error {
	order, err := h.orderService.GetOrder(c.Request().Context(), c.Param("orderId"))
	if err != nil {
		return respondError(c, err, 500)
	}

	url := ""
	if h.orderURL != "" {
		url = fmt.Sprintf(h.orderURL, order.OrderID)
	}
	pdf, err := invoice.Render(order, h.storeName, url)
	if err != nil {
		return respondError(c, err, 500)
	}

	c.Response().Header().Set("Content-Disposition", "attachment; filename=invoice-"+order.OrderID+".pdf")
	return c.Blob(200, "application/pdf", pdf)
}

// ListOrders --> GET /admin/orders?status=
func (h *OrderHandler) ListOrders(c echo.Context) error {
	orders, err := h.orderService.ListOrders(c.Request().Context(), c.QueryParam("status"))
	if err != nil {
		return respondError(c, err, 500)
	}
	return c.JSON(200, orders)
}

// UpdateStatus --> PUT /admin/orders/:orderId/status
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	body := struct {
		Status string `json:"status"`
	}{}
	if err := c.Bind(&body); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	order, err := h.orderService.UpdateStatus(c.Request().Context(), c.Param("orderId"), body.Status)
	if err != nil {
		return respondError(c, err, 500)
	}
	return c.JSON(200, map[string]interface{}{"success": true, "order": order})
}
