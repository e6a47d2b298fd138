package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"net/http"
	"storefront-service/internal/cart"
	"storefront-service/internal/service"
	"time"
)

const (
	cartCookie    = "cart_session"
	cartCookieAge = 30 * 24 * time.Hour
)

// existingSession returns the caller's cart session without minting one.
func existingSession(c echo.Context) (string, bool) {
	ck, err := c.Cookie(cartCookie)
	if err != nil || ck.Value == "" {
		return "", false
	}
	if _, err := uuid.Parse(ck.Value); err != nil {
		return "", false
	}
	return ck.Value, true
}

// session returns the caller's cart session, setting a fresh cookie when
// there is none.
func session(c echo.Context) string {
	if id, ok := existingSession(c); ok {
		return id
	}
	id := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     cartCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(cartCookieAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

type CartHandler struct {
	carts          *cart.Manager
	productService *service.ProductService
}

func NewCartHandler(carts *cart.Manager, productService *service.ProductService) *CartHandler {
	return &CartHandler{carts: carts, productService: productService}
}

// GetCart --> GET /cart
func (h *CartHandler) GetCart(c echo.Context) error {
	ct, err := h.carts.Get(c.Request().Context(), session(c))
	if err != nil {
		return respondError(c, err, 500)
	}
	return c.JSON(200, ct.Snapshot())
}

// AddItem --> POST /cart/items {productId}
func (h *CartHandler) AddItem(c echo.Context) error {
	body := struct {
		ProductID string `json:"productId"`
	}{}
	if err := c.Bind(&body); err != nil || body.ProductID == "" {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	ctx := c.Request().Context()
	product, err := h.productService.GetProduct(ctx, body.ProductID)
	if err != nil {
		return respondError(c, err, 500)
	}

	ct, err := h.carts.Update(ctx, session(c), func(ct *cart.Cart) { ct.Add(*product) })
	if err != nil {
		return respondError(c, err, 500)
	}
	return c.JSON(200, ct.Snapshot())
}

// UpdateItem --> PUT /cart/items/:productId {quantity}
func (h *CartHandler) UpdateItem(c echo.Context) error {
	body := struct {
		Quantity *int `json:"quantity"`
	}{}
	if err := c.Bind(&body); err != nil || body.Quantity == nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	productID := c.Param("productId")
	ct, err := h.carts.Update(c.Request().Context(), session(c), func(ct *cart.Cart) { ct.UpdateQuantity(productID, *body.Quantity) })
	if err != nil {
		return respondError(c, err, 500)
	}
	return c.JSON(200, ct.Snapshot())
}

// RemoveItem --> DELETE /cart/items/:productId
func (h *CartHandler) RemoveItem(c echo.Context) error {
	productID := c.Param("productId")
	ct, err := h.carts.Update(c.Request().Context(), session(c), func(ct *cart.Cart) { ct.Remove(productID) })
	if err != nil {
		return respondError(c, err, 500)
	}
	return c.JSON(200, ct.Snapshot())
}

// ClearCart --> DELETE /cart
func (h *CartHandler) ClearCart(c echo.Context) error {
	if err := h.carts.Clear(c.Request().Context(), session(c)); err != nil {
		return respondError(c, err, 500)
	}
	return c.JSON(200, cart.New(nil).Snapshot())
}
