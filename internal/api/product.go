package api

import (
	"github.com/labstack/echo/v4"
	"storefront-service/internal/entity"
	"storefront-service/internal/service"
)

type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ListProducts --> GET /products?category=&sort=
func (h *ProductHandler) ListProducts(c echo.Context) error {
	products, err := h.productService.ListProducts(c.Request().Context(), c.QueryParam("category"), c.QueryParam("sort"))
	if err != nil {
		return respondError(c, err, 500)
	}
	return c.JSON(200, products)
}

// GetProduct --> GET /products/:id
func (h *ProductHandler) GetProduct(c echo.Context) error {
	product, err := h.productService.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err, 500)
	}
	return c.JSON(200, product)
}

// AdminListProducts --> GET /admin/products
func (h *ProductHandler) AdminListProducts(c echo.Context) error {
	products, err := h.productService.AdminListProducts(c.Request().Context())
	if err != nil {
		return respondError(c, err, 500)
	}
	return c.JSON(200, products)
}

// CreateProduct --> POST /admin/products
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	in := entity.ProductInput{}
	if err := c.Bind(&in); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	product, err := h.productService.CreateProduct(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err, 500)
	}
	return c.JSON(201, product)
}

// UpdateProduct --> PUT /admin/products/:id
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	in := entity.ProductInput{}
	if err := c.Bind(&in); err != nil {
		return c.JSON(400, map[string]string{"error": "Invalid request payload"})
	}

	product, err := h.productService.UpdateProduct(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return respondError(c, err, 500)
	}
	return c.JSON(200, product)
}

// DeleteProduct --> DELETE /admin/products/:id
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	if err := h.productService.DeleteProduct(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err, 500)
	}
	return c.JSON(200, map[string]bool{"success": true})
}

// RestoreProduct --> POST /admin/products/:id/restore
func (h *ProductHandler) RestoreProduct(c echo.Context) error {
	if err := h.productService.RestoreProduct(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err, 500)
	}
	return c.JSON(200, map[string]bool{"success": true})
}
