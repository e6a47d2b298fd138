package api

import (
	"github.com/labstack/echo/v4"
	"storefront-service/internal/auth"
	"storefront-service/internal/blob"
	"storefront-service/internal/service"
	"strconv"
)

const maxUploadBytes = 10 << 20

type AdminHandler struct {
	analytics *service.AnalyticsService
	blobs     blob.Store
}

func NewAdminHandler(analytics *service.AnalyticsService, blobs blob.Store) *AdminHandler {
	return &AdminHandler{analytics: analytics, blobs: blobs}
}

// Dashboard --> GET /admin/dashboard
func (h *AdminHandler) Dashboard(c echo.Context) error {
	stats, err := h.analytics.Stats(c.Request().Context())
	if err != nil {
		return respondError(c, err, 500)
	}
	return c.JSON(200, stats)
}

// Revenue --> GET /admin/analytics/revenue?days=
func (h *AdminHandler) Revenue(c echo.Context) error {
	days, _ := strconv.Atoi(c.QueryParam("days"))
	series, err := h.analytics.RevenueByDate(c.Request().Context(), days)
	if err != nil {
		return respondError(c, err, 500)
	}
	return c.JSON(200, series)
}

// TopProducts --> GET /admin/analytics/top-products?limit=
func (h *AdminHandler) TopProducts(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	top, err := h.analytics.TopProducts(c.Request().Context(), limit)
	if err != nil {
		return respondError(c, err, 500)
	}
	return c.JSON(200, top)
}

// Upload --> POST /admin/upload (multipart "file")
func (h *AdminHandler) Upload(c echo.Context) error {
	if err := auth.RequireAdmin(c.Request().Context()); err != nil {
		return respondError(c, err, 500)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(400, map[string]string{"error": "No file provided"})
	}
	if fh.Size > maxUploadBytes {
		return c.JSON(400, map[string]string{"error": "File is too large"})
	}

	src, err := fh.Open()
	if err != nil {
		return respondError(c, err, 500)
	}
	defer src.Close()

	url, err := h.blobs.Put(c.Request().Context(), src)
	if err != nil {
		return respondError(c, err, 500)
	}
	return c.JSON(200, map[string]interface{}{"success": true, "url": url})
}
