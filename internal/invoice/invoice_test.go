package invoice

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"storefront-service/internal/entity"
)

func TestRenderProducesPDF(t *testing.T) {
	order := &entity.Order{
		OrderID:         "ORD-1700000000000-abc123",
		CustomerName:    "José Müller",
		CustomerEmail:   "jose@example.com",
		CustomerPhone:   "9876543210",
		ShippingAddress: "12 MG Road",
		Apartment:       "Flat 4B",
		City:            "Bengaluru",
		State:           "Karnataka",
		Pincode:         "560001",
		TotalPrice:      decimal.NewFromInt(1000),
		TotalItems:      2,
		Status:          entity.StatusPending,
		CreatedAt:       time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Items: []entity.OrderItem{
			{ProductID: "P1", ProductName: "Poster", ProductPrice: decimal.NewFromInt(500), Quantity: 2, Subtotal: decimal.NewFromInt(1000)},
		},
	}

	pdf, err := Render(order, "Poster Shop", "https://shop.example.com/orders/ORD-1700000000000-abc123")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
	assert.Greater(t, len(pdf), 1000)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "Rs. 1099.90", money(decimal.RequireFromString("1099.9")))
}
