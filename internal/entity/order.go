package entity

import (
	"github.com/shopspring/decimal"
	"time"
)

type Order struct {
	ID              int             `json:"id"`
	OrderID         string          `json:"orderId"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerPhone   string          `json:"customerPhone"`
	ShippingAddress string          `json:"shippingAddress"`
	Apartment       string          `json:"apartment,omitempty"`
	City            string          `json:"city"`
	State           string          `json:"state"`
	Pincode         string          `json:"pincode"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	TotalItems      int             `json:"totalItems"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	Items           []OrderItem     `json:"items"`
}

// OrderItem keeps the product name, price and image as they were at purchase time.
type OrderItem struct {
	ID           int             `json:"id"`
	OrderID      int             `json:"-"`
	ProductID    string          `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductPrice decimal.Decimal `json:"productPrice"`
	ProductImage string          `json:"productImage"`
	Quantity     int             `json:"quantity"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// fulfilmentStep orders the non-cancelled statuses along the fulfilment path.
var fulfilmentStep = map[OrderStatus]int{
	StatusPending:    0,
	StatusProcessing: 1,
	StatusShipped:    2,
	StatusDelivered:  3,
}

// ParseOrderStatus reports whether s is one of the fixed order statuses.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	for _, status := range OrderStatuses {
		if string(status) == s {
			return status, true
		}
	}
	return "", false
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo allows any forward move along the fulfilment path,
// skipped steps included, or cancellation from any non-terminal status.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if target == StatusCancelled {
		return true
	}
	to, ok := fulfilmentStep[target]
	return ok && to > fulfilmentStep[s]
}

// OrderStats summarises orders for the admin dashboard.
type OrderStats struct {
	TotalOrders   int                 `json:"totalOrders"`
	ByStatus      map[OrderStatus]int `json:"byStatus"`
	Revenue       decimal.Decimal     `json:"revenue"`
	TotalProducts int                 `json:"totalProducts"`
}

type DailyRevenue struct {
	Date       string          `json:"date"`
	Revenue    decimal.Decimal `json:"revenue"`
	OrderCount int             `json:"orderCount"`
}

type TopProduct struct {
	ProductName string          `json:"productName"`
	UnitsSold   int             `json:"unitsSold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

/*
Mysql Table

CREATE TABLE orders (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	order_id VARCHAR(40) NOT NULL UNIQUE,
	...
);

CREATE TABLE order_items (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	order_id BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	product_id VARCHAR(36) NOT NULL,
	...
);

Full DDL lives in migrations.
*/
