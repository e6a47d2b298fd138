package entity

import (
	"github.com/shopspring/decimal"
	"time"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	IsDeleted   bool            `json:"isDeleted"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ProductInput carries the admin-editable fields of a product.
type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
}

// ProductSort selects the catalog ordering.
type ProductSort string

const (
	SortNewest    ProductSort = "newest"
	SortOldest    ProductSort = "oldest"
	SortPriceLow  ProductSort = "price-low"
	SortPriceHigh ProductSort = "price-high"
)

// ParseProductSort falls back to newest for unknown values.
func ParseProductSort(s string) ProductSort {
	switch ProductSort(s) {
	case SortOldest, SortPriceLow, SortPriceHigh:
		return ProductSort(s)
	default:
		return SortNewest
	}
}

type ProductFilter struct {
	Category       string
	Sort           ProductSort
	IncludeDeleted bool
}
