package service

import (
	"context"
	"errors"
	"fmt"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"os"
	"sort"
	"storefront-service/internal/auth"
	"storefront-service/internal/entity"
	"storefront-service/internal/orderid"
	"storefront-service/internal/repository"
	"storefront-service/internal/validation"
	"strings"
	"time"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Notifier is handed every committed order. It must not block.
type Notifier interface {
	OrderPlaced(order *entity.Order)
}

type ProductCache interface {
	Get(ctx context.Context, id string) (*entity.Product, bool, error)
	Set(ctx context.Context, p *entity.Product) error
	Invalidate(ctx context.Context, ids ...string) error
}

type IdempotencyGuard interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type noopNotifier struct{}

func (noopNotifier) OrderPlaced(*entity.Order) {}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*entity.Product, bool, error) { return nil, false, nil }
func (noopCache) Set(context.Context, *entity.Product) error                 { return nil }
func (noopCache) Invalidate(context.Context, ...string) error                { return nil }

type noopGuard struct{}

func (noopGuard) Claim(context.Context, string) (bool, error) { return true, nil }
func (noopGuard) Release(context.Context, string) error       { return nil }

// OrderService places orders and moves them through their statuses.
type OrderService struct {
	store           *repository.Store
	ids             *orderid.Generator
	notifier        Notifier
	cache           ProductCache
	idempotency     IdempotencyGuard
	restockOnCancel bool
	now             func() time.Time
}

type OrderOption func(*OrderService)

func WithNotifier(n Notifier) OrderOption {
	return func(s *OrderService) { s.notifier = n }
}

func WithProductCache(c ProductCache) OrderOption {
	return func(s *OrderService) { s.cache = c }
}

func WithIdempotencyGuard(g IdempotencyGuard) OrderOption {
	return func(s *OrderService) { s.idempotency = g }
}

// WithRestockOnCancel returns the stock of an order's items when it is cancelled.
func WithRestockOnCancel(enabled bool) OrderOption {
	return func(s *OrderService) { s.restockOnCancel = enabled }
}

func NewOrderService(store *repository.Store, opts ...OrderOption) *OrderService {
	s := &OrderService{
		store:       store,
		ids:         orderid.NewGenerator(),
		notifier:    noopNotifier{},
		cache:       noopCache{},
		idempotency: noopGuard{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LineItem is one cart entry as submitted at checkout. Name, price and
// image are the snapshot taken when the item was added to the cart.
type LineItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

type PlaceOrderRequest struct {
	Items           []LineItem       `json:"items"`
	CustomerName    string           `json:"customerName"`
	CustomerEmail   string           `json:"customerEmail"`
	CustomerPhone   string           `json:"customerPhone"`
	ShippingAddress string           `json:"shippingAddress"`
	Apartment       string           `json:"apartment"`
	City            string           `json:"city"`
	State           string           `json:"state"`
	Pincode         string           `json:"pincode"`
	TotalPrice      *decimal.Decimal `json:"totalPrice"`
	TotalItems      *int             `json:"totalItems"`
	IdempotentKey   string           `json:"-"`
}

func (r *PlaceOrderRequest) validate() error {
	res := validation.ValidateContact(validation.Contact{
		Name:    r.CustomerName,
		Email:   r.CustomerEmail,
		Phone:   r.CustomerPhone,
		Pincode: r.Pincode,
	})
	if !res.Valid {
		return &ValidationError{Field: res.Field, Reason: res.Reason}
	}

	required := []struct{ field, value, label string }{
		{"shippingAddress", r.ShippingAddress, "Shipping address"},
		{"city", r.City, "City"},
		{"state", r.State, "State"},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.field, Reason: f.label + " is required"}
		}
	}

	for _, item := range r.Items {
		if strings.TrimSpace(item.ID) == "" {
			return &ValidationError{Field: "items", Reason: "Every item needs a product id"}
		}
		if item.Quantity < 1 {
			return &ValidationError{Field: "items", Reason: fmt.Sprintf("Invalid quantity for %s", item.Name)}
		}
		if item.Price.IsNegative() {
			return &ValidationError{Field: "items", Reason: fmt.Sprintf("Invalid price for %s", item.Name)}
		}
	}
	return nil
}

// totals derives the order totals from its items.
func totals(items []LineItem) (decimal.Decimal, int) {
	price := decimal.Zero
	count := 0
	for _, item := range items {
		price = price.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		count += item.Quantity
	}
	return price, count
}

// distinctProducts sums quantities per product. The ids come back sorted so
// concurrent checkouts lock product rows in the same order.
func distinctProducts(items []LineItem) ([]string, map[string]int, map[string]string) {
	requested := make(map[string]int)
	names := make(map[string]string)
	for _, li := range items {
		if _, seen := requested[li.ID]; !seen {
			names[li.ID] = li.Name
		}
		requested[li.ID] += li.Quantity
	}

	ids := make([]string, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, requested, names
}

// PlaceOrder creates the order, its items and the stock decrements in one
// transaction. Either all of them are written or none.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*entity.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	totalPrice, totalItems := totals(req.Items)
	// Clients total carts in binary floating point; compare at currency precision.
	if req.TotalPrice != nil && !req.TotalPrice.Round(2).Equal(totalPrice.Round(2)) {
		return nil, &ValidationError{Field: "totalPrice", Reason: "Order total does not match the cart"}
	}
	if req.TotalItems != nil && *req.TotalItems != totalItems {
		return nil, &ValidationError{Field: "totalItems", Reason: "Item count does not match the cart"}
	}

	if req.IdempotentKey != "" {
		claimed, err := s.idempotency.Claim(ctx, req.IdempotentKey)
		if err != nil {
			logger.Error().Err(err).Msgf("Error claiming idempotent key %s", req.IdempotentKey)
			return nil, err
		}
		if !claimed {
			logger.Warn().Msgf("Duplicate checkout for idempotent key %s", req.IdempotentKey)
			return nil, ErrDuplicateRequest
		}
	}

	order := &entity.Order{
		OrderID:         s.ids.New(),
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerEmail:   strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		ShippingAddress: strings.TrimSpace(req.ShippingAddress),
		Apartment:       strings.TrimSpace(req.Apartment),
		City:            strings.TrimSpace(req.City),
		State:           strings.TrimSpace(req.State),
		Pincode:         strings.TrimSpace(req.Pincode),
		TotalPrice:      totalPrice,
		TotalItems:      totalItems,
		Status:          entity.StatusPending,
		CreatedAt:       s.now().UTC().Truncate(time.Second),
	}

	items := make([]entity.OrderItem, 0, len(req.Items))
	for _, li := range req.Items {
		items = append(items, entity.OrderItem{
			ProductID:    li.ID,
			ProductName:  li.Name,
			ProductPrice: li.Price,
			ProductImage: li.Image,
			Quantity:     li.Quantity,
			Subtotal:     li.Price.Mul(decimal.NewFromInt(int64(li.Quantity))),
		})
	}

	productIDs, requested, names := distinctProducts(req.Items)

	err := s.store.WithTx(ctx, func(tx *repository.Tx) error {
		if _, err := tx.Orders.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := tx.Orders.CreateOrderItems(ctx, order.ID, items); err != nil {
			return fmt.Errorf("create order items: %w", err)
		}

		for _, id := range productIDs {
			qty := requested[id]
			product, err := tx.Products.GetProductByID(ctx, id)
			if errors.Is(err, repository.ErrNotFound) || (err == nil && product.IsDeleted) {
				return &StockError{ProductID: id, ProductName: names[id], Requested: qty, Err: ErrProductNotFound}
			}
			if err != nil {
				return fmt.Errorf("read product %s: %w", id, err)
			}
			if product.Stock < qty {
				return &StockError{ProductID: id, ProductName: product.Name, Requested: qty, Available: product.Stock, Err: ErrInsufficientStock}
			}

			ok, err := tx.Products.DecrementStock(ctx, id, qty)
			if err != nil {
				return fmt.Errorf("decrement stock of %s: %w", id, err)
			}
			if !ok {
				return &StockError{ProductID: id, ProductName: product.Name, Requested: qty, Available: product.Stock, Err: ErrInsufficientStock}
			}
		}
		return nil
	})
	if err != nil {
		if req.IdempotentKey != "" {
			if relErr := s.idempotency.Release(ctx, req.IdempotentKey); relErr != nil {
				logger.Error().Err(relErr).Msgf("Error releasing idempotent key %s", req.IdempotentKey)
			}
		}
		var stockErr *StockError
		if errors.As(err, &stockErr) {
			logger.Warn().Msgf("Order rejected: %s", stockErr.Error())
		} else {
			logger.Error().Err(err).Msg("Error placing order")
		}
		return nil, err
	}

	order.Items = items
	logger.Info().Msgf("Order %s placed: %d items, total %s", order.OrderID, order.TotalItems, order.TotalPrice.StringFixed(2))

	if err := s.cache.Invalidate(ctx, productIDs...); err != nil {
		logger.Error().Err(err).Msgf("Error invalidating product cache for order %s", order.OrderID)
	}
	s.notifier.OrderPlaced(order)

	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	order, err := s.store.Orders.GetOrderByOrderID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting order %s", orderID)
		return nil, err
	}
	return order, nil
}

// ListOrders returns orders newest first, optionally filtered by status.
func (s *OrderService) ListOrders(ctx context.Context, status string) ([]*entity.Order, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	var filter entity.OrderStatus
	if status != "" && status != "all" {
		st, ok := entity.ParseOrderStatus(status)
		if !ok {
			return nil, ErrInvalidStatus
		}
		filter = st
	}

	orders, err := s.store.Orders.GetOrders(ctx, filter)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing orders")
		return nil, err
	}
	return orders, nil
}

// UpdateStatus moves an order to status. Setting the current status again
// is a no-op.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) (*entity.Order, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	target, ok := entity.ParseOrderStatus(status)
	if !ok {
		return nil, ErrInvalidStatus
	}

	var updated *entity.Order
	err := s.store.WithTx(ctx, func(tx *repository.Tx) error {
		order, err := tx.Orders.GetOrderByOrderID(ctx, orderID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		if order.Status == target {
			updated = order
			return nil
		}
		if !order.Status.CanTransitionTo(target) {
			return &TransitionError{From: string(order.Status), To: string(target)}
		}

		swapped, err := tx.Orders.UpdateOrderStatus(ctx, orderID, order.Status, target)
		if err != nil {
			return err
		}
		if !swapped {
			// Another admin moved the order between the read and the write.
			return &TransitionError{From: string(order.Status), To: string(target)}
		}

		if target == entity.StatusCancelled && s.restockOnCancel {
			for _, item := range order.Items {
				if err := tx.Products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
					return fmt.Errorf("restock %s: %w", item.ProductID, err)
				}
			}
		}

		order.Status = target
		updated = order
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrOrderNotFound) && !errors.Is(err, ErrInvalidTransition) {
			logger.Error().Err(err).Msgf("Error updating status of order %s", orderID)
		}
		return nil, err
	}

	if target == entity.StatusCancelled && s.restockOnCancel {
		ids := make([]string, 0, len(updated.Items))
		for _, item := range updated.Items {
			ids = append(ids, item.ProductID)
		}
		if err := s.cache.Invalidate(ctx, ids...); err != nil {
			logger.Error().Err(err).Msgf("Error invalidating product cache for order %s", orderID)
		}
	}

	logger.Info().Msgf("Order %s is now %s", orderID, updated.Status)
	return updated, nil
}
