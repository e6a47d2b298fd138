package repository

import (
	"context"
	"database/sql"
	"errors"
	"github.com/shopspring/decimal"
	"storefront-service/internal/entity"
	"strings"
	"time"
)

type OrderRepository struct {
	q querier
}

const orderColumns = `id, order_id, customer_name, customer_email, customer_phone, shipping_address, apartment, city, state, pincode, total_price, total_items, status, created_at`

func scanOrder(row rowScanner) (*entity.Order, error) {
	o := &entity.Order{}
	err := row.Scan(&o.ID, &o.OrderID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.ShippingAddress, &o.Apartment,
		&o.City, &o.State, &o.Pincode, &o.TotalPrice, &o.TotalItems, &o.Status, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	o.Items = []entity.OrderItem{}
	return o, nil
}

// CreateOrder inserts the order header and sets its internal ID.
func (r *OrderRepository) CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error) {
	query := `INSERT INTO orders (order_id, customer_name, customer_email, customer_phone, shipping_address, apartment, city, state, pincode, total_price, total_items, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.q.ExecContext(ctx, query, order.OrderID, order.CustomerName, order.CustomerEmail, order.CustomerPhone, order.ShippingAddress,
		order.Apartment, order.City, order.State, order.Pincode, order.TotalPrice, order.TotalItems, order.Status, order.CreatedAt)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	order.ID = int(id)
	return order, nil
}

// CreateOrderItems batch inserts the items of one order.
func (r *OrderRepository) CreateOrderItems(ctx context.Context, orderID int, items []entity.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `INSERT INTO order_items (order_id, product_id, product_name, product_price, product_image, quantity, subtotal) VALUES `

	var values []interface{}
	placeholders := make([]string, 0, len(items))
	for _, item := range items {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?)")
		values = append(values, orderID, item.ProductID, item.ProductName, item.ProductPrice, item.ProductImage, item.Quantity, item.Subtotal)
	}
	query += strings.Join(placeholders, ", ")

	_, err := r.q.ExecContext(ctx, query, values...)
	return err
}

// GetOrderByOrderID looks an order up by its generated reference.
func (r *OrderRepository) GetOrderByOrderID(ctx context.Context, orderID string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = ?`
	order, err := scanOrder(r.q.QueryRowContext(ctx, query, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, []*entity.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrders lists orders newest first. An empty status lists all of them.
func (r *OrderRepository) GetOrders(ctx context.Context, status entity.OrderStatus) ([]*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	orders := []*entity.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) attachItems(ctx context.Context, orders []*entity.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[int]*entity.Order, len(orders))
	placeholders := make([]string, 0, len(orders))
	args := make([]interface{}, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		placeholders = append(placeholders, "?")
		args = append(args, o.ID)
	}

	query := `SELECT id, order_id, product_id, product_name, product_price, product_image, quantity, subtotal
		FROM order_items WHERE order_id IN (` + strings.Join(placeholders, ", ") + `) ORDER BY id`
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		item := entity.OrderItem{}
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.ProductPrice, &item.ProductImage, &item.Quantity, &item.Subtotal)
		if err != nil {
			return err
		}
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}

// UpdateOrderStatus moves an order from one status to another. It reports
// false when the order was not in the expected status.
func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, orderID string, from, to entity.OrderStatus) (bool, error) {
	res, err := r.q.ExecContext(ctx, `UPDATE orders SET status = ? WHERE order_id = ? AND status = ?`, to, orderID, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// CountByStatus returns the number of orders per status.
func (r *OrderRepository) CountByStatus(ctx context.Context) (map[entity.OrderStatus]int, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[entity.OrderStatus]int, len(entity.OrderStatuses))
	for _, s := range entity.OrderStatuses {
		counts[s] = 0
	}
	for rows.Next() {
		var status entity.OrderStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// Revenue sums the totals of every order that was not cancelled.
func (r *OrderRepository) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.q.QueryRowContext(ctx, `SELECT SUM(total_price) FROM orders WHERE status <> ?`, entity.StatusCancelled).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// OrderTotal is the creation time and total of one order.
type OrderTotal struct {
	CreatedAt  time.Time
	TotalPrice decimal.Decimal
}

// GetOrderTotalsSince returns the totals of non-cancelled orders created at or after since.
func (r *OrderRepository) GetOrderTotalsSince(ctx context.Context, since time.Time) ([]OrderTotal, error) {
	query := `SELECT created_at, total_price FROM orders WHERE created_at >= ? AND status <> ? ORDER BY created_at`
	rows, err := r.q.QueryContext(ctx, query, since, entity.StatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []OrderTotal
	for rows.Next() {
		var t OrderTotal
		if err := rows.Scan(&t.CreatedAt, &t.TotalPrice); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// GetTopProducts ranks products by revenue across all order items.
func (r *OrderRepository) GetTopProducts(ctx context.Context, limit int) ([]entity.TopProduct, error) {
	query := `SELECT product_name, SUM(quantity), SUM(subtotal) AS revenue
		FROM order_items GROUP BY product_name ORDER BY revenue DESC, product_name ASC LIMIT ?`
	rows, err := r.q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	top := []entity.TopProduct{}
	for rows.Next() {
		var p entity.TopProduct
		if err := rows.Scan(&p.ProductName, &p.UnitsSold, &p.Revenue); err != nil {
			return nil, err
		}
		top = append(top, p)
	}
	return top, rows.Err()
}
