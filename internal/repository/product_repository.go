package repository

import (
	"context"
	"database/sql"
	"errors"
	"storefront-service/internal/entity"
)

type ProductRepository struct {
	q querier
}

const productColumns = `id, name, description, price, image, stock, category, is_deleted, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	p := &entity.Product{}
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.Stock, &p.Category, &p.IsDeleted, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProductByID returns the product including soft-deleted ones.
func (r *ProductRepository) GetProductByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`
	p, err := scanProduct(r.q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProductRepository) GetProducts(ctx context.Context, filter entity.ProductFilter) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1 = 1`
	var args []interface{}

	if !filter.IncludeDeleted {
		query += ` AND is_deleted = ?`
		args = append(args, false)
	}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}

	switch filter.Sort {
	case entity.SortOldest:
		query += ` ORDER BY created_at ASC, id ASC`
	case entity.SortPriceLow:
		query += ` ORDER BY price ASC, created_at DESC`
	case entity.SortPriceHigh:
		query += ` ORDER BY price DESC, created_at DESC`
	default:
		query += ` ORDER BY created_at DESC, id DESC`
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*entity.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func (r *ProductRepository) CreateProduct(ctx context.Context, p *entity.Product) (*entity.Product, error) {
	query := `INSERT INTO products (` + productColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, query, p.ID, p.Name, p.Description, p.Price, p.Image, p.Stock, p.Category, p.IsDeleted, p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProductRepository) UpdateProduct(ctx context.Context, p *entity.Product) (*entity.Product, error) {
	query := `UPDATE products SET name = ?, description = ?, price = ?, image = ?, stock = ?, category = ? WHERE id = ?`
	_, err := r.q.ExecContext(ctx, query, p.Name, p.Description, p.Price, p.Image, p.Stock, p.Category, p.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SetDeleted flips the soft-delete flag.
func (r *ProductRepository) SetDeleted(ctx context.Context, id string, deleted bool) error {
	_, err := r.q.ExecContext(ctx, `UPDATE products SET is_deleted = ? WHERE id = ?`, deleted, id)
	return err
}

// DecrementStock removes quantity units if at least that many remain. It
// reports false when the stock was insufficient at the time of the update.
func (r *ProductRepository) DecrementStock(ctx context.Context, id string, quantity int) (bool, error) {
	query := `UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?`
	res, err := r.q.ExecContext(ctx, query, quantity, id, quantity)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *ProductRepository) IncrementStock(ctx context.Context, id string, quantity int) error {
	_, err := r.q.ExecContext(ctx, `UPDATE products SET stock = stock + ? WHERE id = ?`, quantity, id)
	return err
}

func (r *ProductRepository) CountProducts(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE is_deleted = ?`, false).Scan(&n)
	return n, err
}
