package service

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"storefront-service/internal/auth"
	"storefront-service/internal/entity"
	"storefront-service/internal/repository"
	"strings"
	"time"
)

// ProductService serves the catalog and the admin product screens.
type ProductService struct {
	store *repository.Store
	cache ProductCache
	now   func() time.Time
}

func NewProductService(store *repository.Store, cache ProductCache) *ProductService {
	if cache == nil {
		cache = noopCache{}
	}
	return &ProductService{store: store, cache: cache, now: time.Now}
}

// ListProducts returns the storefront catalog. Soft-deleted products are hidden.
func (s *ProductService) ListProducts(ctx context.Context, category, sort string) ([]*entity.Product, error) {
	if category == "all" {
		category = ""
	}
	filter := entity.ProductFilter{Category: category, Sort: entity.ParseProductSort(sort)}
	products, err := s.store.Products.GetProducts(ctx, filter)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing products")
		return nil, err
	}
	return products, nil
}

// GetProduct reads through the product cache. Soft-deleted products are
// not found.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	cached, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		logger.Warn().Err(err).Msgf("Product cache unavailable for %s", id)
	}
	if ok && !cached.IsDeleted {
		return cached, nil
	}

	p, err := s.store.Products.GetProductByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error getting product %s", id)
		return nil, err
	}
	if p.IsDeleted {
		return nil, ErrProductNotFound
	}

	if err := s.cache.Set(ctx, p); err != nil {
		logger.Warn().Err(err).Msgf("Error caching product %s", id)
	}
	return p, nil
}

// AdminListProducts includes soft-deleted products.
func (s *ProductService) AdminListProducts(ctx context.Context) ([]*entity.Product, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.store.Products.GetProducts(ctx, entity.ProductFilter{Sort: entity.SortNewest, IncludeDeleted: true})
}

func validateProduct(in entity.ProductInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return &ValidationError{Field: "name", Reason: "Product name is required"}
	case strings.TrimSpace(in.Category) == "":
		return &ValidationError{Field: "category", Reason: "Category is required"}
	case in.Price.IsNegative():
		return &ValidationError{Field: "price", Reason: "Price cannot be negative"}
	case in.Stock < 0:
		return &ValidationError{Field: "stock", Reason: "Stock cannot be negative"}
	}
	return nil
}

func (s *ProductService) CreateProduct(ctx context.Context, in entity.ProductInput) (*entity.Product, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := validateProduct(in); err != nil {
		return nil, err
	}

	p := &entity.Product{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price.Round(2),
		Image:       in.Image,
		Stock:       in.Stock,
		Category:    strings.TrimSpace(in.Category),
		CreatedAt:   s.now().UTC().Truncate(time.Second),
	}
	if _, err := s.store.Products.CreateProduct(ctx, p); err != nil {
		logger.Error().Err(err).Msg("Error creating product")
		return nil, err
	}

	logger.Info().Msgf("Product %s created", p.ID)
	return p, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, in entity.ProductInput) (*entity.Product, error) {
	if err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := validateProduct(in); err != nil {
		return nil, err
	}

	p, err := s.store.Products.GetProductByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = in.Price.Round(2)
	p.Image = in.Image
	p.Stock = in.Stock
	p.Category = strings.TrimSpace(in.Category)
	if _, err := s.store.Products.UpdateProduct(ctx, p); err != nil {
		logger.Error().Err(err).Msgf("Error updating product %s", id)
		return nil, err
	}

	s.invalidate(ctx, id)
	return p, nil
}

// DeleteProduct soft-deletes; order history keeps pointing at the row.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return s.setDeleted(ctx, id, true)
}

func (s *ProductService) RestoreProduct(ctx context.Context, id string) error {
	return s.setDeleted(ctx, id, false)
}

func (s *ProductService) setDeleted(ctx context.Context, id string, deleted bool) error {
	if err := auth.RequireAdmin(ctx); err != nil {
		return err
	}
	if _, err := s.store.Products.GetProductByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	if err := s.store.Products.SetDeleted(ctx, id, deleted); err != nil {
		logger.Error().Err(err).Msgf("Error setting deleted=%t on product %s", deleted, id)
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *ProductService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		logger.Error().Err(err).Msgf("Error invalidating product cache for %s", id)
	}
}
