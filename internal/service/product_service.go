package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"biteback/internal/auth"
	"biteback/internal/cache"
	errs "biteback/internal/errors"
	"biteback/internal/model"
	"biteback/internal/notify"
	"biteback/internal/repository"
)

const productCacheTTL = 5 * time.Minute

// ProductCreateInput carries the fields of a new product listing.
type ProductCreateInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	ImageURLs   []string
}

// ProductUpdateInput carries the mutable listing fields. Nil means "leave as is".
type ProductUpdateInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
}

// ProductService exposes the public catalog and the seller-scoped mutations.
// Sellers may only mutate their own products.
type ProductService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	ListOwnProducts(ctx context.Context, actor auth.Claims) ([]model.Product, error)
	CreateProduct(ctx context.Context, actor auth.Claims, in ProductCreateInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, actor auth.Claims, id uint, in ProductUpdateInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, actor auth.Claims, id uint) error
}

type productService struct {
	repo      repository.ProductRepository
	cache     *cache.Client
	publisher notify.Publisher
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, cache *cache.Client, publisher notify.Publisher) ProductService {
	return &productService{repo: repo, cache: cache, publisher: publisher}
}

func (s *productService) cacheKey(id uint) string {
	return fmt.Sprintf("product:%d", id)
}

func (s *productService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.repo.List(ctx)
}

// GetProduct retrieves a product by ID with caching.
func (s *productService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Product
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrProductMissing
		}
		return nil, err
	}

	if payload, err := json.Marshal(product); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, productCacheTTL)
	}
	return product, nil
}

func (s *productService) ListOwnProducts(ctx context.Context, actor auth.Claims) ([]model.Product, error) {
	return s.repo.ListByVendor(ctx, actor.UserID)
}

func (s *productService) CreateProduct(ctx context.Context, actor auth.Claims, in ProductCreateInput) (*model.Product, error) {
	if in.Name == "" || in.Price.Sign() <= 0 {
		return nil, errs.ErrValidation
	}
	if in.Stock < 0 {
		return nil, errs.ErrValidation
	}

	product := &model.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		VendorID:    actor.UserID,
	}
	for _, url := range in.ImageURLs {
		product.Images = append(product.Images, model.ProductImage{URL: url})
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, product.ID)
}

// UpdateProduct edits a listing owned by the actor. A stock change is
// broadcast so storefronts can refresh availability.
func (s *productService) UpdateProduct(ctx context.Context, actor auth.Claims, id uint, in ProductUpdateInput) (*model.Product, error) {
	product, err := s.findOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	oldStock := product.Stock
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.Sign() <= 0 {
			return nil, errs.ErrValidation
		}
		product.Price = *in.Price
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, errs.ErrValidation
		}
		product.Stock = *in.Stock
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))

	if product.Stock != oldStock {
		s.publisher.Broadcast(notify.Event{
			Type: notify.EventStockChanged,
			Data: map[string]any{"producto_id": product.ID, "stock": product.Stock},
		})
	}
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, actor auth.Claims, id uint) error {
	if _, err := s.findOwned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

func (s *productService) findOwned(ctx context.Context, actor auth.Claims, id uint) (*model.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrProductMissing
		}
		return nil, err
	}
	if product.VendorID != actor.UserID {
		return nil, errs.ErrForbidden
	}
	return product, nil
}
