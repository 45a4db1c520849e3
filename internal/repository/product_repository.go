package repository

import (
	"context"

	"gorm.io/gorm"

	"biteback/internal/model"
)

// ProductRepository defines product persistence operations.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	ListByVendor(ctx context.Context, vendorID uint) ([]model.Product, error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

// Create creates a product together with any attached images.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete removes a product and its images.
func (r *productRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("producto_id = ?", id).Delete(&model.ProductImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Product{}, id).Error
	})
}

func (r *productRepository) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).
		Preload("Vendor").Preload("Images").
		First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns all products with seller and images, newest first.
func (r *productRepository) List(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).
		Preload("Vendor").Preload("Images").
		Order("fecha_creacion DESC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListByVendor returns one seller's products, newest first.
func (r *productRepository) ListByVendor(ctx context.Context, vendorID uint) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).
		Preload("Images").
		Where("vendedor_id = ?", vendorID).
		Order("fecha_creacion DESC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
