package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	errs "biteback/internal/errors"
	"biteback/internal/model"
)

// OrderRepository bundles exactly the persistence operations of the order
// placement transaction. WithTransaction hands the closure a repository bound
// to the transaction; every call through it commits or rolls back together.
type OrderRepository interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo OrderRepository) error) error
	CreatePurchase(ctx context.Context, purchase *model.Purchase) error
	FindProductForUpdate(ctx context.Context, id uint) (*model.Product, error)
	CreateLine(ctx context.Context, line *model.PurchaseLine) error
	DecrementStock(ctx context.Context, productID uint, quantity int) error
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository.
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// WithTransaction executes fn within a database transaction.
func (r *orderRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo OrderRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &orderRepository{db: tx}
		return fn(ctx, txRepo)
	})
}

// CreatePurchase inserts the purchase row.
func (r *orderRepository) CreatePurchase(ctx context.Context, purchase *model.Purchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

// FindProductForUpdate reads a product under an exclusive row lock. The lock
// is held until the surrounding transaction ends, so the stock value stays
// valid through the check and decrement.
func (r *orderRepository) FindProductForUpdate(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateLine inserts one purchase line.
func (r *orderRepository) CreateLine(ctx context.Context, line *model.PurchaseLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

// DecrementStock subtracts quantity from the product's stock. The conditional
// WHERE keeps stock non-negative even if a caller skipped the locked check.
func (r *orderRepository) DecrementStock(ctx context.Context, productID uint, quantity int) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrOutOfStock
	}
	return nil
}
