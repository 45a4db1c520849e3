package repository

import (
	"context"

	"gorm.io/gorm"

	"biteback/internal/model"
)

// PurchaseRepository defines read and status-update operations on purchases
// and their lines. Creation goes through OrderRepository, which owns the
// transactional workflow.
type PurchaseRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Purchase, error)
	List(ctx context.Context) ([]model.Purchase, error)
	ListByBuyer(ctx context.Context, buyerID uint) ([]model.Purchase, error)
	Delete(ctx context.Context, id uint) (int64, error)
	UpdatePaymentStatus(ctx context.Context, id uint, status model.PaymentStatus) (int64, error)

	FindLineByID(ctx context.Context, id uint) (*model.PurchaseLine, error)
	ListLines(ctx context.Context) ([]model.PurchaseLine, error)
	ListLinesByBuyer(ctx context.Context, buyerID uint) ([]model.PurchaseLine, error)
	CreateLine(ctx context.Context, line *model.PurchaseLine) error
	UpdateLine(ctx context.Context, line *model.PurchaseLine) error
	DeleteLine(ctx context.Context, id uint) (int64, error)
	UpdateLineShippingStatus(ctx context.Context, id uint, status model.ShippingStatus) (int64, error)
}

type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository.
func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) FindByID(ctx context.Context, id uint) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := r.db.WithContext(ctx).
		Preload("Buyer").Preload("Lines").Preload("Lines.Product").
		First(&purchase, id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) List(ctx context.Context) ([]model.Purchase, error) {
	var purchases []model.Purchase
	if err := r.db.WithContext(ctx).
		Preload("Buyer").Preload("Lines").Preload("Lines.Product").
		Order("fecha_compra DESC").
		Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *purchaseRepository) ListByBuyer(ctx context.Context, buyerID uint) ([]model.Purchase, error) {
	var purchases []model.Purchase
	if err := r.db.WithContext(ctx).
		Preload("Lines").Preload("Lines.Product").
		Where("usuario_id = ?", buyerID).
		Order("fecha_compra DESC").
		Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

// Delete removes a purchase and its lines.
func (r *purchaseRepository) Delete(ctx context.Context, id uint) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("compra_id = ?", id).Delete(&model.PurchaseLine{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Purchase{}, id)
		affected = res.RowsAffected
		return res.Error
	})
	return affected, err
}

func (r *purchaseRepository) UpdatePaymentStatus(ctx context.Context, id uint, status model.PaymentStatus) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("id = ?", id).
		Update("estado_pago", status)
	return res.RowsAffected, res.Error
}

func (r *purchaseRepository) FindLineByID(ctx context.Context, id uint) (*model.PurchaseLine, error) {
	var line model.PurchaseLine
	if err := r.db.WithContext(ctx).
		Preload("Purchase").Preload("Product").
		First(&line, id).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *purchaseRepository) ListLines(ctx context.Context) ([]model.PurchaseLine, error) {
	var lines []model.PurchaseLine
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// ListLinesByBuyer returns the lines belonging to one buyer's purchases.
// Ownership of a line is derived through its parent purchase.
func (r *purchaseRepository) ListLinesByBuyer(ctx context.Context, buyerID uint) ([]model.PurchaseLine, error) {
	var lines []model.PurchaseLine
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Joins("JOIN compras ON compras.id = detalle_compras.compra_id").
		Where("compras.usuario_id = ?", buyerID).
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *purchaseRepository) CreateLine(ctx context.Context, line *model.PurchaseLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

func (r *purchaseRepository) UpdateLine(ctx context.Context, line *model.PurchaseLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

func (r *purchaseRepository) DeleteLine(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.PurchaseLine{}, id)
	return res.RowsAffected, res.Error
}

func (r *purchaseRepository) UpdateLineShippingStatus(ctx context.Context, id uint, status model.ShippingStatus) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.PurchaseLine{}).
		Where("id = ?", id).
		Update("estado_envio", status)
	return res.RowsAffected, res.Error
}
