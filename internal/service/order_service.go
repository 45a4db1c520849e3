package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"biteback/internal/auth"
	errs "biteback/internal/errors"
	"biteback/internal/model"
	"biteback/internal/notify"
	"biteback/internal/repository"
)

// OrderLineInput is one requested product-quantity-price entry.
type OrderLineInput struct {
	ProductID uint
	Quantity  int
	UnitPrice decimal.Decimal
}

// PlaceOrderInput carries shipping details and the requested lines.
type PlaceOrderInput struct {
	City          string
	Address       string
	Phone         string
	PaymentMethod string
	PaymentStatus model.PaymentStatus
	Total         decimal.Decimal
	Lines         []OrderLineInput
}

// LineUpdateInput carries the mutable line fields. Nil means "leave as is".
type LineUpdateInput struct {
	Quantity  *int
	UnitPrice *decimal.Decimal
}

// OrderService owns the purchase lifecycle: the transactional placement
// workflow, purchase/line reads with ownership rules, and the status
// transitions that notify listeners.
type OrderService interface {
	PlaceOrder(ctx context.Context, buyer auth.Claims, in PlaceOrderInput) (*model.Purchase, error)
	ListPurchases(ctx context.Context, actor auth.Claims) ([]model.Purchase, error)
	GetPurchase(ctx context.Context, actor auth.Claims, id uint) (*model.Purchase, error)
	DeletePurchase(ctx context.Context, id uint) error
	UpdatePaymentStatus(ctx context.Context, id uint, status model.PaymentStatus) error
	UpdateShippingStatus(ctx context.Context, lineID uint, status model.ShippingStatus) error

	ListLines(ctx context.Context, actor auth.Claims) ([]model.PurchaseLine, error)
	GetLine(ctx context.Context, actor auth.Claims, id uint) (*model.PurchaseLine, error)
	CreateLine(ctx context.Context, actor auth.Claims, line *model.PurchaseLine) (*model.PurchaseLine, error)
	UpdateLine(ctx context.Context, actor auth.Claims, id uint, in LineUpdateInput) (*model.PurchaseLine, error)
	DeleteLine(ctx context.Context, actor auth.Claims, id uint) error
}

type orderService struct {
	orderRepo    repository.OrderRepository
	purchaseRepo repository.PurchaseRepository
	publisher    notify.Publisher
}

// NewOrderService creates a new order service.
func NewOrderService(orderRepo repository.OrderRepository, purchaseRepo repository.PurchaseRepository, publisher notify.Publisher) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		purchaseRepo: purchaseRepo,
		publisher:    publisher,
	}
}

// sellerItems collects, per seller, the line items that belong to them, so
// each seller gets exactly one order-created event.
type sellerItems map[uint][]map[string]any

// PlaceOrder atomically creates a purchase with its lines and decrements
// stock. Each product is read under an exclusive row lock before the stock
// check, and the lock is held through the decrement, so two concurrent
// orders cannot both pass the check on the same inventory. Any line failure
// rolls back everything; notifications go out only after commit.
func (s *orderService) PlaceOrder(ctx context.Context, buyer auth.Claims, in PlaceOrderInput) (*model.Purchase, error) {
	if len(in.Lines) == 0 {
		return nil, errs.ErrValidation
	}
	for _, line := range in.Lines {
		if line.Quantity <= 0 {
			return nil, errs.ErrValidation
		}
	}

	status := in.PaymentStatus
	if status == "" {
		status = model.PaymentStatusPending
	}
	purchase := &model.Purchase{
		UserID:        buyer.UserID,
		City:          in.City,
		Address:       in.Address,
		Phone:         in.Phone,
		PaymentMethod: in.PaymentMethod,
		Total:         in.Total,
		PaymentStatus: status,
	}

	sellers := make(sellerItems)
	err := s.orderRepo.WithTransaction(ctx, func(ctx context.Context, repo repository.OrderRepository) error {
		if err := repo.CreatePurchase(ctx, purchase); err != nil {
			return err
		}

		for _, line := range in.Lines {
			product, err := repo.FindProductForUpdate(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errs.ErrProductNotFound
				}
				return err
			}
			if product.Stock < line.Quantity {
				return errs.ErrOutOfStock
			}

			if err := repo.CreateLine(ctx, &model.PurchaseLine{
				PurchaseID:     purchase.ID,
				ProductID:      line.ProductID,
				Quantity:       line.Quantity,
				UnitPrice:      line.UnitPrice,
				ShippingStatus: model.ShippingStatusPending,
			}); err != nil {
				return err
			}
			if err := repo.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}

			sellers[product.VendorID] = append(sellers[product.VendorID], map[string]any{
				"producto_id": line.ProductID,
				"cantidad":    line.Quantity,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// After commit: one event per distinct seller, on that seller's channel.
	for sellerID, items := range sellers {
		s.publisher.ToRoom(notify.SellerRoom(sellerID), notify.Event{
			Type: notify.EventNewOrder,
			Data: map[string]any{
				"compra_id": purchase.ID,
				"productos": items,
			},
		})
	}
	return purchase, nil
}

// ListPurchases returns every purchase for admins, own purchases otherwise.
func (s *orderService) ListPurchases(ctx context.Context, actor auth.Claims) ([]model.Purchase, error) {
	if actor.Role == model.RoleAdministrador {
		return s.purchaseRepo.List(ctx)
	}
	return s.purchaseRepo.ListByBuyer(ctx, actor.UserID)
}

func (s *orderService) GetPurchase(ctx context.Context, actor auth.Claims, id uint) (*model.Purchase, error) {
	purchase, err := s.purchaseRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrPurchaseNotFound
		}
		return nil, err
	}
	if actor.Role != model.RoleAdministrador && purchase.UserID != actor.UserID {
		return nil, errs.ErrForbidden
	}
	return purchase, nil
}

func (s *orderService) DeletePurchase(ctx context.Context, id uint) error {
	affected, err := s.purchaseRepo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.ErrPurchaseNotFound
	}
	return nil
}

// UpdatePaymentStatus transitions a purchase's payment state and broadcasts
// the change.
func (s *orderService) UpdatePaymentStatus(ctx context.Context, id uint, status model.PaymentStatus) error {
	if status == "" {
		return errs.ErrValidation
	}
	affected, err := s.purchaseRepo.UpdatePaymentStatus(ctx, id, status)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.ErrPurchaseNotFound
	}

	s.publisher.Broadcast(notify.Event{
		Type: notify.EventPaymentStatus,
		Data: map[string]any{"compra_id": id, "estado_pago": status},
	})
	return nil
}

// UpdateShippingStatus transitions one line's shipping state and broadcasts
// the change.
func (s *orderService) UpdateShippingStatus(ctx context.Context, lineID uint, status model.ShippingStatus) error {
	if status == "" {
		return errs.ErrValidation
	}
	affected, err := s.purchaseRepo.UpdateLineShippingStatus(ctx, lineID, status)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.ErrLineNotFound
	}

	s.publisher.Broadcast(notify.Event{
		Type: notify.EventShippingStatus,
		Data: map[string]any{"detalle_id": lineID, "estado_envio": status},
	})
	return nil
}

func (s *orderService) ListLines(ctx context.Context, actor auth.Claims) ([]model.PurchaseLine, error) {
	if actor.Role == model.RoleAdministrador {
		return s.purchaseRepo.ListLines(ctx)
	}
	return s.purchaseRepo.ListLinesByBuyer(ctx, actor.UserID)
}

func (s *orderService) GetLine(ctx context.Context, actor auth.Claims, id uint) (*model.PurchaseLine, error) {
	return s.findOwnedLine(ctx, actor, id)
}

// CreateLine appends a raw line to an existing purchase owned by the actor.
// It does not touch stock; the transactional path is PlaceOrder.
func (s *orderService) CreateLine(ctx context.Context, actor auth.Claims, line *model.PurchaseLine) (*model.PurchaseLine, error) {
	if line.PurchaseID == 0 || line.ProductID == 0 || line.Quantity <= 0 {
		return nil, errs.ErrValidation
	}
	purchase, err := s.purchaseRepo.FindByID(ctx, line.PurchaseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrPurchaseNotFound
		}
		return nil, err
	}
	if actor.Role != model.RoleAdministrador && purchase.UserID != actor.UserID {
		return nil, errs.ErrForbidden
	}

	if line.ShippingStatus == "" {
		line.ShippingStatus = model.ShippingStatusPending
	}
	if err := s.purchaseRepo.CreateLine(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

func (s *orderService) UpdateLine(ctx context.Context, actor auth.Claims, id uint, in LineUpdateInput) (*model.PurchaseLine, error) {
	line, err := s.findOwnedLine(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if in.Quantity != nil {
		if *in.Quantity <= 0 {
			return nil, errs.ErrValidation
		}
		line.Quantity = *in.Quantity
	}
	if in.UnitPrice != nil {
		line.UnitPrice = *in.UnitPrice
	}

	if err := s.purchaseRepo.UpdateLine(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

func (s *orderService) DeleteLine(ctx context.Context, actor auth.Claims, id uint) error {
	if _, err := s.findOwnedLine(ctx, actor, id); err != nil {
		return err
	}
	affected, err := s.purchaseRepo.DeleteLine(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.ErrLineNotFound
	}
	return nil
}

// findOwnedLine loads a line and checks ownership through its parent purchase.
func (s *orderService) findOwnedLine(ctx context.Context, actor auth.Claims, id uint) (*model.PurchaseLine, error) {
	line, err := s.purchaseRepo.FindLineByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrLineNotFound
		}
		return nil, err
	}
	if actor.Role != model.RoleAdministrador {
		if line.Purchase == nil || line.Purchase.UserID != actor.UserID {
			return nil, errs.ErrForbidden
		}
	}
	return line, nil
}
