package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus tracks payment progress of a whole purchase.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pendiente"
	PaymentStatusPaid      PaymentStatus = "pagado"
	PaymentStatusCancelled PaymentStatus = "cancelado"
)

// ShippingStatus tracks shipping progress of a single purchase line.
// Each line ships independently.
type ShippingStatus string

const (
	ShippingStatusPending   ShippingStatus = "Pendiente"
	ShippingStatusShipped   ShippingStatus = "Enviado"
	ShippingStatusDelivered ShippingStatus = "Entregado"
)

// Purchase represents a row in the compras table. It exclusively owns its
// lines; deleting a purchase cascades to detalle_compras.
type Purchase struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	UserID        uint            `json:"usuario_id" gorm:"column:usuario_id;not null;index"`
	City          string          `json:"ciudad" gorm:"column:ciudad;size:255"`
	Address       string          `json:"direccion" gorm:"column:direccion;size:512"`
	Phone         string          `json:"telefono" gorm:"column:telefono;size:50"`
	PaymentMethod string          `json:"metodo_pago" gorm:"column:metodo_pago;size:100"`
	Total         decimal.Decimal `json:"total" gorm:"type:decimal(20,2);not null"`
	PaymentStatus PaymentStatus   `json:"estado_pago" gorm:"column:estado_pago;size:50;not null;default:'pendiente';index"`
	CreatedAt     time.Time       `json:"fecha_compra" gorm:"column:fecha_compra"`

	// Relations
	Buyer *User          `json:"usuario,omitempty" gorm:"foreignKey:UserID"`
	Lines []PurchaseLine `json:"productos,omitempty" gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
}

// TableName maps Purchase to the legacy Spanish table name.
func (Purchase) TableName() string { return "compras" }

// PurchaseLine represents a row in the detalle_compras table: one product,
// quantity and unit-price snapshot within a purchase.
type PurchaseLine struct {
	ID             uint            `json:"id" gorm:"primaryKey"`
	PurchaseID     uint            `json:"compra_id" gorm:"column:compra_id;not null;index"`
	ProductID      uint            `json:"producto_id" gorm:"column:producto_id;not null;index"`
	Quantity       int             `json:"cantidad" gorm:"column:cantidad;not null"`
	UnitPrice      decimal.Decimal `json:"precio_unitario" gorm:"column:precio_unitario;type:decimal(20,2);not null"`
	ShippingStatus ShippingStatus  `json:"estado_envio" gorm:"column:estado_envio;size:50;not null;default:'Pendiente'"`

	// Relations
	Purchase *Purchase `json:"-" gorm:"foreignKey:PurchaseID"`
	Product  *Product  `json:"producto,omitempty" gorm:"foreignKey:ProductID"`
}

// TableName maps PurchaseLine to the legacy Spanish table name.
func (PurchaseLine) TableName() string { return "detalle_compras" }
