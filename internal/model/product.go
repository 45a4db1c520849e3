package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a row in the productos table. Stock is kept non-negative
// by the conditional decrement in the order repository.
type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"nombre" gorm:"column:nombre;size:255;not null;index"`
	Description string          `json:"descripcion" gorm:"column:descripcion;type:text"`
	Price       decimal.Decimal `json:"precio" gorm:"column:precio;type:decimal(20,2);not null"`
	Stock       int             `json:"stock" gorm:"not null;default:0"`
	VendorID    uint            `json:"vendedor_id" gorm:"column:vendedor_id;not null;index"`
	CreatedAt   time.Time       `json:"fecha_creacion" gorm:"column:fecha_creacion"`

	// Relations
	Vendor *User          `json:"vendedor,omitempty" gorm:"foreignKey:VendorID"`
	Images []ProductImage `json:"imagenes_producto,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName maps Product to the legacy Spanish table name.
func (Product) TableName() string { return "productos" }

// ProductImage represents a row in the imagenes_producto table.
type ProductImage struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	ProductID uint   `json:"producto_id" gorm:"column:producto_id;not null;index"`
	URL       string `json:"url" gorm:"size:512;not null"`
}

// TableName maps ProductImage to the legacy Spanish table name.
func (ProductImage) TableName() string { return "imagenes_producto" }
