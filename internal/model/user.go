package model

import "time"

// Role classifies what a user may do. Administrador accounts sell products
// and manage orders; Cliente accounts buy.
type Role string

const (
	RoleCliente       Role = "Cliente"
	RoleAdministrador Role = "Administrador"
)

// User represents a row in the usuarios table.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"nombre" gorm:"column:nombre;size:255;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"column:password;size:255;not null"` // Never expose in JSON
	Role         Role      `json:"tipo_usuario" gorm:"column:tipo_usuario;size:50;not null;default:'Cliente'"`
	CreatedAt    time.Time `json:"fecha_creacion" gorm:"column:fecha_creacion"`
	UpdatedAt    time.Time `json:"fecha_actualizacion" gorm:"column:fecha_actualizacion"`

	// Relations
	Products []Product `json:"productos,omitempty" gorm:"foreignKey:VendorID"`
}

// TableName maps User to the legacy Spanish table name.
func (User) TableName() string { return "usuarios" }
