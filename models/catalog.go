package models

import (
	"github.com/shopspring/decimal"
)

// Producer supplies products offered in deliveries
type Producer struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Name     string    `gorm:"size:64;not null" json:"name"`
	Phone    string    `gorm:"size:18" json:"phone"`
	Email    string    `json:"email"`
	Products []Product `gorm:"foreignKey:ProducerID;constraint:OnDelete:CASCADE" json:"products,omitempty"`
}

// TableName specifies the table name for the Producer model
func (Producer) TableName() string {
	return "producers"
}

// Product is a catalog entry. UnitPrice is the current price; order items
// keep the amount computed when they were saved.
type Product struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	ProducerID uint            `gorm:"not null;index" json:"producer_id"`
	Producer   Producer        `gorm:"foreignKey:ProducerID;constraint:OnDelete:CASCADE" json:"-"`
	Name       string          `gorm:"size:64;not null" json:"name"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"unit_price"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}
