package models

import (
	"time"
)

// DeliveryDeadlineDaysBefore is the gap between the order deadline and the
// delivery date when no deadline is given at creation.
const DeliveryDeadlineDaysBefore = 4

// Delivery is a dated offering of a subset of the catalog
type Delivery struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Date          time.Time `gorm:"not null;index" json:"date"`
	OrderDeadline time.Time `gorm:"not null;uniqueIndex" json:"order_deadline"`
	Products      []Product `gorm:"many2many:delivery_products;" json:"products"`
	Message       string    `gorm:"size:128" json:"message"`
}

// TableName specifies the table name for the Delivery model
func (Delivery) TableName() string {
	return "deliveries"
}

// DateOf returns the calendar day of t as a UTC midnight timestamp.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DefaultDeadline returns the order deadline used when a delivery is created
// without one.
func DefaultDeadline(deliveryDate time.Time) time.Time {
	return DateOf(deliveryDate).AddDate(0, 0, -DeliveryDeadlineDaysBefore)
}

// IsOpen reports whether orders are still accepted on the given day.
// The deadline day itself is still open.
func (d *Delivery) IsOpen(today time.Time) bool {
	return !DateOf(today).After(DateOf(d.OrderDeadline.UTC()))
}

// OffersProduct reports whether the product is part of this delivery.
// Products must be preloaded.
func (d *Delivery) OffersProduct(productID uint) bool {
	for _, p := range d.Products {
		if p.ID == productID {
			return true
		}
	}
	return false
}
