package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is one user's selection of products for one delivery.
// A user holds at most one order per delivery.
type Order struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `gorm:"not null;uniqueIndex:idx_orders_user_delivery" json:"user_id"`
	User       User            `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
	DeliveryID uint            `gorm:"not null;uniqueIndex:idx_orders_user_delivery;index" json:"delivery_id"`
	Delivery   Delivery        `gorm:"foreignKey:DeliveryID;constraint:OnDelete:RESTRICT" json:"-"`
	CreatedAt  time.Time       `gorm:"autoCreateTime;<-:create" json:"created_at"`
	Amount     decimal.Decimal `gorm:"type:decimal(8,2);not null;default:0" json:"amount"`
	Message    string          `gorm:"size:128" json:"message"`
	Items      []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem is one product line of an order. Amount is fixed when the item
// is saved and does not follow later product price changes.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Product   Product         `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"product"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Amount    decimal.Decimal `gorm:"type:decimal(8,2);not null;default:0" json:"amount"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// ItemAmount is quantity times unit price, rounded to cents.
func ItemAmount(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// NewOrderItem builds an item for the product with its amount snapshotted
// from the product's current unit price.
func NewOrderItem(product Product, quantity int) OrderItem {
	return OrderItem{
		ProductID: product.ID,
		Product:   product,
		Quantity:  quantity,
		Amount:    ItemAmount(quantity, product.UnitPrice),
	}
}

// IsItemValid reports whether the item's product is offered by the delivery
// and its quantity is positive.
func IsItemValid(item OrderItem, delivery *Delivery) bool {
	return item.Quantity > 0 && delivery.OffersProduct(item.ProductID)
}

// RecomputeAmount sets the order amount to the sum of its item amounts and
// returns it. An order without items amounts to zero.
func (o *Order) RecomputeAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Amount)
	}
	o.Amount = total.Round(2)
	return o.Amount
}

// All returns every model managed by the schema, in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Producer{},
		&Product{},
		&Delivery{},
		&Order{},
		&OrderItem{},
	}
}
