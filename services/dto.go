package services

import (
	"github.com/kendall-kelly/baskets-api/models"
	"github.com/kendall-kelly/baskets-api/utils"
)

// ItemInput is one requested order line
type ItemInput struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// CreateOrderInput is the payload of an order creation
type CreateOrderInput struct {
	DeliveryID uint
	Items      []ItemInput
	Message    string
}

// UpdateOrderInput replaces the items and/or the message of an order.
// Nil fields are left unchanged.
type UpdateOrderInput struct {
	Items   *[]ItemInput
	Message *string
}

type OrderSummary struct {
	ID         uint `json:"id"`
	DeliveryID uint `json:"delivery_id"`
}

type OrderResult struct {
	ID     uint   `json:"-"`
	URL    string `json:"url,omitempty"`
	Amount string `json:"amount"`
}

type ProductDetail struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
}

type OrderItemDetail struct {
	Product  ProductDetail `json:"product"`
	Quantity int           `json:"quantity"`
	Amount   string        `json:"amount"`
}

type OrderDetail struct {
	DeliveryID uint              `json:"delivery_id"`
	Items      []OrderItemDetail `json:"items"`
	Amount     string            `json:"amount"`
	Message    string            `json:"message"`
}

type HistoryEntry struct {
	ID           uint   `json:"id"`
	DeliveryID   uint   `json:"delivery_id"`
	DeliveryDate string `json:"delivery_date"`
	Amount       string `json:"amount"`
}

type DeliverySummary struct {
	ID   uint   `json:"id"`
	Date string `json:"date"`
}

type DeliveryDetail struct {
	ID            uint            `json:"id"`
	Date          string          `json:"date"`
	OrderDeadline string          `json:"order_deadline"`
	Products      []ProductDetail `json:"products"`
	Message       string          `json:"message"`
	IsOpen        bool            `json:"is_open"`
}

// ProductTotal is the quantity of one offered product ordered for a delivery
type ProductTotal struct {
	ProductID     uint   `json:"product_id"`
	ProductName   string `json:"product_name"`
	ProducerName  string `json:"producer_name"`
	TotalQuantity int64  `json:"total_quantity"`
}

func newProductDetail(p models.Product) ProductDetail {
	return ProductDetail{
		ID:        p.ID,
		Name:      p.Name,
		UnitPrice: utils.FormatAmount(p.UnitPrice),
	}
}

func newOrderDetail(o *models.Order) *OrderDetail {
	detail := &OrderDetail{
		DeliveryID: o.DeliveryID,
		Items:      make([]OrderItemDetail, 0, len(o.Items)),
		Amount:     utils.FormatAmount(o.Amount),
		Message:    o.Message,
	}
	for _, item := range o.Items {
		detail.Items = append(detail.Items, OrderItemDetail{
			Product:  newProductDetail(item.Product),
			Quantity: item.Quantity,
			Amount:   utils.FormatAmount(item.Amount),
		})
	}
	return detail
}

func newDeliveryDetail(d *models.Delivery, isOpen bool) *DeliveryDetail {
	detail := &DeliveryDetail{
		ID:            d.ID,
		Date:          utils.FormatDate(d.Date),
		OrderDeadline: utils.FormatDate(d.OrderDeadline),
		Products:      make([]ProductDetail, 0, len(d.Products)),
		Message:       d.Message,
		IsOpen:        isOpen,
	}
	for _, p := range d.Products {
		detail.Products = append(detail.Products, newProductDetail(p))
	}
	return detail
}
