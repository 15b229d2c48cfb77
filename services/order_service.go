package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kendall-kelly/baskets-api/database"
	"github.com/kendall-kelly/baskets-api/models"
	"github.com/kendall-kelly/baskets-api/utils"
)

// MaxMessageLength bounds free-text messages on orders and deliveries
const MaxMessageLength = 128

// OrderService creates, reads, updates and deletes orders on behalf of a user.
// Every multi-step mutation runs in a single transaction.
type OrderService struct {
	db *gorm.DB
	serviceOptions
}

var orderServiceInstance *OrderService

// NewOrderService creates an order service over the given database
func NewOrderService(db *gorm.DB, opts ...Option) *OrderService {
	return &OrderService{db: db, serviceOptions: buildOptions(opts)}
}

// InitOrderService creates the order service and registers it globally
func InitOrderService(db *gorm.DB, opts ...Option) *OrderService {
	orderServiceInstance = NewOrderService(db, opts...)
	return orderServiceInstance
}

// GetOrderService returns the global order service
func GetOrderService() *OrderService {
	return orderServiceInstance
}

// SetOrderService sets the global order service (primarily for testing)
func SetOrderService(s *OrderService) {
	orderServiceInstance = s
}

// ListOrders returns the id and delivery of every order of the user
func (s *OrderService) ListOrders(ctx context.Context, user *models.User) ([]OrderSummary, error) {
	if user == nil {
		return nil, unauthorized()
	}

	var orders []models.Order
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", user.ID).
		Order("id").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	summaries := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		summaries = append(summaries, OrderSummary{ID: o.ID, DeliveryID: o.DeliveryID})
	}
	return summaries, nil
}

// OrderHistory returns the user's orders for closed deliveries, most recent
// delivery first.
func (s *OrderService) OrderHistory(ctx context.Context, user *models.User) ([]HistoryEntry, error) {
	if user == nil {
		return nil, unauthorized()
	}

	var orders []models.Order
	if err := s.db.WithContext(ctx).
		Joins("JOIN deliveries ON deliveries.id = orders.delivery_id").
		Where("orders.user_id = ? AND deliveries.order_deadline < ?", user.ID, s.today()).
		Order("deliveries.date DESC").
		Order("orders.id DESC").
		Preload("Delivery").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(orders))
	for _, o := range orders {
		entries = append(entries, HistoryEntry{
			ID:           o.ID,
			DeliveryID:   o.DeliveryID,
			DeliveryDate: utils.FormatDate(o.Delivery.Date),
			Amount:       utils.FormatAmount(o.Amount),
		})
	}
	return entries, nil
}

// CreateOrder places the user's order for a delivery. Nothing is persisted
// unless the delivery is open, the user has no order for it yet and every
// item is valid.
func (s *OrderService) CreateOrder(ctx context.Context, user *models.User, input CreateOrderInput) (*OrderResult, error) {
	if user == nil {
		return nil, unauthorized()
	}

	var order models.Order
	err := database.WithRetry(ctx, s.db, s.txOpts, func(tx *gorm.DB) error {
		delivery, err := loadDelivery(tx, input.DeliveryID)
		if err != nil {
			return err
		}
		if !delivery.IsOpen(s.today()) {
			return newError(KindDeadlinePassed, "DEADLINE_PASSED", "Order deadline is passed for this delivery")
		}

		var existing int64
		if err := tx.Model(&models.Order{}).
			Where("user_id = ? AND delivery_id = ?", user.ID, delivery.ID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return duplicateOrder()
		}

		if len(input.Items) == 0 {
			return newError(KindEmptyOrder, "EMPTY_ORDER", "Order must contain at least one item")
		}
		if err := checkMessage(input.Message); err != nil {
			return err
		}

		items, err := buildItems(tx, delivery, input.Items)
		if err != nil {
			return err
		}

		order = models.Order{
			UserID:     user.ID,
			DeliveryID: delivery.ID,
			Message:    input.Message,
			Items:      items,
		}
		order.RecomputeAmount()

		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			if database.IsDuplicateKey(err) {
				return duplicateOrder()
			}
			return err
		}
		return insertItems(tx, order.ID, order.Items)
	})
	if err != nil {
		return nil, s.fail("create order", err,
			zap.Uint("user_id", user.ID), zap.Uint("delivery_id", input.DeliveryID))
	}

	s.record(ctx, AuditOrderCreated, &order)
	zap.L().Info("Order created",
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", user.ID),
		zap.Uint("delivery_id", order.DeliveryID),
		zap.String("amount", utils.FormatAmount(order.Amount)))

	return &OrderResult{
		ID:     order.ID,
		URL:    utils.OrderURL(order.ID),
		Amount: utils.FormatAmount(order.Amount),
	}, nil
}

// GetOrder returns the full order of the user
func (s *OrderService) GetOrder(ctx context.Context, user *models.User, orderID uint) (*OrderDetail, error) {
	if user == nil {
		return nil, unauthorized()
	}

	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Product").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, orderNotFound(orderID)
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order.UserID != user.ID {
		return nil, notOwner()
	}

	return newOrderDetail(&order), nil
}

// UpdateOrder replaces the items and/or the message of an open order. The
// incoming items are all validated before the current ones are removed.
func (s *OrderService) UpdateOrder(ctx context.Context, user *models.User, orderID uint, input UpdateOrderInput) (*OrderResult, error) {
	if user == nil {
		return nil, unauthorized()
	}

	var order *models.Order
	err := database.WithRetry(ctx, s.db, s.txOpts, func(tx *gorm.DB) error {
		var err error
		order, err = lockOwnedOrder(tx, user, orderID)
		if err != nil {
			return err
		}

		delivery, err := loadDelivery(tx, order.DeliveryID)
		if err != nil {
			return err
		}
		if !delivery.IsOpen(s.today()) {
			return newError(KindDeadlinePassed, "DEADLINE_PASSED", "Related delivery is closed. Order can't be updated")
		}

		if input.Message != nil {
			if err := checkMessage(*input.Message); err != nil {
				return err
			}
			order.Message = *input.Message
		}

		if input.Items != nil {
			items, err := buildItems(tx, delivery, *input.Items)
			if err != nil {
				return err
			}
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			if err := insertItems(tx, order.ID, items); err != nil {
				return err
			}
			order.Items = items
		} else if err := tx.Where("order_id = ?", order.ID).Find(&order.Items).Error; err != nil {
			return err
		}

		order.RecomputeAmount()
		return tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]interface{}{
				"amount":  order.Amount,
				"message": order.Message,
			}).Error
	})
	if err != nil {
		return nil, s.fail("update order", err, zap.Uint("user_id", user.ID), zap.Uint("order_id", orderID))
	}

	s.record(ctx, AuditOrderUpdated, order)
	return &OrderResult{
		ID:     order.ID,
		Amount: utils.FormatAmount(order.Amount),
	}, nil
}

// DeleteOrder removes the user's order and all its items, whatever the state
// of its delivery.
func (s *OrderService) DeleteOrder(ctx context.Context, user *models.User, orderID uint) error {
	if user == nil {
		return unauthorized()
	}

	var order *models.Order
	err := database.WithRetry(ctx, s.db, s.txOpts, func(tx *gorm.DB) error {
		var err error
		order, err = lockOwnedOrder(tx, user, orderID)
		if err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Find(&order.Items).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, order.ID).Error
	})
	if err != nil {
		return s.fail("delete order", err, zap.Uint("user_id", user.ID), zap.Uint("order_id", orderID))
	}

	s.record(ctx, AuditOrderDeleted, order)
	return nil
}

func loadDelivery(tx *gorm.DB, id uint) (*models.Delivery, error) {
	var delivery models.Delivery
	err := tx.Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("products.id") }).
		Where("id = ?", id).
		First(&delivery).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, deliveryNotFound(id)
		}
		return nil, err
	}
	return &delivery, nil
}

func lockOwnedOrder(tx *gorm.DB, user *models.User, id uint) (*models.Order, error) {
	var order models.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if database.IsNotFound(err) {
			return nil, orderNotFound(id)
		}
		return nil, err
	}
	if order.UserID != user.ID {
		return nil, notOwner()
	}
	return &order, nil
}

// maxAmount bounds prices and amounts to what a decimal(8,2) column holds
var maxAmount = decimal.New(1, 6)

// buildItems resolves and validates every requested item in order. The first
// unknown product or invalid item aborts the whole set.
func buildItems(tx *gorm.DB, delivery *models.Delivery, inputs []ItemInput) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(inputs))
	total := decimal.Zero
	for _, in := range inputs {
		var product models.Product
		if err := tx.Where("id = ?", in.ProductID).First(&product).Error; err != nil {
			if database.IsNotFound(err) {
				return nil, productNotFound(in.ProductID)
			}
			return nil, err
		}

		item := models.NewOrderItem(product, in.Quantity)
		if !models.IsItemValid(item, delivery) {
			return nil, newError(KindInvalidItem, "INVALID_ITEM",
				"All products must be available in the delivery and quantities must be greater than zero")
		}
		total = total.Add(item.Amount)
		if total.GreaterThanOrEqual(maxAmount) {
			return nil, newError(KindInvalidItem, "INVALID_ITEM", "Order amount must be lower than 1000000")
		}
		items = append(items, item)
	}
	return items, nil
}

func insertItems(tx *gorm.DB, orderID uint, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	return tx.Omit(clause.Associations).Create(&items).Error
}

func checkMessage(message string) error {
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return newError(KindInvalidInput, "MESSAGE_TOO_LONG", "Message must be at most %d characters", MaxMessageLength)
	}
	return nil
}

func duplicateOrder() *Error {
	return newError(KindDuplicateOrder, "DUPLICATE_ORDER", "User already has an order for this delivery")
}

func notOwner() *Error {
	return newError(KindForbidden, "FORBIDDEN", "You do not have permission to access this order")
}

func (s *OrderService) record(ctx context.Context, action string, order *models.Order) {
	entry := AuditEntry{
		Action:     action,
		OrderID:    order.ID,
		UserID:     order.UserID,
		DeliveryID: order.DeliveryID,
		Amount:     utils.FormatAmount(order.Amount),
		ItemCount:  len(order.Items),
		CreatedAt:  s.now(),
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		zap.L().Error("Failed to record order audit entry",
			zap.String("action", action),
			zap.Uint("order_id", order.ID),
			zap.Error(err))
	}
}
