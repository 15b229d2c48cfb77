package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kendall-kelly/baskets-api/database"
	"github.com/kendall-kelly/baskets-api/models"
	"github.com/kendall-kelly/baskets-api/utils"
)

// CreateDeliveryInput describes a new delivery. OrderDeadline defaults to
// models.DefaultDeadline(Date) when nil.
type CreateDeliveryInput struct {
	Date          time.Time
	OrderDeadline *time.Time
	ProductIDs    []uint
	Message       string
}

// DeliveryService exposes deliveries and their ordering window
type DeliveryService struct {
	db *gorm.DB
	serviceOptions
}

var deliveryServiceInstance *DeliveryService

func NewDeliveryService(db *gorm.DB, opts ...Option) *DeliveryService {
	return &DeliveryService{db: db, serviceOptions: buildOptions(opts)}
}

// InitDeliveryService creates the delivery service and registers it globally
func InitDeliveryService(db *gorm.DB, opts ...Option) *DeliveryService {
	deliveryServiceInstance = NewDeliveryService(db, opts...)
	return deliveryServiceInstance
}

func GetDeliveryService() *DeliveryService {
	return deliveryServiceInstance
}

func SetDeliveryService(s *DeliveryService) {
	deliveryServiceInstance = s
}

// GetDelivery returns a delivery with its offered products and whether it
// still accepts orders today.
func (s *DeliveryService) GetDelivery(ctx context.Context, id uint) (*DeliveryDetail, error) {
	today := s.today()
	day := utils.FormatDate(today)

	if detail, ok := s.cache.GetDelivery(ctx, id, day); ok {
		return detail, nil
	}

	delivery, err := loadDelivery(s.db.WithContext(ctx), id)
	if err != nil {
		if KindOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load delivery: %w", err)
	}

	detail := newDeliveryDetail(delivery, delivery.IsOpen(today))
	s.cache.SetDelivery(ctx, day, detail)
	return detail, nil
}

// ListOpenDeliveries returns the deliveries still accepting orders, earliest
// first.
func (s *DeliveryService) ListOpenDeliveries(ctx context.Context) ([]DeliverySummary, error) {
	var deliveries []models.Delivery
	if err := s.db.WithContext(ctx).
		Where("order_deadline >= ?", s.today()).
		Order("date ASC").
		Order("id ASC").
		Find(&deliveries).Error; err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}

	summaries := make([]DeliverySummary, 0, len(deliveries))
	for _, d := range deliveries {
		summaries = append(summaries, DeliverySummary{ID: d.ID, Date: utils.FormatDate(d.Date)})
	}
	return summaries, nil
}

// CreateDelivery schedules a delivery offering the given products. Only
// staff members may create deliveries.
func (s *DeliveryService) CreateDelivery(ctx context.Context, staff *models.User, input CreateDeliveryInput) (*DeliveryDetail, error) {
	if err := requireStaff(staff); err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		return nil, newError(KindInvalidInput, "VALIDATION_ERROR", "Delivery date is required")
	}
	if err := checkMessage(input.Message); err != nil {
		return nil, err
	}

	delivery := models.Delivery{
		Date:          models.DateOf(input.Date),
		OrderDeadline: models.DefaultDeadline(input.Date),
		Message:       input.Message,
	}
	if input.OrderDeadline != nil {
		delivery.OrderDeadline = models.DateOf(*input.OrderDeadline)
	}
	if delivery.OrderDeadline.After(delivery.Date) {
		return nil, newError(KindInvalidInput, "VALIDATION_ERROR", "Order deadline must not be after the delivery date")
	}

	err := database.WithRetry(ctx, s.db, s.txOpts, func(tx *gorm.DB) error {
		products, err := loadProducts(tx, input.ProductIDs)
		if err != nil {
			return err
		}
		delivery.ID = 0
		delivery.Products = products

		if err := tx.Omit("Products.*").Create(&delivery).Error; err != nil {
			if database.IsDuplicateKey(err) {
				return newError(KindConflict, "DELIVERY_DEADLINE_TAKEN",
					"A delivery with order deadline %s already exists", utils.FormatDate(delivery.OrderDeadline))
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("create delivery", err, zap.Uint("user_id", staff.ID))
	}

	zap.L().Info("Delivery created",
		zap.Uint("delivery_id", delivery.ID),
		zap.String("date", utils.FormatDate(delivery.Date)),
		zap.Int("products", len(delivery.Products)))

	return newDeliveryDetail(&delivery, delivery.IsOpen(s.today())), nil
}

// ProductTotals sums, for every product a delivery offers, the quantities
// ordered for that delivery. Products nobody ordered are listed with zero.
func (s *DeliveryService) ProductTotals(ctx context.Context, staff *models.User, id uint) ([]ProductTotal, error) {
	if err := requireStaff(staff); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	if _, err := loadDelivery(db, id); err != nil {
		if KindOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load delivery: %w", err)
	}

	totals := make([]ProductTotal, 0)
	err := db.Raw(`
		SELECT p.id AS product_id,
		       p.name AS product_name,
		       pr.name AS producer_name,
		       COALESCE(SUM(oi.quantity), 0) AS total_quantity
		FROM delivery_products dp
		JOIN products p ON p.id = dp.product_id
		JOIN producers pr ON pr.id = p.producer_id
		LEFT JOIN order_items oi
		       ON oi.product_id = p.id
		      AND oi.order_id IN (SELECT o.id FROM orders o WHERE o.delivery_id = ?)
		WHERE dp.delivery_id = ?
		GROUP BY p.id, p.name, pr.name
		ORDER BY pr.name, p.name`, id, id).
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute product totals: %w", err)
	}
	return totals, nil
}

// loadProducts resolves every id, failing on the first unknown one.
// Duplicate ids are collapsed.
func loadProducts(tx *gorm.DB, ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	var found []models.Product
	if err := tx.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	products := make([]models.Product, 0, len(found))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, productNotFound(id)
		}
		if !seen[id] {
			seen[id] = true
			products = append(products, p)
		}
	}
	return products, nil
}
