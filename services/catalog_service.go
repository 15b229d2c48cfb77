package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kendall-kelly/baskets-api/database"
	"github.com/kendall-kelly/baskets-api/models"
	"github.com/kendall-kelly/baskets-api/utils"
)

type CreateProducerInput struct {
	Name  string
	Phone string
	Email string
}

type CreateProductInput struct {
	ProducerID uint
	Name       string
	UnitPrice  decimal.Decimal
}

// CatalogProduct is a product as listed in the catalog
type CatalogProduct struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	UnitPrice    string `json:"unit_price"`
	ProducerID   uint   `json:"producer_id"`
	ProducerName string `json:"producer_name"`
}

// CatalogService manages producers and products. Reads are public, writes
// are restricted to staff.
type CatalogService struct {
	db *gorm.DB
	serviceOptions
}

var catalogServiceInstance *CatalogService

func NewCatalogService(db *gorm.DB, opts ...Option) *CatalogService {
	return &CatalogService{db: db, serviceOptions: buildOptions(opts)}
}

// InitCatalogService creates the catalog service and registers it globally
func InitCatalogService(db *gorm.DB, opts ...Option) *CatalogService {
	catalogServiceInstance = NewCatalogService(db, opts...)
	return catalogServiceInstance
}

func GetCatalogService() *CatalogService {
	return catalogServiceInstance
}

func SetCatalogService(s *CatalogService) {
	catalogServiceInstance = s
}

// ListProducts returns every product with its producer, sorted by producer
// then product name.
func (s *CatalogService) ListProducts(ctx context.Context) ([]CatalogProduct, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).
		Joins("JOIN producers ON producers.id = products.producer_id").
		Order("producers.name").
		Order("products.name").
		Preload("Producer").
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	listing := make([]CatalogProduct, 0, len(products))
	for _, p := range products {
		listing = append(listing, CatalogProduct{
			ID:           p.ID,
			Name:         p.Name,
			UnitPrice:    utils.FormatAmount(p.UnitPrice),
			ProducerID:   p.ProducerID,
			ProducerName: p.Producer.Name,
		})
	}
	return listing, nil
}

func (s *CatalogService) CreateProducer(ctx context.Context, staff *models.User, input CreateProducerInput) (*models.Producer, error) {
	if err := requireStaff(staff); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, newError(KindInvalidInput, "VALIDATION_ERROR", "Producer name is required")
	}

	producer := models.Producer{Name: name, Phone: input.Phone, Email: input.Email}
	if err := s.db.WithContext(ctx).Create(&producer).Error; err != nil {
		return nil, s.fail("create producer", err, zap.Uint("user_id", staff.ID))
	}

	zap.L().Info("Producer created", zap.Uint("producer_id", producer.ID), zap.String("name", producer.Name))
	return &producer, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, staff *models.User, input CreateProductInput) (*CatalogProduct, error) {
	if err := requireStaff(staff); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, newError(KindInvalidInput, "VALIDATION_ERROR", "Product name is required")
	}
	if err := checkPrice(input.UnitPrice); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var producer models.Producer
	if err := db.Where("id = ?", input.ProducerID).First(&producer).Error; err != nil {
		if database.IsNotFound(err) {
			return nil, newError(KindNotFound, "PRODUCER_NOT_FOUND", "Producer with id %d does not exist", input.ProducerID)
		}
		return nil, s.fail("create product", err, zap.Uint("user_id", staff.ID))
	}

	product := models.Product{
		ProducerID: producer.ID,
		Name:       name,
		UnitPrice:  input.UnitPrice.Round(2),
	}
	if err := db.Omit(clause.Associations).Create(&product).Error; err != nil {
		return nil, s.fail("create product", err, zap.Uint("user_id", staff.ID))
	}

	return &CatalogProduct{
		ID:           product.ID,
		Name:         product.Name,
		UnitPrice:    utils.FormatAmount(product.UnitPrice),
		ProducerID:   producer.ID,
		ProducerName: producer.Name,
	}, nil
}

// UpdateProductPrice changes a product's unit price. Amounts already saved on
// order items and orders keep the price they were computed with.
func (s *CatalogService) UpdateProductPrice(ctx context.Context, staff *models.User, productID uint, price decimal.Decimal) (*ProductDetail, error) {
	if err := requireStaff(staff); err != nil {
		return nil, err
	}
	if err := checkPrice(price); err != nil {
		return nil, err
	}

	var product models.Product
	var deliveryIDs []uint
	err := database.WithRetry(ctx, s.db, s.txOpts, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", productID).First(&product).Error; err != nil {
			if database.IsNotFound(err) {
				return productNotFound(productID)
			}
			return err
		}
		product.UnitPrice = price.Round(2)
		if err := tx.Model(&models.Product{}).
			Where("id = ?", product.ID).
			Update("unit_price", product.UnitPrice).Error; err != nil {
			return err
		}
		return tx.Table("delivery_products").
			Where("product_id = ?", product.ID).
			Pluck("delivery_id", &deliveryIDs).Error
	})
	if err != nil {
		return nil, s.fail("update product price", err, zap.Uint("product_id", productID))
	}

	s.cache.InvalidateDeliveries(ctx, deliveryIDs...)
	zap.L().Info("Product price updated",
		zap.Uint("product_id", product.ID),
		zap.String("unit_price", utils.FormatAmount(product.UnitPrice)))

	detail := newProductDetail(product)
	return &detail, nil
}

func checkPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return newError(KindInvalidInput, "INVALID_PRICE", "Unit price must not be negative")
	}
	if price.Round(2).GreaterThanOrEqual(maxAmount) {
		return newError(KindInvalidInput, "INVALID_PRICE", "Unit price must be lower than 1000000")
	}
	return nil
}
