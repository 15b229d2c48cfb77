package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kendall-kelly/baskets-api/models"
	"github.com/kendall-kelly/baskets-api/utils"
)

// ExportContentType is the media type of rendered order forms
const ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const exportExtension = ".xlsx"

// OrderForms is the rendered order forms of one delivery
type OrderForms struct {
	Filename string
	Orders   int
	Content  []byte
}

// ExportResult locates an uploaded export
type ExportResult struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Orders   int    `json:"orders"`
}

// ExportService renders the order forms handed to producers for a delivery
type ExportService struct {
	db      *gorm.DB
	storage ObjectStorage
	serviceOptions
}

var exportServiceInstance *ExportService

// NewExportService creates an export service. storage may be nil, in which
// case exports can be downloaded but not uploaded.
func NewExportService(db *gorm.DB, storage ObjectStorage, opts ...Option) *ExportService {
	return &ExportService{db: db, storage: storage, serviceOptions: buildOptions(opts)}
}

// InitExportService creates the export service and registers it globally
func InitExportService(db *gorm.DB, storage ObjectStorage, opts ...Option) *ExportService {
	exportServiceInstance = NewExportService(db, storage, opts...)
	return exportServiceInstance
}

func GetExportService() *ExportService {
	return exportServiceInstance
}

func SetExportService(s *ExportService) {
	exportServiceInstance = s
}

// BuildOrderForms renders a workbook with one sheet per order of the
// delivery, sorted by username. Each sheet lists the items and ends with the
// order total.
func (s *ExportService) BuildOrderForms(ctx context.Context, staff *models.User, deliveryID uint) (*OrderForms, error) {
	if err := requireStaff(staff); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	delivery, err := loadDelivery(db, deliveryID)
	if err != nil {
		if KindOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load delivery: %w", err)
	}

	orders, err := s.deliveryOrders(db, delivery.ID)
	if err != nil {
		return nil, err
	}

	content, err := renderOrderForms(delivery, orders)
	if err != nil {
		return nil, fmt.Errorf("failed to render order forms: %w", err)
	}

	return &OrderForms{
		Filename: utils.ExportFilename(delivery.Date),
		Orders:   len(orders),
		Content:  content,
	}, nil
}

// ExportOrderForms uploads the order forms of a closed delivery and returns
// a temporary download link.
func (s *ExportService) ExportOrderForms(ctx context.Context, staff *models.User, deliveryID uint) (*ExportResult, error) {
	if err := requireStaff(staff); err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, newError(KindUnavailable, "EXPORT_STORAGE_DISABLED", "Export storage is not configured")
	}

	delivery, err := loadDelivery(s.db.WithContext(ctx), deliveryID)
	if err != nil {
		if KindOf(err) != "" {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load delivery: %w", err)
	}
	if delivery.IsOpen(s.today()) {
		return nil, newError(KindInvalidInput, "EXPORT_NOT_READY", "Delivery still accepts orders")
	}

	forms, err := s.BuildOrderForms(ctx, staff, deliveryID)
	if err != nil {
		return nil, err
	}
	if forms.Orders == 0 {
		return nil, newError(KindInvalidInput, "EXPORT_NOT_READY", "Delivery has no orders")
	}

	key := fmt.Sprintf("exports/%s_%s%s",
		strings.TrimSuffix(forms.Filename, exportExtension), uuid.NewString(), exportExtension)
	if err := s.storage.PutObject(ctx, key, ExportContentType, forms.Content); err != nil {
		return nil, s.fail("upload order forms", err, zap.Uint("delivery_id", deliveryID))
	}
	url, err := s.storage.PresignGetURL(ctx, key)
	if err != nil {
		if delErr := s.storage.DeleteObject(ctx, key); delErr != nil {
			zap.L().Warn("Failed to remove unreachable export", zap.String("key", key), zap.Error(delErr))
		}
		return nil, s.fail("presign order forms", err, zap.String("key", key))
	}

	zap.L().Info("Order forms exported",
		zap.Uint("delivery_id", deliveryID),
		zap.String("key", key),
		zap.Int("orders", forms.Orders))

	return &ExportResult{Key: key, URL: url, Filename: forms.Filename, Orders: forms.Orders}, nil
}

func (s *ExportService) deliveryOrders(db *gorm.DB, deliveryID uint) ([]models.Order, error) {
	var orders []models.Order
	err := db.Joins("JOIN users ON users.id = orders.user_id").
		Where("orders.delivery_id = ?", deliveryID).
		Order("users.username").
		Preload("User").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Product").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load delivery orders: %w", err)
	}
	return orders, nil
}

func renderOrderForms(delivery *models.Delivery, orders []models.Order) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool, len(orders))
	for i, order := range orders {
		name := sheetName(order.User.Username, used)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}

		rows := [][]interface{}{
			{"Basket Order"},
			{"User", order.User.Username},
			{"Delivery date", utils.FormatDate(delivery.Date)},
			{"Product", "Unit price", "Quantity", "Amount"},
		}
		for _, item := range order.Items {
			rows = append(rows, []interface{}{
				item.Product.Name,
				utils.FormatAmount(snapshotUnitPrice(item)),
				item.Quantity,
				utils.FormatAmount(item.Amount),
			})
		}
		rows = append(rows, []interface{}{nil, nil, "total", utils.FormatAmount(order.Amount)})

		for r, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return nil, err
			}
		}
		if err := f.SetColWidth(name, "A", "A", 24); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sheetName turns a username into a unique worksheet name. Worksheet names
// are limited to 31 characters, may not contain :\/?*[] and may not start or
// end with an apostrophe.
func sheetName(username string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, username)
	base = strings.Trim(truncateRunes(base, 31), "'")
	if base == "" {
		base = "order"
	}

	name := base
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := "~" + strconv.Itoa(n)
		name = truncateRunes(base, 31-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// snapshotUnitPrice is the unit price the item amount was computed with
func snapshotUnitPrice(item models.OrderItem) decimal.Decimal {
	if item.Quantity <= 0 {
		return decimal.Zero
	}
	return item.Amount.Div(decimal.NewFromInt(int64(item.Quantity))).Round(2)
}
