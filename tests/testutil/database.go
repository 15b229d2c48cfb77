package testutil

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kendall-kelly/baskets-api/config"
	"github.com/kendall-kelly/baskets-api/models"
)

// Now is the fixed instant tests run at. Today is 2024-03-14.
var Now = time.Date(2024, 3, 14, 10, 30, 0, 0, time.UTC)

// Clock returns Now
func Clock() time.Time {
	return Now
}

// Date returns UTC midnight of the given day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// NewTestDB opens a private in-memory SQLite database with the full schema.
// The pool holds a single connection so every query sees the same database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

// Fixtures is a small catalog with one open, one closed and one future delivery
type Fixtures struct {
	Member models.User
	Other  models.User
	Staff  models.User

	Producer models.Producer
	Apples   models.Product // 0.50
	Bread    models.Product // 2.00
	Eggs     models.Product // 1.15

	// Open closes today: delivered 2024-03-15, offers Apples and Eggs
	Open models.Delivery
	// Closed closed yesterday: delivered 2024-03-14, offers everything
	Closed models.Delivery
	// Future is delivered 2024-03-22, offers Bread only
	Future models.Delivery
}

// Seed inserts the fixtures
func Seed(t *testing.T, db *gorm.DB) *Fixtures {
	t.Helper()

	f := &Fixtures{
		Member: models.User{Auth0ID: "auth0|member", Username: "alice", FirstName: "Alice", LastName: "Martin", Email: "alice@example.com", Role: models.RoleMember},
		Other:  models.User{Auth0ID: "auth0|other", Username: "bob", FirstName: "Bob", LastName: "Durand", Email: "bob@example.com", Role: models.RoleMember},
		Staff:  models.User{Auth0ID: "auth0|staff", Username: "carol", FirstName: "Carol", LastName: "Petit", Email: "carol@example.com", Role: models.RoleStaff},
		Producer: models.Producer{Name: "Ferme du Val", Phone: "01 23 45 67 89", Email: "val@example.com"},
	}
	for _, u := range []*models.User{&f.Member, &f.Other, &f.Staff} {
		require.NoError(t, db.Create(u).Error)
	}
	require.NoError(t, db.Create(&f.Producer).Error)

	f.Apples = models.Product{ProducerID: f.Producer.ID, Name: "Apples", UnitPrice: decimal.RequireFromString("0.50")}
	f.Bread = models.Product{ProducerID: f.Producer.ID, Name: "Bread", UnitPrice: decimal.RequireFromString("2.00")}
	f.Eggs = models.Product{ProducerID: f.Producer.ID, Name: "Eggs", UnitPrice: decimal.RequireFromString("1.15")}
	for _, p := range []*models.Product{&f.Apples, &f.Bread, &f.Eggs} {
		require.NoError(t, db.Omit("Producer").Create(p).Error)
	}

	f.Open = models.Delivery{
		Date:          Date(2024, 3, 15),
		OrderDeadline: Date(2024, 3, 14),
		Products:      []models.Product{f.Apples, f.Eggs},
		Message:       "Bring your own bags",
	}
	f.Closed = models.Delivery{
		Date:          Date(2024, 3, 14),
		OrderDeadline: Date(2024, 3, 13),
		Products:      []models.Product{f.Apples, f.Bread, f.Eggs},
	}
	f.Future = models.Delivery{
		Date:          Date(2024, 3, 22),
		OrderDeadline: Date(2024, 3, 18),
		Products:      []models.Product{f.Bread},
	}
	for _, d := range []*models.Delivery{&f.Open, &f.Closed, &f.Future} {
		require.NoError(t, db.Omit("Products.*").Create(d).Error)
	}
	return f
}

// Line is one product and quantity of a seeded order
type Line struct {
	Product  models.Product
	Quantity int
}

// SeedOrder inserts an order with snapshotted item amounts directly, without
// any deadline check.
func SeedOrder(t *testing.T, db *gorm.DB, user models.User, delivery models.Delivery, lines ...Line) models.Order {
	t.Helper()

	order := models.Order{UserID: user.ID, DeliveryID: delivery.ID}
	for _, line := range lines {
		order.Items = append(order.Items, models.NewOrderItem(line.Product, line.Quantity))
	}
	order.RecomputeAmount()
	require.NoError(t, db.Omit("Items.Product", "User", "Delivery").Create(&order).Error)
	return order
}
