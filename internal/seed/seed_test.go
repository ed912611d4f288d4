package seed

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"storefront-service/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.Tables...))
	return db
}

func countRows(t *testing.T, db *gorm.DB, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}

func TestSeedDemoIdempotent(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, SeedDemo(db))
	require.NoError(t, SeedDemo(db))

	assert.Equal(t, int64(3), countRows(t, db, &model.Category{}))
	assert.Equal(t, int64(15), countRows(t, db, &model.Product{}))
	assert.Equal(t, int64(15), countRows(t, db, &model.ProductVariant{}))
	assert.Equal(t, int64(15), countRows(t, db, &model.Asset{}))
	assert.Equal(t, int64(2), countRows(t, db, &model.User{}))
	assert.Equal(t, int64(3), countRows(t, db, &model.Order{}))

	var alice model.User
	require.NoError(t, db.Where("email = ?", "alice@demo.local").First(&alice).Error)
	assert.True(t, alice.IsDemo)

	// One default shipping address per user
	var addresses int64
	require.NoError(t, db.Model(&model.Address{}).
		Where("user_id = ? AND is_default_shipping = ?", alice.ID, true).
		Count(&addresses).Error)
	assert.Equal(t, int64(1), addresses)

	var orders []model.Order
	require.NoError(t, db.Preload("Items").
		Where("user_id = ?", alice.ID).
		Order("number asc").
		Find(&orders).Error)
	require.Len(t, orders, 3)
	assert.Equal(t, "ORD-1001", orders[0].Number)
	assert.Equal(t, "ORD-1003", orders[2].Number)
	assert.True(t, orders[0].PlacedAt.Before(orders[1].PlacedAt))
	assert.True(t, orders[1].PlacedAt.Before(orders[2].PlacedAt))

	// ORD-1002 is two croissants and one cheesecake
	require.Len(t, orders[1].Items, 2)
	assert.Equal(t, int64(499+2*249), orders[1].SubtotalCents)
	assert.Equal(t, orders[1].SubtotalCents, orders[1].TotalCents)
	for _, item := range orders[1].Items {
		assert.Equal(t, item.SKUSnapshot, item.NameSnapshot)
		assert.True(t, orders[1].IsDemo)
	}
}

func TestSeedDemoRefreshesCatalog(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, SeedDemo(db))

	// Drift the catalog; reseeding must converge it back
	require.NoError(t, db.Model(&model.Product{}).
		Where("slug = ?", "croissant").
		Updates(map[string]interface{}{"name": "Renamed", "active": false}).Error)
	require.NoError(t, db.Model(&model.ProductVariant{}).
		Where("sku = ?", "BKR-CRS-001").
		Update("price_cents", 1).Error)

	require.NoError(t, SeedDemo(db))

	var product model.Product
	require.NoError(t, db.Where("slug = ?", "croissant").First(&product).Error)
	assert.Equal(t, "Croissant", product.Name)
	assert.True(t, product.Active)

	var variant model.ProductVariant
	require.NoError(t, db.Where("sku = ?", "BKR-CRS-001").First(&variant).Error)
	assert.Equal(t, int64(249), variant.PriceCents)
}

func TestWipeDemoData(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, SeedDemo(db))

	// Non-demo rows the wipe must not touch
	realUser := model.User{Email: "keep@real.example", Name: "Keeper"}
	require.NoError(t, db.Create(&realUser).Error)
	realOrder := model.Order{
		Number: "ORD-9999", UserID: realUser.ID,
		Status: model.OrderStatusProcessing, PaymentStatus: model.OrderPaymentStatusUnpaid,
		Currency: "USD", SubtotalCents: 100, TotalCents: 100,
	}
	require.NoError(t, db.Create(&realOrder).Error)

	// A demo wishlist and a payment on a demo order
	var alice model.User
	require.NoError(t, db.Where("email = ?", "alice@demo.local").First(&alice).Error)
	wl := model.Wishlist{UserID: alice.ID}
	require.NoError(t, db.Create(&wl).Error)
	var variant model.ProductVariant
	require.NoError(t, db.Where("sku = ?", "DES-CHS-001").First(&variant).Error)
	require.NoError(t, db.Create(&model.WishlistItem{WishlistID: wl.ID, VariantID: variant.ID}).Error)

	var demoOrder model.Order
	require.NoError(t, db.Where("number = ?", "ORD-1001").First(&demoOrder).Error)
	require.NoError(t, db.Create(&model.Payment{
		OrderID: demoOrder.ID, StripePaymentIntentID: "pi_demo",
		AmountCents: 499, Currency: "usd", Status: model.PaymentStatusSucceeded,
	}).Error)

	require.NoError(t, WipeDemoData(db))

	assert.Zero(t, countRows(t, db, &model.Wishlist{}))
	assert.Zero(t, countRows(t, db, &model.WishlistItem{}))
	assert.Zero(t, countRows(t, db, &model.Payment{}))
	assert.Zero(t, countRows(t, db, &model.Address{}))

	var demoUsers, demoOrders int64
	require.NoError(t, db.Model(&model.User{}).Where("is_demo = ?", true).Count(&demoUsers).Error)
	require.NoError(t, db.Model(&model.Order{}).Where("is_demo = ?", true).Count(&demoOrders).Error)
	assert.Zero(t, demoUsers)
	assert.Zero(t, demoOrders)

	// Catalog and non-demo rows survive
	assert.Equal(t, int64(15), countRows(t, db, &model.Product{}))
	require.NoError(t, db.First(&model.User{}, "id = ?", realUser.ID).Error)
	require.NoError(t, db.First(&model.Order{}, "id = ?", realOrder.ID).Error)
}

func TestSeederReset(t *testing.T) {
	db := newTestDB(t)
	s := New(db, "")

	require.NoError(t, s.Run(context.Background()))
	require.NoError(t, s.Reset(context.Background()))

	assert.Equal(t, int64(2), countRows(t, db, &model.User{}))
	assert.Equal(t, int64(3), countRows(t, db, &model.Order{}))
}

func TestSeederCommand(t *testing.T) {
	db := newTestDB(t)

	t.Run("successful command replaces the built-in seeder", func(t *testing.T) {
		s := New(db, "exit 0")
		require.NoError(t, s.Run(context.Background()))
		// The external command ran instead of the Go seeder
		assert.Zero(t, countRows(t, db, &model.User{}))
	})

	t.Run("failing command surfaces the error", func(t *testing.T) {
		s := New(db, "exit 3")
		err := s.Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "seed command failed")
	})
}
