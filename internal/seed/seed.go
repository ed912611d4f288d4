// Package seed owns demo data: the built-in seeder, the external seed-command
// override, and the typed demo wipe used by the admin reset endpoint.
package seed

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"time"

	"storefront-service/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder reseeds demo rows either via the built-in data set or an external
// command when one is configured.
type Seeder struct {
	db      *gorm.DB
	command string
}

// New returns a Seeder. command is the optional SEED_CMD override; when empty
// the built-in Go seeder runs instead.
func New(db *gorm.DB, command string) *Seeder {
	return &Seeder{db: db, command: command}
}

// Run executes the configured seed path.
func (s *Seeder) Run(ctx context.Context) error {
	if s.command != "" {
		return s.runCommand(ctx)
	}
	return SeedDemo(s.db)
}

// Reset wipes demo rows and reseeds.
func (s *Seeder) Reset(ctx context.Context) error {
	if err := WipeDemoData(s.db); err != nil {
		return err
	}
	return s.Run(ctx)
}

func (s *Seeder) runCommand(ctx context.Context) error {
	zap.L().Info("Running seed command", zap.String("cmd", s.command))

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", s.command)
	cmd.Env = os.Environ()
	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		zap.L().Info("Seed command output", zap.ByteString("output", out))
	}
	if err != nil {
		return fmt.Errorf("seed command failed: %w", err)
	}
	return nil
}

type seedProduct struct {
	category    string
	slug        string
	name        string
	priceCents  int64
	sku         string
	stockQty    int
	description string
}

var seedCategories = []model.Category{
	{Name: "Desserts", Slug: "desserts", Sort: 1},
	{Name: "Bakery", Slug: "bakery", Sort: 2},
	{Name: "Deli", Slug: "deli", Sort: 3},
}

var seedProducts = []seedProduct{
	// Desserts
	{"desserts", "classic-cheesecake", "Classic Cheesecake", 499, "DES-CHS-001", 24, "Rich and creamy cheesecake with a buttery crust."},
	{"desserts", "chocolate-brownie", "Chocolate Brownie", 299, "DES-CHB-001", 48, "Fudgy brownie, deep cocoa flavor."},
	{"desserts", "strawberry-tart", "Strawberry Tart", 449, "DES-STR-001", 20, "Crisp tart shell with fresh strawberries."},
	{"desserts", "vanilla-ice-cream", "Vanilla Ice Cream", 399, "DES-VAN-001", 36, "Classic vanilla with Madagascar beans."},
	{"desserts", "lemon-mousse", "Lemon Mousse", 429, "DES-LEM-001", 18, "Light, airy, and citrusy."},

	// Bakery
	{"bakery", "croissant", "Croissant", 249, "BKR-CRS-001", 60, "Buttery, flaky layers, freshly baked."},
	{"bakery", "baguette", "Baguette", 299, "BKR-BAG-001", 50, "Crispy crust, chewy interior."},
	{"bakery", "blueberry-muffin", "Blueberry Muffin", 279, "BKR-BLM-001", 40, "Studded with juicy blueberries."},
	{"bakery", "sourdough-bread", "Sourdough Bread", 399, "BKR-SDB-001", 22, "Slow-fermented tang, rustic crust."},
	{"bakery", "cinnamon-roll", "Cinnamon Roll", 329, "BKR-CIN-001", 32, "Swirls of cinnamon with icing."},

	// Deli
	{"deli", "roast-beef-sandwich", "Roast Beef Sandwich", 899, "DEL-RBS-001", 15, "Thin-sliced roast beef, horseradish aioli."},
	{"deli", "turkey-club-sandwich", "Turkey Club Sandwich", 849, "DEL-TCS-001", 18, "Turkey, bacon, lettuce, tomato."},
	{"deli", "ham-cheese-panini", "Ham & Cheese Panini", 799, "DEL-HCP-001", 20, "Melted Swiss on pressed bread."},
	{"deli", "italian-sub", "Italian Sub", 899, "DEL-ITS-001", 16, "Salami, capicola, provolone, vinaigrette."},
	{"deli", "smoked-salmon-bagel", "Smoked Salmon Bagel", 999, "DEL-SSB-001", 12, "Lox, cream cheese, capers, red onion."},
}

// SeedDemo upserts the demo catalog, the Alice/Bob identities and Alice's demo
// orders. Safe to run repeatedly.
func SeedDemo(db *gorm.DB) error {
	if err := seedCatalog(db); err != nil {
		return err
	}
	return seedUsersAndOrders(db)
}

func seedCatalog(db *gorm.DB) error {
	for _, c := range seedCategories {
		var existing model.Category
		err := db.Where("slug = ?", c.Slug).First(&existing).Error
		switch {
		case err == nil:
			existing.Name = c.Name
			existing.Sort = c.Sort
			if err := db.Save(&existing).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			cat := c
			if err := db.Create(&cat).Error; err != nil {
				return err
			}
		default:
			return err
		}
	}

	for _, p := range seedProducts {
		var category model.Category
		if err := db.Where("slug = ?", p.category).First(&category).Error; err != nil {
			return fmt.Errorf("seed category %s: %w", p.category, err)
		}

		product, err := upsertProduct(db, &p, category.ID)
		if err != nil {
			return err
		}
		if err := upsertVariant(db, &p, product.ID); err != nil {
			return err
		}

		// Keep a single generated thumbnail per product
		if err := db.Where("product_id = ? AND kind = ?", product.ID, "thumbnail").
			Delete(&model.Asset{}).Error; err != nil {
			return err
		}
		asset := model.Asset{
			URL:       thumbnailURL(p.slug),
			Kind:      "thumbnail",
			Sort:      0,
			ProductID: product.ID,
		}
		if err := db.Create(&asset).Error; err != nil {
			return err
		}
	}
	return nil
}

func upsertProduct(db *gorm.DB, p *seedProduct, categoryID string) (*model.Product, error) {
	var product model.Product
	err := db.Where("slug = ?", p.slug).First(&product).Error
	switch {
	case err == nil:
		product.Name = p.name
		product.Description = p.description
		product.Active = true
		product.CategoryID = categoryID
		return &product, db.Save(&product).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		product = model.Product{
			Slug:        p.slug,
			Name:        p.name,
			Description: p.description,
			Active:      true,
			CategoryID:  categoryID,
		}
		return &product, db.Create(&product).Error
	default:
		return nil, err
	}
}

func upsertVariant(db *gorm.DB, p *seedProduct, productID string) error {
	var variant model.ProductVariant
	err := db.Where("sku = ?", p.sku).First(&variant).Error
	switch {
	case err == nil:
		variant.PriceCents = p.priceCents
		variant.Currency = "USD"
		variant.StockQty = p.stockQty
		variant.Active = true
		variant.ProductID = productID
		return db.Save(&variant).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		variant = model.ProductVariant{
			SKU:        p.sku,
			PriceCents: p.priceCents,
			Currency:   "USD",
			StockQty:   p.stockQty,
			Active:     true,
			ProductID:  productID,
		}
		return db.Create(&variant).Error
	default:
		return err
	}
}

func seedUsersAndOrders(db *gorm.DB) error {
	alice, err := upsertDemoUser(db, "alice@demo.local", "Alice")
	if err != nil {
		return err
	}
	aliceAddr, err := ensureDefaultShippingAddress(db, alice.ID, model.Address{
		Line1:      "123 Demo Street",
		City:       "Sampleville",
		Region:     "CA",
		PostalCode: "90001",
		Country:    "US",
	})
	if err != nil {
		return err
	}

	bob, err := upsertDemoUser(db, "bob@demo.local", "Bob")
	if err != nil {
		return err
	}
	if _, err := ensureDefaultShippingAddress(db, bob.ID, model.Address{
		Line1:      "456 Example Avenue",
		City:       "Testtown",
		Region:     "NY",
		PostalCode: "10001",
		Country:    "US",
	}); err != nil {
		return err
	}

	// Replace Alice's demo orders wholesale
	if err := deleteDemoOrdersForUser(db, alice.ID); err != nil {
		return err
	}

	v1, err := variantBySKU(db, "DES-CHS-001")
	if err != nil {
		return err
	}
	v2, err := variantBySKU(db, "BKR-CRS-001")
	if err != nil {
		return err
	}
	v3, err := variantBySKU(db, "DEL-RBS-001")
	if err != nil {
		return err
	}

	base := time.Now().Add(-3 * time.Hour)
	orders := []struct {
		number   string
		placedAt time.Time
		lines    []orderLine
	}{
		{"ORD-1001", base, []orderLine{{v1, 1}}},
		{"ORD-1002", base.Add(time.Hour), []orderLine{{v2, 2}, {v1, 1}}},
		{"ORD-1003", base.Add(2 * time.Hour), []orderLine{{v3, 1}, {v2, 2}}},
	}
	for _, o := range orders {
		if err := createDemoOrder(db, alice.ID, aliceAddr.ID, o.number, o.placedAt, o.lines); err != nil {
			return err
		}
	}
	return nil
}

func upsertDemoUser(db *gorm.DB, email, name string) (*model.User, error) {
	var user model.User
	err := db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		user.Name = name
		user.IsDemo = true
		return &user, db.Save(&user).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = model.User{Email: email, Name: name, IsDemo: true}
		return &user, db.Create(&user).Error
	default:
		return nil, err
	}
}

// ensureDefaultShippingAddress is an explicit find-or-create: probe for the
// user's default shipping address, update it when present, create it when not.
func ensureDefaultShippingAddress(db *gorm.DB, userID string, fields model.Address) (*model.Address, error) {
	var addr model.Address
	err := db.Where("user_id = ? AND is_default_shipping = ?", userID, true).First(&addr).Error
	switch {
	case err == nil:
		addr.Line1 = fields.Line1
		addr.City = fields.City
		addr.Region = fields.Region
		addr.PostalCode = fields.PostalCode
		addr.Country = fields.Country
		return &addr, db.Save(&addr).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		addr = fields
		addr.UserID = userID
		addr.IsDefaultShipping = true
		return &addr, db.Create(&addr).Error
	default:
		return nil, err
	}
}

func variantBySKU(db *gorm.DB, sku string) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	if err := db.Where("sku = ?", sku).First(&variant).Error; err != nil {
		return nil, fmt.Errorf("seed variant %s: %w", sku, err)
	}
	return &variant, nil
}

type orderLine struct {
	variant *model.ProductVariant
	qty     int
}

func createDemoOrder(db *gorm.DB, userID, addressID, number string, placedAt time.Time, lines []orderLine) error {
	var subtotal int64
	items := make([]model.OrderItem, 0, len(lines))
	for _, l := range lines {
		lineTotal := l.variant.PriceCents * int64(l.qty)
		subtotal += lineTotal
		items = append(items, model.OrderItem{
			ProductID:      l.variant.ProductID,
			VariantID:      l.variant.ID,
			NameSnapshot:   l.variant.SKU,
			SKUSnapshot:    l.variant.SKU,
			Quantity:       l.qty,
			UnitPriceCents: l.variant.PriceCents,
			LineTotalCents: lineTotal,
			Currency:       l.variant.Currency,
		})
	}

	order := model.Order{
		Number:            number,
		UserID:            userID,
		Status:            model.OrderStatusPaid,
		PaymentStatus:     model.OrderPaymentStatusUnpaid,
		Currency:          "USD",
		SubtotalCents:     subtotal,
		TotalCents:        subtotal,
		IsDemo:            true,
		PlacedAt:          placedAt,
		ShippingAddressID: &addressID,
		BillingAddressID:  &addressID,
		Items:             items,
	}
	return db.Create(&order).Error
}

func deleteDemoOrdersForUser(db *gorm.DB, userID string) error {
	var orderIDs []string
	if err := db.Model(&model.Order{}).
		Where("user_id = ? AND is_demo = ?", userID, true).
		Pluck("id", &orderIDs).Error; err != nil {
		return err
	}
	if len(orderIDs) == 0 {
		return nil
	}
	if err := db.Where("order_id IN ?", orderIDs).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	if err := db.Where("order_id IN ?", orderIDs).Delete(&model.Payment{}).Error; err != nil {
		return err
	}
	return db.Where("id IN ?", orderIDs).Delete(&model.Order{}).Error
}

func thumbnailURL(slug string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/400/400", url.QueryEscape(slug))
}
