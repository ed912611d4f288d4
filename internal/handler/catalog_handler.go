package handler

import (
	"errors"
	"net/http"
	"storefront-service/internal/model"
	"storefront-service/pkg/database"
	"storefront-service/pkg/logger"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultProductLimit = 20
	maxProductLimit     = 100
)

// ListCategories returns all categories ordered by sort then name
func ListCategories(c echo.Context) error {
	log := logger.FromContext(c)

	var categories []model.Category
	result := database.GetDB().Order("sort asc, name asc").Find(&categories)
	if result.Error != nil {
		log.Error("Failed to retrieve categories", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve categories",
		})
	}

	shaped := make([]echo.Map, 0, len(categories))
	for _, cat := range categories {
		shaped = append(shaped, echo.Map{
			"id":   cat.ID,
			"name": cat.Name,
			"slug": cat.Slug,
			"sort": cat.Sort,
		})
	}

	log.Info("Categories retrieved successfully", zap.Int("count", len(categories)))
	return c.JSON(http.StatusOK, shaped)
}

// ListProducts handles retrieving a page of products with optional filtering
func ListProducts(c echo.Context) error {
	log := logger.FromContext(c)

	skip := 0
	if v, err := strconv.Atoi(c.QueryParam("skip")); err == nil && v >= 0 {
		skip = v
	}
	limit := defaultProductLimit
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= maxProductLimit {
		limit = v
	}
	category := strings.TrimSpace(c.QueryParam("category"))
	search := strings.TrimSpace(c.QueryParam("search"))

	db := database.GetDB()
	query := db.Model(&model.Product{})
	if category != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", category)
	}
	if search != "" {
		query = applySearchFilter(query, db.Name(), search)
	}

	// Total matches the filters regardless of the pagination window
	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		log.Error("Failed to count products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve products",
		})
	}

	var products []model.Product
	err := query.
		Order("products.name asc").
		Offset(skip).
		Limit(limit).
		Preload("Category").
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("price_cents asc")
		}).
		Preload("Assets", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort asc")
		}).
		Find(&products).Error
	if err != nil {
		log.Error("Failed to list products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve products",
		})
	}

	items := make([]echo.Map, 0, len(products))
	for i := range products {
		items = append(items, shapeProduct(&products[i], false))
	}

	log.Info("Products retrieved successfully",
		zap.Int("count", len(items)),
		zap.Int64("total_count", totalCount))
	return c.JSON(http.StatusOK, echo.Map{
		"items":      items,
		"totalCount": totalCount,
		"skip":       skip,
		"limit":      limit,
	})
}

// GetProductBySlug handles retrieving a single product with all variants and assets
func GetProductBySlug(c echo.Context) error {
	log := logger.FromContext(c)
	slug := c.Param("slug")

	var product model.Product
	err := database.GetDB().
		Preload("Category").
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("price_cents asc")
		}).
		Preload("Assets", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort asc")
		}).
		Where("slug = ?", slug).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("Product not found", zap.String("slug", slug))
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Product not found",
			})
		}
		log.Error("Failed to retrieve product", zap.String("slug", slug), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve product",
		})
	}

	return c.JSON(http.StatusOK, shapeProduct(&product, true))
}

// applySearchFilter matches a case-insensitive substring across name,
// description and slug. ILIKE is only valid on postgres; other dialects get
// the portable LOWER() LIKE form.
func applySearchFilter(query *gorm.DB, dialect, search string) *gorm.DB {
	if dialect == "postgres" {
		pattern := "%" + search + "%"
		return query.Where(
			"products.name ILIKE ? OR products.description ILIKE ? OR products.slug ILIKE ?",
			pattern, pattern, pattern,
		)
	}
	pattern := "%" + strings.ToLower(search) + "%"
	return query.Where(
		"LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ? OR LOWER(products.slug) LIKE ?",
		pattern, pattern, pattern,
	)
}

// shapeProduct flattens a product for API responses: the cheapest active
// variant's price fields, the lowest-sort asset as thumbnail, and (for the
// detail view) the full variant list price-ascending.
func shapeProduct(p *model.Product, includeVariants bool) echo.Map {
	var cheapest *model.ProductVariant
	for i := range p.Variants {
		if p.Variants[i].Active {
			cheapest = &p.Variants[i]
			break
		}
	}

	shaped := echo.Map{
		"id":          p.ID,
		"slug":        p.Slug,
		"name":        p.Name,
		"description": p.Description,
		"priceCents":  nil,
		"currency":    nil,
		"sku":         nil,
		"stockQty":    nil,
		"thumbnail":   nil,
		"assets":      shapeAssets(p.Assets),
		"createdAt":   p.CreatedAt.UTC().Format(time.RFC3339),
	}
	if p.Category != nil {
		shaped["category"] = echo.Map{"slug": p.Category.Slug, "name": p.Category.Name}
	}
	if cheapest != nil {
		shaped["priceCents"] = cheapest.PriceCents
		shaped["currency"] = cheapest.Currency
		shaped["sku"] = cheapest.SKU
		shaped["stockQty"] = cheapest.StockQty
	}
	if len(p.Assets) > 0 {
		shaped["thumbnail"] = p.Assets[0].URL
	}
	if includeVariants {
		variants := make([]echo.Map, 0, len(p.Variants))
		for _, v := range p.Variants {
			variants = append(variants, echo.Map{
				"id":         v.ID,
				"sku":        v.SKU,
				"priceCents": v.PriceCents,
				"currency":   v.Currency,
				"stockQty":   v.StockQty,
			})
		}
		shaped["variants"] = variants
	}
	return shaped
}

func shapeAssets(assets []model.Asset) []echo.Map {
	shaped := make([]echo.Map, 0, len(assets))
	for _, a := range assets {
		shaped = append(shaped, echo.Map{"url": a.URL, "kind": a.Kind, "sort": a.Sort})
	}
	return shaped
}
