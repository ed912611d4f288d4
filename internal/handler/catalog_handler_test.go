package handler

import (
	"net/http"
	"testing"

	"storefront-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedCatalogFixtures(t *testing.T, db *gorm.DB) {
	t.Helper()

	bakery := model.Category{Name: "Bakery", Slug: "bakery", Sort: 2}
	desserts := model.Category{Name: "Desserts", Slug: "desserts", Sort: 1}
	require.NoError(t, db.Create(&bakery).Error)
	require.NoError(t, db.Create(&desserts).Error)

	croissant := model.Product{
		Slug: "croissant", Name: "Croissant",
		Description: "Buttery, flaky layers", Active: true, CategoryID: bakery.ID,
	}
	cheesecake := model.Product{
		Slug: "classic-cheesecake", Name: "Classic Cheesecake",
		Description: "Rich and creamy", Active: true, CategoryID: desserts.ID,
	}
	require.NoError(t, db.Create(&croissant).Error)
	require.NoError(t, db.Create(&cheesecake).Error)

	variants := []model.ProductVariant{
		// Cheapest variant of the croissant is inactive; price shaping must skip it
		{SKU: "BKR-CRS-000", PriceCents: 199, Currency: "USD", StockQty: 0, Active: false, ProductID: croissant.ID},
		{SKU: "BKR-CRS-001", PriceCents: 249, Currency: "USD", StockQty: 60, Active: true, ProductID: croissant.ID},
		{SKU: "BKR-CRS-002", PriceCents: 349, Currency: "USD", StockQty: 10, Active: true, ProductID: croissant.ID},
		{SKU: "DES-CHS-001", PriceCents: 499, Currency: "USD", StockQty: 24, Active: true, ProductID: cheesecake.ID},
	}
	for i := range variants {
		require.NoError(t, db.Create(&variants[i]).Error)
	}

	assets := []model.Asset{
		{URL: "https://img.test/croissant-alt.jpg", Kind: "image", Sort: 1, ProductID: croissant.ID},
		{URL: "https://img.test/croissant.jpg", Kind: "thumbnail", Sort: 0, ProductID: croissant.ID},
	}
	for i := range assets {
		require.NoError(t, db.Create(&assets[i]).Error)
	}
}

func TestListCategories(t *testing.T) {
	db := newTestDB(t)
	seedCatalogFixtures(t, db)

	c, rec := newContext(t, http.MethodGet, "/api/v1/categories", "")
	require.NoError(t, ListCategories(c))
	require.Equal(t, http.StatusOK, rec.Code)

	list := decodeList(t, rec)
	require.Len(t, list, 2)

	// Ordered by sort ascending
	first := list[0].(map[string]interface{})
	second := list[1].(map[string]interface{})
	assert.Equal(t, "desserts", first["slug"])
	assert.Equal(t, "bakery", second["slug"])
	assert.Equal(t, float64(1), first["sort"])
}

func TestListProductsShaping(t *testing.T) {
	db := newTestDB(t)
	seedCatalogFixtures(t, db)

	c, rec := newContext(t, http.MethodGet, "/api/v1/products", "")
	require.NoError(t, ListProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeMap(t, rec)
	assert.Equal(t, float64(2), body["totalCount"])
	assert.Equal(t, float64(0), body["skip"])
	assert.Equal(t, float64(20), body["limit"])

	items := body["items"].([]interface{})
	require.Len(t, items, 2)

	// Ordered by name ascending: Classic Cheesecake before Croissant
	cheesecake := items[0].(map[string]interface{})
	croissant := items[1].(map[string]interface{})
	assert.Equal(t, "classic-cheesecake", cheesecake["slug"])
	assert.Equal(t, "croissant", croissant["slug"])

	// Cheapest *active* variant annotates the product
	assert.Equal(t, float64(249), croissant["priceCents"])
	assert.Equal(t, "BKR-CRS-001", croissant["sku"])
	assert.Equal(t, "USD", croissant["currency"])
	assert.Equal(t, float64(60), croissant["stockQty"])

	// Lowest-sort asset is the thumbnail
	assert.Equal(t, "https://img.test/croissant.jpg", croissant["thumbnail"])
	assert.Nil(t, cheesecake["thumbnail"])

	category := croissant["category"].(map[string]interface{})
	assert.Equal(t, "bakery", category["slug"])
}

func TestListProductsFilters(t *testing.T) {
	db := newTestDB(t)
	seedCatalogFixtures(t, db)

	t.Run("category filter", func(t *testing.T) {
		c, rec := newContext(t, http.MethodGet, "/api/v1/products?category=bakery", "")
		require.NoError(t, ListProducts(c))

		body := decodeMap(t, rec)
		assert.Equal(t, float64(1), body["totalCount"])
		items := body["items"].([]interface{})
		require.Len(t, items, 1)
		assert.Equal(t, "croissant", items[0].(map[string]interface{})["slug"])
	})

	t.Run("search is case-insensitive across fields", func(t *testing.T) {
		c, rec := newContext(t, http.MethodGet, "/api/v1/products?search=CHEESE", "")
		require.NoError(t, ListProducts(c))

		body := decodeMap(t, rec)
		assert.Equal(t, float64(1), body["totalCount"])
		items := body["items"].([]interface{})
		require.Len(t, items, 1)
		assert.Equal(t, "classic-cheesecake", items[0].(map[string]interface{})["slug"])
	})

	t.Run("totalCount ignores the pagination window", func(t *testing.T) {
		c, rec := newContext(t, http.MethodGet, "/api/v1/products?limit=1", "")
		require.NoError(t, ListProducts(c))

		body := decodeMap(t, rec)
		assert.Equal(t, float64(2), body["totalCount"])
		assert.Len(t, body["items"].([]interface{}), 1)
		assert.Equal(t, float64(1), body["limit"])
	})

	t.Run("no matches", func(t *testing.T) {
		c, rec := newContext(t, http.MethodGet, "/api/v1/products?search=nothere", "")
		require.NoError(t, ListProducts(c))

		body := decodeMap(t, rec)
		assert.Equal(t, float64(0), body["totalCount"])
		assert.Len(t, body["items"].([]interface{}), 0)
	})
}

func TestGetProductBySlug(t *testing.T) {
	db := newTestDB(t)
	seedCatalogFixtures(t, db)

	t.Run("returns all variants price-ascending and all assets", func(t *testing.T) {
		c, rec := newContext(t, http.MethodGet, "/api/v1/products/croissant", "")
		c.SetParamNames("slug")
		c.SetParamValues("croissant")
		require.NoError(t, GetProductBySlug(c))
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeMap(t, rec)
		assert.Equal(t, "croissant", body["slug"])

		variants := body["variants"].([]interface{})
		require.Len(t, variants, 3)
		assert.Equal(t, "BKR-CRS-000", variants[0].(map[string]interface{})["sku"])
		assert.Equal(t, "BKR-CRS-001", variants[1].(map[string]interface{})["sku"])
		assert.Equal(t, "BKR-CRS-002", variants[2].(map[string]interface{})["sku"])

		// Annotation still comes from the cheapest active variant
		assert.Equal(t, float64(249), body["priceCents"])

		assets := body["assets"].([]interface{})
		require.Len(t, assets, 2)
		assert.Equal(t, float64(0), assets[0].(map[string]interface{})["sort"])
	})

	t.Run("unknown slug is a 404", func(t *testing.T) {
		c, rec := newContext(t, http.MethodGet, "/api/v1/products/nope", "")
		c.SetParamNames("slug")
		c.SetParamValues("nope")
		require.NoError(t, GetProductBySlug(c))
		require.Equal(t, http.StatusNotFound, rec.Code)

		body := decodeMap(t, rec)
		assert.Equal(t, "Product not found", body["error"])
	})
}
