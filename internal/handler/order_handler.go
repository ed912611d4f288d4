package handler

import (
	"errors"
	"fmt"
	"net/http"
	"storefront-service/internal/model"
	"storefront-service/pkg/database"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultOrderLimit = 10
	maxOrderLimit     = 100
	maxItemQuantity   = 10000
	orderNumberMaxLen = 20
)

// CreateOrderItem is one requested line of a new order
type CreateOrderItem struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest defines the structure for order creation requests
type CreateOrderRequest struct {
	UserID            string            `json:"userId"`
	Items             []CreateOrderItem `json:"items"`
	IsDemo            bool              `json:"isDemo"`
	ShippingAddressID *string           `json:"shippingAddressId"`
	BillingAddressID  *string           `json:"billingAddressId"`
}

// CreateOrder validates the requested line items against live variants,
// snapshots prices and names, and persists the order and its items atomically.
func CreateOrder(c echo.Context) error {
	log := logger.FromContext(c)

	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"ok": false, "error": "Invalid request data",
		})
	}
	if req.UserID == "" || len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"ok": false, "error": "userId and at least one item are required",
		})
	}
	variantIDs := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		if item.VariantID == "" || item.Quantity <= 0 || item.Quantity > maxItemQuantity {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"ok": false, "error": "Each item needs a variantId and a quantity between 1 and 10000",
			})
		}
		variantIDs = append(variantIDs, item.VariantID)
	}

	db := database.GetDB()

	// Batch-load the referenced variants with their product for the name snapshot
	var variants []model.ProductVariant
	if err := db.Preload("Product").Where("id IN ?", variantIDs).Find(&variants).Error; err != nil {
		log.Error("Failed to load variants", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"ok": false, "error": "Failed to create order",
		})
	}
	if len(variants) != len(variantIDs) {
		log.Warn("Order references unknown variants",
			zap.Int("requested", len(variantIDs)),
			zap.Int("found", len(variants)))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"ok": false, "error": "Some variants not found",
		})
	}

	var inactive []string
	for _, v := range variants {
		if !v.Active {
			inactive = append(inactive, v.ID)
		}
	}
	if len(inactive) > 0 {
		log.Warn("Order references inactive variants", zap.Strings("inactive", inactive))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"ok": false, "error": "Inactive variants", "inactive": inactive,
		})
	}

	currency := variants[0].Currency
	for _, v := range variants {
		if v.Currency != currency {
			log.Warn("Order mixes currencies")
			return c.JSON(http.StatusBadRequest, echo.Map{
				"ok": false, "error": "Mixed currencies not allowed",
			})
		}
	}

	byID := make(map[string]*model.ProductVariant, len(variants))
	for i := range variants {
		byID[variants[i].ID] = &variants[i]
	}

	var subtotalCents int64
	items := make([]model.OrderItem, 0, len(req.Items))
	for _, reqItem := range req.Items {
		v := byID[reqItem.VariantID]
		unitPriceCents := v.PriceCents
		lineTotalCents := unitPriceCents * int64(reqItem.Quantity)
		subtotalCents += lineTotalCents

		name := v.SKU
		if v.Product != nil {
			name = v.Product.Name
		}
		items = append(items, model.OrderItem{
			ProductID:      v.ProductID,
			VariantID:      v.ID,
			NameSnapshot:   name,
			SKUSnapshot:    v.SKU,
			Quantity:       reqItem.Quantity,
			UnitPriceCents: unitPriceCents,
			LineTotalCents: lineTotalCents,
			Currency:       currency,
		})
	}

	var taxCents, shippingCents, discountCents int64
	totalCents := subtotalCents + taxCents + shippingCents - discountCents

	order := model.Order{
		Number:            newOrderNumber(),
		UserID:            req.UserID,
		Status:            model.OrderStatusProcessing,
		PaymentStatus:     model.OrderPaymentStatusUnpaid,
		Currency:          currency,
		SubtotalCents:     subtotalCents,
		TaxCents:          taxCents,
		ShippingCents:     shippingCents,
		DiscountCents:     discountCents,
		TotalCents:        totalCents,
		IsDemo:            req.IsDemo,
		PlacedAt:          time.Now(),
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
		Items:             items,
	}

	// The order row and its item rows commit together or not at all
	defer prometheus.TrackDBOperation("create_order")(time.Now())
	err := db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&order).Error
	})
	if err != nil {
		log.Error("Failed to create order", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"ok": false, "error": "Failed to create order",
		})
	}

	prometheus.RecordOrderOperation("create")
	log.Info("Order created successfully",
		zap.String("order_id", order.ID),
		zap.String("number", order.Number),
		zap.Int64("total_cents", order.TotalCents))
	return c.JSON(http.StatusCreated, echo.Map{
		"ok":    true,
		"order": shapeOrderSummary(&order),
	})
}

// GetOrderByID returns an order with its items and only the most recent
// payment exposed as latestPayment.
func GetOrderByID(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var order model.Order
	err := database.GetDB().
		Preload("Items").
		Preload("Items.Variant").
		Preload("Items.Variant.Product").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at desc")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("Order not found", zap.String("order_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{
				"ok": false, "error": "Order not found",
			})
		}
		log.Error("Failed to retrieve order", zap.String("order_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"ok": false, "error": "Failed to retrieve order",
		})
	}

	shaped := shapeOrderSummary(&order)
	shaped["userId"] = order.UserID

	items := make([]echo.Map, 0, len(order.Items))
	for _, item := range order.Items {
		shapedItem := echo.Map{
			"id":             item.ID,
			"quantity":       item.Quantity,
			"unitPriceCents": item.UnitPriceCents,
			"lineTotalCents": item.LineTotalCents,
			"skuSnapshot":    item.SKUSnapshot,
			"nameSnapshot":   item.NameSnapshot,
		}
		if item.Variant != nil {
			variant := echo.Map{
				"id":         item.Variant.ID,
				"sku":        item.Variant.SKU,
				"priceCents": item.Variant.PriceCents,
				"currency":   item.Variant.Currency,
			}
			if item.Variant.Product != nil {
				variant["product"] = echo.Map{
					"id":   item.Variant.Product.ID,
					"slug": item.Variant.Product.Slug,
					"name": item.Variant.Product.Name,
				}
			}
			shapedItem["variant"] = variant
		}
		items = append(items, shapedItem)
	}
	shaped["items"] = items

	// Only the newest payment is exposed; the raw list stays internal
	if len(order.Payments) > 0 {
		p := order.Payments[0]
		shaped["latestPayment"] = echo.Map{
			"id":          p.ID,
			"amountCents": p.AmountCents,
			"currency":    p.Currency,
			"status":      p.Status,
			"createdAt":   p.CreatedAt.UTC().Format(time.RFC3339),
		}
	} else {
		shaped["latestPayment"] = nil
	}

	return c.JSON(http.StatusOK, echo.Map{"ok": true, "order": shaped})
}

// GetOrdersByUser returns a user's orders newest-first with either offset or
// cursor pagination. Each row embeds its simplified snapshot items.
func GetOrdersByUser(c echo.Context) error {
	log := logger.FromContext(c)
	userID := c.Param("id")

	limit := defaultOrderLimit
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 && v <= maxOrderLimit {
		limit = v
	}
	cursor := c.QueryParam("cursor")

	db := database.GetDB()
	query := db.Model(&model.Order{}).
		Where("user_id = ?", userID).
		Order("placed_at desc, id desc").
		Limit(limit).
		Preload("Items")

	if cursor != "" {
		var after model.Order
		if err := db.Select("id, placed_at").Where("id = ?", cursor).First(&after).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.JSON(http.StatusBadRequest, echo.Map{
					"ok": false, "error": "Invalid cursor",
				})
			}
			log.Error("Failed to resolve cursor", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"ok": false, "error": "Failed to retrieve orders",
			})
		}
		// Rows strictly after the cursor row in (placed_at desc, id desc) order
		query = query.Where(
			"placed_at < ? OR (placed_at = ? AND id < ?)",
			after.PlacedAt, after.PlacedAt, after.ID,
		)
	} else {
		skip := 0
		if v, err := strconv.Atoi(c.QueryParam("skip")); err == nil && v >= 0 {
			skip = v
		}
		query = query.Offset(skip)
	}

	var orders []model.Order
	if err := query.Find(&orders).Error; err != nil {
		log.Error("Failed to list orders", zap.String("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"ok": false, "error": "Failed to retrieve orders",
		})
	}

	items := make([]echo.Map, 0, len(orders))
	for i := range orders {
		row := shapeOrderSummary(&orders[i])
		row["items"] = shapeSnapshotItems(orders[i].Items)
		items = append(items, row)
	}

	if cursor != "" {
		// A full page implies more rows may follow
		var nextCursor interface{}
		if len(orders) == limit {
			nextCursor = orders[len(orders)-1].ID
		}
		return c.JSON(http.StatusOK, echo.Map{
			"ok": true, "items": items, "nextCursor": nextCursor,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"ok": true, "items": items, "count": len(items), "nextCursor": nil,
	})
}

// shapeOrderSummary returns the created-order summary fields shared by every
// order-shaped response.
func shapeOrderSummary(o *model.Order) echo.Map {
	return echo.Map{
		"id":            o.ID,
		"number":        o.Number,
		"status":        o.Status,
		"currency":      o.Currency,
		"subtotalCents": o.SubtotalCents,
		"taxCents":      o.TaxCents,
		"shippingCents": o.ShippingCents,
		"discountCents": o.DiscountCents,
		"totalCents":    o.TotalCents,
		"paymentStatus": o.PaymentStatus,
		"placedAt":      o.PlacedAt.UTC().Format(time.RFC3339),
	}
}

func shapeSnapshotItems(items []model.OrderItem) []echo.Map {
	shaped := make([]echo.Map, 0, len(items))
	for _, item := range items {
		shaped = append(shaped, echo.Map{
			"nameSnapshot":   item.NameSnapshot,
			"skuSnapshot":    item.SKUSnapshot,
			"quantity":       item.Quantity,
			"unitPriceCents": item.UnitPriceCents,
		})
	}
	return shaped
}

// newOrderNumber is deterministically unique per creation instant and
// truncated to the column width.
func newOrderNumber() string {
	number := fmt.Sprintf("ORD-%d", time.Now().UnixMilli())
	if len(number) > orderNumberMaxLen {
		number = number[:orderNumberMaxLen]
	}
	return number
}
