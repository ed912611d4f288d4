package handler

import (
	"net/http"
	"storefront-service/internal/model"
	"storefront-service/pkg/database"
	"storefront-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Names of the two fixed demo identities created by the seeder.
var demoUserNames = []string{"Alice", "Bob"}

// GetDemoUsers looks up the fixed demo identities by name. Each is null when
// absent, independently of the other.
func GetDemoUsers(c echo.Context) error {
	log := logger.FromContext(c)

	var users []model.User
	err := database.GetDB().
		Where("is_demo = ? AND name IN ?", true, demoUserNames).
		Find(&users).Error
	if err != nil {
		log.Error("Failed to retrieve demo users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve demo users",
		})
	}

	shaped := echo.Map{"alice": nil, "bob": nil}
	for _, u := range users {
		entry := echo.Map{"id": u.ID, "name": u.Name, "email": u.Email}
		switch u.Name {
		case "Alice":
			shaped["alice"] = entry
		case "Bob":
			shaped["bob"] = entry
		}
	}
	return c.JSON(http.StatusOK, shaped)
}

// GetUserWishlist returns the user's wishlist entries flattened to the variant
// id, the product's slug/name and the variant's current price.
func GetUserWishlist(c echo.Context) error {
	log := logger.FromContext(c)
	userID := c.Param("id")

	var items []model.WishlistItem
	err := database.GetDB().
		Joins("JOIN wishlists ON wishlists.id = wishlist_items.wishlist_id").
		Where("wishlists.user_id = ?", userID).
		Preload("Variant").
		Preload("Variant.Product").
		Find(&items).Error
	if err != nil {
		log.Error("Failed to retrieve wishlist", zap.String("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve wishlist",
		})
	}

	shaped := make([]echo.Map, 0, len(items))
	for _, item := range items {
		row := echo.Map{"variantId": item.VariantID}
		if item.Variant != nil {
			// Live price, never a snapshot
			row["priceCents"] = item.Variant.PriceCents
			if item.Variant.Product != nil {
				row["product"] = echo.Map{
					"slug": item.Variant.Product.Slug,
					"name": item.Variant.Product.Name,
				}
			}
		}
		shaped = append(shaped, row)
	}

	log.Info("Wishlist retrieved successfully",
		zap.String("user_id", userID),
		zap.Int("count", len(shaped)))
	return c.JSON(http.StatusOK, shaped)
}
