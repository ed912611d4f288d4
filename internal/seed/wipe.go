package seed

import (
	"storefront-service/internal/model"

	"gorm.io/gorm"
)

// WipeDemoData deletes every row flagged as demo data, children before
// parents, in a single transaction. Catalog rows are seed-owned and left in
// place; reseeding upserts them.
func WipeDemoData(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var demoOrderIDs []string
		if err := tx.Model(&model.Order{}).
			Where("is_demo = ?", true).
			Pluck("id", &demoOrderIDs).Error; err != nil {
			return err
		}
		if len(demoOrderIDs) > 0 {
			if err := tx.Where("order_id IN ?", demoOrderIDs).
				Delete(&model.OrderItem{}).Error; err != nil {
				return err
			}
			if err := tx.Where("order_id IN ?", demoOrderIDs).
				Delete(&model.Payment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", demoOrderIDs).
				Delete(&model.Order{}).Error; err != nil {
				return err
			}
		}

		var demoUserIDs []string
		if err := tx.Model(&model.User{}).
			Where("is_demo = ?", true).
			Pluck("id", &demoUserIDs).Error; err != nil {
			return err
		}
		if len(demoUserIDs) > 0 {
			var wishlistIDs []string
			if err := tx.Model(&model.Wishlist{}).
				Where("user_id IN ?", demoUserIDs).
				Pluck("id", &wishlistIDs).Error; err != nil {
				return err
			}
			if len(wishlistIDs) > 0 {
				if err := tx.Where("wishlist_id IN ?", wishlistIDs).
					Delete(&model.WishlistItem{}).Error; err != nil {
					return err
				}
				if err := tx.Where("id IN ?", wishlistIDs).
					Delete(&model.Wishlist{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Where("user_id IN ?", demoUserIDs).
				Delete(&model.Address{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", demoUserIDs).
				Delete(&model.User{}).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
