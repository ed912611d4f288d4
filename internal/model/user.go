package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a shopper identity. IsDemo marks rows owned by the demo seeder so
// they can be wiped in bulk without touching real customer data.
type User struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	IsDemo    bool      `json:"is_demo" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Address is a user's postal address. At most one default shipping address per
// user, maintained by find-or-create discipline at write time rather than a
// uniqueness constraint.
type Address struct {
	ID                string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID            string    `json:"user_id" gorm:"type:varchar(36);index;not null"`
	Line1             string    `json:"line1" gorm:"type:varchar(255);not null"`
	City              string    `json:"city" gorm:"type:varchar(100)"`
	Region            string    `json:"region" gorm:"type:varchar(100)"`
	PostalCode        string    `json:"postal_code" gorm:"type:varchar(20)"`
	Country           string    `json:"country" gorm:"type:varchar(2)"`
	IsDefaultShipping bool      `json:"is_default_shipping" gorm:"default:false"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (a *Address) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Wishlist is 1:1 with a user
type Wishlist struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (w *Wishlist) BeforeCreate(*gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// WishlistItem references a variant; price is always read live from the
// variant, never snapshotted.
type WishlistItem struct {
	ID         string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	WishlistID string          `json:"wishlist_id" gorm:"type:varchar(36);index;not null"`
	VariantID  string          `json:"variant_id" gorm:"type:varchar(36);not null"`
	Variant    *ProductVariant `json:"variant,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

func (i *WishlistItem) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
