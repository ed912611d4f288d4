package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups products for storefront navigation
type Category struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Slug      string    `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`
	Sort      int       `json:"sort" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Product represents the product master data
type Product struct {
	ID          string           `json:"id" gorm:"type:varchar(36);primaryKey"`
	Slug        string           `json:"slug" gorm:"type:varchar(100);uniqueIndex;not null"`
	Name        string           `json:"name" gorm:"type:varchar(255);not null"`
	Description string           `json:"description" gorm:"type:text"`
	Active      bool             `json:"active" gorm:"default:true"`
	CategoryID  string           `json:"category_id" gorm:"type:varchar(36);index;not null"`
	Category    *Category        `json:"category,omitempty"`
	Variants    []ProductVariant `json:"variants,omitempty"`
	Assets      []Asset          `json:"assets,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// ProductVariant is a purchasable SKU of a product with its own price and stock.
// PriceCents is in minor currency units; once an order snapshots it the order
// item keeps the historical value.
type ProductVariant struct {
	ID         string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	SKU        string    `json:"sku" gorm:"type:varchar(100);uniqueIndex;not null"`
	PriceCents int64     `json:"price_cents" gorm:"not null"`
	Currency   string    `json:"currency" gorm:"type:varchar(3);not null"`
	StockQty   int       `json:"stock_qty" gorm:"default:0"`
	Active     bool      `json:"active" gorm:"default:true"`
	ProductID  string    `json:"product_id" gorm:"type:varchar(36);index;not null"`
	Product    *Product  `json:"product,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (v *ProductVariant) BeforeCreate(*gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// Asset is a product image or other media, ordered by Sort for display
type Asset struct {
	ID        string `json:"id" gorm:"type:varchar(36);primaryKey"`
	URL       string `json:"url" gorm:"type:varchar(500);not null"`
	Kind      string `json:"kind" gorm:"type:varchar(50);not null"`
	Sort      int    `json:"sort" gorm:"default:0"`
	ProductID string `json:"product_id" gorm:"type:varchar(36);index;not null"`
}

func (a *Asset) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
