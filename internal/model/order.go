package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order lifecycle states written by this service. Other states (cancelled,
// fulfilled) exist in the vocabulary but are set by other tooling.
const (
	OrderStatusProcessing = "processing"
	OrderStatusPaid       = "paid"

	OrderPaymentStatusUnpaid = "unpaid"
	OrderPaymentStatusPaid   = "paid"
)

// Payment provider statuses mapped onto the local four-state vocabulary
const (
	PaymentStatusSucceeded      = "succeeded"
	PaymentStatusProcessing     = "processing"
	PaymentStatusCanceled       = "canceled"
	PaymentStatusRequiresAction = "requires_action"
)

// Order is a placed order with snapshotted totals in minor currency units.
// TotalCents == SubtotalCents + TaxCents + ShippingCents - DiscountCents.
type Order struct {
	ID                string      `json:"id" gorm:"type:varchar(36);primaryKey"`
	Number            string      `json:"number" gorm:"type:varchar(20);uniqueIndex;not null"`
	UserID            string      `json:"user_id" gorm:"type:varchar(36);index;not null"`
	Status            string      `json:"status" gorm:"type:varchar(20);not null"`
	PaymentStatus     string      `json:"payment_status" gorm:"type:varchar(20);not null;default:unpaid"`
	Currency          string      `json:"currency" gorm:"type:varchar(3);not null"`
	SubtotalCents     int64       `json:"subtotal_cents" gorm:"not null"`
	TaxCents          int64       `json:"tax_cents" gorm:"default:0"`
	ShippingCents     int64       `json:"shipping_cents" gorm:"default:0"`
	DiscountCents     int64       `json:"discount_cents" gorm:"default:0"`
	TotalCents        int64       `json:"total_cents" gorm:"not null"`
	IsDemo            bool        `json:"is_demo" gorm:"default:false"`
	PlacedAt          time.Time   `json:"placed_at" gorm:"index"`
	ShippingAddressID *string     `json:"shipping_address_id" gorm:"type:varchar(36)"`
	BillingAddressID  *string     `json:"billing_address_id" gorm:"type:varchar(36)"`
	Items             []OrderItem `json:"items,omitempty"`
	Payments          []Payment   `json:"payments,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// OrderItem is a line of an order. The *Snapshot fields and UnitPriceCents are
// copied from the product/variant at order time and never track later changes.
type OrderItem struct {
	ID             string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	OrderID        string          `json:"order_id" gorm:"type:varchar(36);index;not null"`
	ProductID      string          `json:"product_id" gorm:"type:varchar(36);not null"`
	VariantID      string          `json:"variant_id" gorm:"type:varchar(36);not null"`
	Variant        *ProductVariant `json:"variant,omitempty"`
	NameSnapshot   string          `json:"name_snapshot" gorm:"type:varchar(255);not null"`
	SKUSnapshot    string          `json:"sku_snapshot" gorm:"type:varchar(100);not null"`
	Quantity       int             `json:"quantity" gorm:"not null"`
	UnitPriceCents int64           `json:"unit_price_cents" gorm:"not null"`
	LineTotalCents int64           `json:"line_total_cents" gorm:"not null"`
	Currency       string          `json:"currency" gorm:"type:varchar(3);not null"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Payment is a provider transaction attached to an order. The provider intent
// id is globally unique, which makes attachment an idempotent upsert.
type Payment struct {
	ID                    string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	OrderID               string    `json:"order_id" gorm:"type:varchar(36);index;not null"`
	StripePaymentIntentID string    `json:"stripe_payment_intent_id" gorm:"type:varchar(255);uniqueIndex;not null"`
	AmountCents           int64     `json:"amount_cents" gorm:"not null"`
	Currency              string    `json:"currency" gorm:"type:varchar(3);not null"`
	Status                string    `json:"status" gorm:"type:varchar(20);not null"`
	ClientSecret          *string   `json:"client_secret,omitempty" gorm:"type:varchar(255)"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
