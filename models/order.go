package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GatewayID is the payment method identifier orders carry when they were paid
// through PaysonCheckout.
const GatewayID = "paysoncheckout"

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

type Order struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	CartKey       string         `gorm:"index" json:"cart_key,omitempty"`
	Status        string         `gorm:"index" json:"status"`
	PaymentMethod string         `gorm:"index" json:"payment_method"`
	Currency      string         `json:"currency"`
	TransactionID string         `gorm:"index" json:"transaction_id,omitempty"` // Payson checkout id

	Items         []OrderItem    `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	ShippingLines []ShippingLine `gorm:"constraint:OnDelete:CASCADE" json:"shipping_lines"`
	Fees          []FeeLine      `gorm:"constraint:OnDelete:CASCADE" json:"fees"`
	Meta          []OrderMeta    `gorm:"constraint:OnDelete:CASCADE" json:"meta,omitempty"`
	Notes         []OrderNote    `gorm:"constraint:OnDelete:CASCADE" json:"notes,omitempty"`
}

// OrderItem is a product line of a placed order. Totals are tax exclusive and
// cover the whole line, not a single unit.
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"index" json:"order_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `gorm:"type:numeric" json:"line_total"`
	LineTax   decimal.Decimal `gorm:"type:numeric" json:"line_tax"`
	Product   Product         `gorm:"embedded;embeddedPrefix:product_" json:"product"`
}

type ShippingLine struct {
	ID      uint                                 `gorm:"primaryKey" json:"id"`
	OrderID uint                                 `gorm:"index" json:"order_id"`
	Name    string                               `json:"name"`
	Cost    decimal.Decimal                      `gorm:"type:numeric" json:"cost"`
	Taxes   datatypes.JSONSlice[decimal.Decimal] `json:"taxes"` // one entry per tax rate
}

// TotalTax sums the per-rate taxes of the shipping line.
func (s ShippingLine) TotalTax() decimal.Decimal {
	return decimal.Sum(decimal.Zero, s.Taxes...)
}

type FeeLine struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"index" json:"order_id"`
	Name      string          `json:"name"`
	LineTotal decimal.Decimal `gorm:"type:numeric" json:"line_total"`
	LineTax   decimal.Decimal `gorm:"type:numeric" json:"line_tax"`
}

// ShippingTotal is the tax exclusive sum of all shipping lines.
func (o *Order) ShippingTotal() decimal.Decimal {
	total := decimal.Zero
	for _, s := range o.ShippingLines {
		total = total.Add(s.Cost)
	}
	return total
}

// MetaValue returns the value stored under key, if the order was loaded with
// its metadata.
func (o *Order) MetaValue(key string) (string, bool) {
	for _, m := range o.Meta {
		if m.Key == key {
			return m.Value, true
		}
	}
	return "", false
}
