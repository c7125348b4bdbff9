package models

import "time"

// Order metadata keys written by the gateway.
const (
	MetaReservationCaptured = "_paysoncheckout_reservation_captured"
	MetaOrderStatus         = "_paysoncheckout_order_status"
)

// MetaTimeLayout is the layout of timestamps stored as order metadata.
const MetaTimeLayout = "2006-01-02 15:04:05"

type OrderMeta struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	OrderID   uint      `gorm:"uniqueIndex:idx_order_meta_key" json:"-"`
	Key       string    `gorm:"column:meta_key;uniqueIndex:idx_order_meta_key;size:191" json:"key"`
	Value     string    `gorm:"column:meta_value" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrderNote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"index" json:"-"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
