package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/quotes3d-backend/pkg/enums"
)

// Quote is the immutable priced aggregate. Prices are frozen at creation;
// a revision never mutates the original row, it writes a new quote and
// stamps superseded_by here.
type Quote struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Currency      string             `gorm:"column:currency;type:text;not null;default:'USD'"`
	SubtotalCents int64              `gorm:"column:subtotal_cents;not null"`
	ShippingSize  enums.ShippingSize `gorm:"column:shipping_size;type:text;not null"`
	ShippingCents int64              `gorm:"column:shipping_cents;not null"`
	TotalCents    int64              `gorm:"column:total_cents;not null"`
	FlooredToMin  bool               `gorm:"column:floored_to_min;not null;default:false"`
	SupersededBy  *uuid.UUID         `gorm:"column:superseded_by;type:uuid"`
	RevisedFrom   *uuid.UUID         `gorm:"column:revised_from;type:uuid"`
	LineItems     []QuoteLineItem    `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	ExpiresAt     time.Time          `gorm:"column:expires_at;not null"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
}

// StatusAt derives the lifecycle status for a read at the given instant.
// Status is never stored; supersession wins over expiry.
func (q *Quote) StatusAt(now time.Time) enums.QuoteStatus {
	if q.SupersededBy != nil {
		return enums.QuoteStatusSuperseded
	}
	if now.After(q.ExpiresAt) {
		return enums.QuoteStatusExpired
	}
	return enums.QuoteStatusPriced
}
