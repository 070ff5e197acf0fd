package models

import (
	"boxoffice/src/types"

	"github.com/google/uuid"
)

// Order binds one confirmed hold to one payment intent. Exactly one order per
// hold (unique index), append-only once paid.
type Order struct {
	ID              uuid.UUID         `gorm:"type:uuid;primarykey" json:"id"`
	HoldID          uuid.UUID         `gorm:"type:uuid;uniqueIndex" json:"hold_id"`
	UserID          uint              `gorm:"index" json:"user_id"`
	Status          types.OrderStatus `gorm:"default:'pending_payment';index" json:"status"`
	Subtotal        float32           `json:"subtotal"`
	ServiceFee      float32           `json:"service_fee"`
	Total           float32           `json:"total"`
	Currency        string            `gorm:"default:'usd'" json:"currency"`
	PaymentIntentID *string           `gorm:"index" json:"payment_intent_id,omitempty"`
	ClientSecret    *string           `json:"client_secret,omitempty"`

	Hold    *Hold    `json:"hold,omitempty"`
	Tickets []Ticket `json:"tickets,omitempty"`

	types.Timestamps
}
