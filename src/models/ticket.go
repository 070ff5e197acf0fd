package models

import (
	"boxoffice/src/types"

	"github.com/google/uuid"
)

// Ticket is minted once per sold seat when its order transitions to paid.
// Immutable except for the valid -> used/void scan transition. PricePaid is
// the pool price at hold time, never a live-repriced value.
type Ticket struct {
	ID        uint               `gorm:"primarykey" json:"id"`
	OrderID   uuid.UUID          `gorm:"type:uuid;index" json:"order_id"`
	SeatID    uint               `gorm:"uniqueIndex" json:"seat_id"`
	PricePaid float32            `json:"price_paid"`
	Code      string             `gorm:"uniqueIndex" json:"code"`
	Status    types.TicketStatus `gorm:"default:'valid'" json:"status"`

	Order *Order `json:"order,omitempty"`
	Seat  *Seat  `json:"seat,omitempty"`

	types.Timestamps
}
