package models

import "boxoffice/src/types"

// SeatPool is one priced tier of seats for an event (a bulk ticket). The
// catalog owns the metadata; the core mutates only AvailableSeats, and only
// inside the same transaction that moves the per-seat rows.
type SeatPool struct {
	ID             uint    `gorm:"primarykey" json:"id"`
	EventID        uint    `json:"event_id"`
	Tier           string  `json:"tier"`
	Price          float32 `json:"price"`
	Currency       string  `gorm:"default:'usd'" json:"currency"`
	TotalSeats     uint    `json:"total_seats"`
	AvailableSeats uint    `json:"available_seats"`

	Event *Event `json:"event,omitempty"`
	Seats []Seat `gorm:"foreignKey:PoolID" json:"seats,omitempty"`

	types.Timestamps
}
