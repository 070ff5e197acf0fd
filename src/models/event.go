package models

import (
	"time"

	"boxoffice/src/types"
)

// Event is catalog data: the core reads it to resolve pools and prices but
// never mutates it outside seeding.
type Event struct {
	ID       uint      `gorm:"primarykey" json:"id"`
	Title    string    `json:"title"`
	Slug     string    `gorm:"uniqueIndex" json:"slug,omitempty"`
	Venue    string    `json:"venue,omitempty"`
	StartsAt time.Time `json:"starts_at"`

	Pools []SeatPool `json:"pools,omitempty"`

	types.Timestamps
}
