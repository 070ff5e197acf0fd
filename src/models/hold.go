package models

import (
	"time"

	"boxoffice/src/types"

	"github.com/google/uuid"
)

// Hold is a time-boxed exclusive claim on a set of seats. Status transitions
// are performed with status-guarded updates so that exactly one of
// confirm/release/reap wins; terminal holds are immutable.
type Hold struct {
	ID        uuid.UUID        `gorm:"type:uuid;primarykey" json:"id"`
	UserID    uint             `gorm:"index" json:"user_id"`
	PoolID    uint             `gorm:"index" json:"pool_id"`
	Status    types.HoldStatus `gorm:"default:'active';index" json:"status"`
	ExpiresAt time.Time        `gorm:"index" json:"expires_at"`
	Reason    *string          `json:"reason,omitempty"`

	Pool  *SeatPool `json:"pool,omitempty"`
	Seats []Seat    `gorm:"foreignKey:HoldID" json:"seats,omitempty"`

	types.Timestamps
}

func (h *Hold) Expired(now time.Time) bool {
	return !h.ExpiresAt.After(now)
}
