package models

import (
	"boxoffice/src/types"

	"github.com/google/uuid"
)

// Seat belongs to exactly one pool and carries the only mutable state the
// engine guards: available -> held -> sold, with held -> available on release.
// HoldID points at the active hold while held and is kept on sold seats as a
// provenance trail.
type Seat struct {
	ID      uint             `gorm:"primarykey" json:"id"`
	PoolID  uint             `gorm:"index" json:"pool_id"`
	Section string           `json:"section"`
	Row     uint             `json:"row"`
	Column  uint             `json:"column"`
	Status  types.SeatStatus `gorm:"default:'available';index" json:"status"`
	HoldID  *uuid.UUID       `gorm:"type:uuid;index" json:"hold_id,omitempty"`

	Pool *SeatPool `json:"pool,omitempty"`

	types.Timestamps
}
