package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	valueString, err := json.Marshal(m)
	return string(valueString), err
}
func (m *Metadata) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(b, m)
}

// SeatSelector is the tagged selector a client sends when asking for a hold:
// either an explicit list of seat ids or a bare quantity, never both. Quantity
// selectors are resolved to concrete seat ids inside the hold manager before
// the atomic reservation step.
type SeatSelector struct {
	SeatIDs  []uint `json:"seat_ids,omitempty"`
	Quantity uint   `json:"quantity,omitempty"`
}

func (s SeatSelector) Explicit() bool {
	return len(s.SeatIDs) > 0
}

type CreateHoldRequestBody struct {
	PoolID     uint   `json:"pool_id" binding:"required"`
	SeatIDs    []uint `json:"seat_ids,omitempty"`
	Quantity   uint   `json:"quantity,omitempty"`
	TTLSeconds *uint  `json:"ttl_seconds,omitempty"`
}

func (b CreateHoldRequestBody) Selector() SeatSelector {
	return SeatSelector{SeatIDs: b.SeatIDs, Quantity: b.Quantity}
}

type ReleaseHoldRequestBody struct {
	Reason string `json:"reason,omitempty"`
}

type CheckoutRequestBody struct {
	HoldID string `json:"hold_id" binding:"required,uuid"`
}

type UpsertCartItemRequestBody struct {
	ItemID   string `json:"item_id,omitempty" binding:"omitempty,uuid"`
	PoolID   uint   `json:"pool_id" binding:"required"`
	SeatIDs  []uint `json:"seat_ids,omitempty"`
	Quantity uint   `json:"quantity,omitempty"`
}

type ScanTicketRequestBody struct {
	Code string `json:"code" binding:"required"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type UUIDRequestParams struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// CartItem lives in Redis only. The cart stages a user's selections before a
// hold is attempted and never locks anything.
type CartItem struct {
	ID       string `json:"id"`
	PoolID   uint   `json:"pool_id"`
	SeatIDs  []uint `json:"seat_ids,omitempty"`
	Quantity uint   `json:"quantity,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PoolSnapshot is the read view of one seat pool: totals plus the state of
// every addressable seat.
type PoolSnapshot struct {
	PoolID     uint            `json:"pool_id"`
	Total      uint            `json:"total"`
	Available  uint            `json:"available"`
	SeatStates []SeatStateView `json:"seat_states"`
}

type SeatStateView struct {
	SeatID  uint   `json:"seat_id"`
	Section string `json:"section"`
	Row     uint   `json:"row"`
	Column  uint   `json:"column"`
	Status  string `json:"status"`
}

// CheckoutResult reports the outcome of converting one cart pool group into a
// hold. Conflicting pools keep their items in the cart so the user can retry.
type CheckoutResult struct {
	PoolID        uint   `json:"pool_id"`
	HoldID        string `json:"hold_id,omitempty"`
	ConflictSeats []uint `json:"conflict_seats,omitempty"`
	Error         string `json:"error,omitempty"`
}
