package types

import (
	"errors"
	"fmt"
)

// ConflictError reports the exact seats that blocked a reservation attempt.
// Nothing was locked: reservation is all-or-nothing, so the caller can retry
// with different seats without any cleanup.
type ConflictError struct {
	PoolID uint
	Seats  []uint
}

func (e *ConflictError) Error() string {
	if len(e.Seats) == 0 {
		return fmt.Sprintf("pool %d has no seats left for the requested quantity", e.PoolID)
	}
	return fmt.Sprintf("seats no longer available in pool %d: %v", e.PoolID, e.Seats)
}

// HoldExpiredError means the hold's TTL lapsed before the operation. The user
// has to restart seat selection.
type HoldExpiredError struct {
	HoldID string
}

func (e *HoldExpiredError) Error() string {
	return fmt.Sprintf("hold %s has expired", e.HoldID)
}

// AlreadyTerminalError guards one-way state transitions: the hold or ticket is
// already confirmed, expired, released or used and cannot move again.
type AlreadyTerminalError struct {
	Resource string
	ID       string
	Status   string
}

func (e *AlreadyTerminalError) Error() string {
	return fmt.Sprintf("%s %s is already %s", e.Resource, e.ID, e.Status)
}

// PaymentFailedError wraps a provider-side failure. The hold is released
// immediately so the seats return to the pool before the natural expiry.
type PaymentFailedError struct {
	PaymentIntentID string
}

func (e *PaymentFailedError) Error() string {
	return fmt.Sprintf("payment %s failed", e.PaymentIntentID)
}

// PostPaymentHoldLostError is the one non-recoverable case: the payment was
// captured but the hold was reaped before confirmation, so the seats are gone.
// It must reach the operator refund queue, never be swallowed.
type PostPaymentHoldLostError struct {
	OrderID         string
	PaymentIntentID string
}

func (e *PostPaymentHoldLostError) Error() string {
	return fmt.Sprintf("order %s: payment %s captured but hold was lost; flag for manual refund", e.OrderID, e.PaymentIntentID)
}

var ErrSelectorRequired = errors.New("either seat_ids or quantity must be provided, not both")
