package common

import (
	"errors"
	"log"
	"time"

	"boxoffice/src/db"
	"boxoffice/src/lib"
	"boxoffice/src/models"
	"boxoffice/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateHold places a time-boxed exclusive hold on seats in one pool. The
// selector is either explicit seat ids or a quantity; quantities resolve to
// the lowest section/row/column seats first so the choice is deterministic.
// Reservation is all-or-nothing: on any conflict nothing stays locked and the
// returned ConflictError names the seats that were unavailable.
func CreateHold(userID uint, poolID uint, selector types.SeatSelector, ttl time.Duration) (*models.Hold, error) {
	now := time.Now()
	hold := models.Hold{
		ID:        uuid.New(),
		UserID:    userID,
		PoolID:    poolID,
		Status:    types.HOLD_ACTIVE,
		ExpiresAt: now.Add(ttl),
	}
	dbi := db.GetDb()
	err := dbi.Transaction(func(tx *gorm.DB) error {
		var pool models.SeatPool
		if err := tx.First(&pool, poolID).Error; err != nil {
			return err
		}
		seatIDs, err := resolveSelector(tx, poolID, selector)
		if err != nil {
			return err
		}
		if err := tx.Create(&hold).Error; err != nil {
			return err
		}
		if err := TryReserve(tx, poolID, seatIDs, hold.ID); err != nil {
			return err
		}
		return tx.Where(&models.Seat{PoolID: poolID}).Where("hold_id = ?", hold.ID).Find(&hold.Seats).Error
	})
	if err != nil {
		return nil, err
	}
	go lib.KafkaProduceMessage(types.TOPIC_HOLDS_CREATED, map[string]any{
		"hold_id":    hold.ID.String(),
		"pool_id":    poolID,
		"user_id":    userID,
		"seats":      len(hold.Seats),
		"expires_at": hold.ExpiresAt,
	})
	return &hold, nil
}

// resolveSelector turns the request into concrete seat ids before the atomic
// reservation step. A quantity that cannot be satisfied is a conflict with no
// specific seats to name.
func resolveSelector(tx *gorm.DB, poolID uint, selector types.SeatSelector) ([]uint, error) {
	if selector.Explicit() {
		if selector.Quantity > 0 {
			return nil, types.ErrSelectorRequired
		}
		return selector.SeatIDs, nil
	}
	if selector.Quantity < 1 {
		return nil, types.ErrSelectorRequired
	}
	var ids []uint
	err := tx.
		Model(&models.Seat{}).
		Where("pool_id = ? AND status = ?", poolID, types.SEAT_AVAILABLE).
		Order(`section, row, "column"`).
		Limit(int(selector.Quantity)).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	if uint(len(ids)) < selector.Quantity {
		return nil, &types.ConflictError{PoolID: poolID}
	}
	return ids, nil
}

// ConfirmHold performs the one-way ACTIVE -> CONFIRMED transition inside the
// caller's transaction. The status-and-expiry guarded UPDATE is the CAS that
// decides the race against the reaper: whichever side flips the row first
// wins, the loser gets zero rows and a typed error.
func ConfirmHold(tx *gorm.DB, holdID uuid.UUID, now time.Time) error {
	res := tx.
		Model(&models.Hold{}).
		Where("id = ? AND status = ? AND expires_at > ?", holdID, types.HOLD_ACTIVE, now).
		Update("status", types.HOLD_CONFIRMED)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}
	var hold models.Hold
	if err := tx.Where("id = ?", holdID).First(&hold).Error; err != nil {
		return err
	}
	if hold.Status.Terminal() {
		return &types.AlreadyTerminalError{Resource: "hold", ID: holdID.String(), Status: string(hold.Status)}
	}
	return &types.HoldExpiredError{HoldID: holdID.String()}
}

// ReleaseHold returns a hold's seats to the pool. Idempotent: releasing an
// already-terminal hold is a no-op.
func ReleaseHold(holdID uuid.UUID, reason string) error {
	dbi := db.GetDb()
	return dbi.Transaction(func(tx *gorm.DB) error {
		var hold models.Hold
		if err := tx.Where("id = ?", holdID).First(&hold).Error; err != nil {
			return err
		}
		res := tx.
			Model(&models.Hold{}).
			Where("id = ? AND status = ?", holdID, types.HOLD_ACTIVE).
			Updates(map[string]any{"status": types.HOLD_RELEASED, "reason": reason})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if _, err := ReleaseSeats(tx, hold.PoolID, holdID); err != nil {
			return err
		}
		return expirePendingOrder(tx, holdID)
	})
}

// ReapExpired sweeps ACTIVE holds whose expiry has passed, transitions each
// to EXPIRED and releases its seats. Each hold is its own transaction guarded
// by the same status CAS as ConfirmHold, so the sweep is safe to run on a
// schedule, concurrently with itself and with in-flight confirmations. A bad
// hold is logged and skipped, never halting the rest of the sweep.
func ReapExpired() int {
	dbi := db.GetDb()
	now := time.Now()
	var expired []models.Hold
	if err := dbi.
		Select("id", "pool_id").
		Where("status = ? AND expires_at <= ?", types.HOLD_ACTIVE, now).
		Find(&expired).Error; err != nil {
		log.Printf("[reaper] Error querying expired holds: %s\n", err.Error())
		return 0
	}
	reaped := 0
	for _, hold := range expired {
		won := false
		err := dbi.Transaction(func(tx *gorm.DB) error {
			res := tx.
				Model(&models.Hold{}).
				Where("id = ? AND status = ? AND expires_at <= ?", hold.ID, types.HOLD_ACTIVE, now).
				Update("status", types.HOLD_EXPIRED)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// lost the CAS to a confirm or release; nothing to do
				return nil
			}
			won = true
			if _, err := ReleaseSeats(tx, hold.PoolID, hold.ID); err != nil {
				return err
			}
			return expirePendingOrder(tx, hold.ID)
		})
		if err != nil {
			log.Printf("[reaper] Error reaping hold %s: %s\n", hold.ID, err.Error())
			continue
		}
		if won {
			reaped++
		}
	}
	if reaped > 0 {
		log.Printf("[reaper] Released %d expired hold(s)\n", reaped)
	}
	return reaped
}

// GetHold loads a hold with its seats, scoped to the owning user.
func GetHold(userID uint, holdID uuid.UUID) (*models.Hold, error) {
	dbi := db.GetDb()
	var hold models.Hold
	err := dbi.
		Where("id = ?", holdID).
		Preload("Seats").
		First(&hold).Error
	if err != nil {
		return nil, err
	}
	if hold.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return &hold, nil
}

// expirePendingOrder parks any order still waiting on payment for a hold that
// just went terminal without confirmation.
func expirePendingOrder(tx *gorm.DB, holdID uuid.UUID) error {
	err := tx.
		Model(&models.Order{}).
		Where("hold_id = ? AND status = ?", holdID, types.ORDER_PENDING_PAYMENT).
		Update("status", types.ORDER_EXPIRED).
		Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}
