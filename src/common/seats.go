package common

import (
	"boxoffice/src/db"
	"boxoffice/src/models"
	"boxoffice/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetPoolSnapshot returns the pool totals and the state of every seat,
// ordered by section/row/column.
func GetPoolSnapshot(poolID uint) (*types.PoolSnapshot, error) {
	db := db.GetDb()
	var pool models.SeatPool
	if err := db.First(&pool, poolID).Error; err != nil {
		return nil, err
	}
	var seats []models.Seat
	if err := db.
		Where(&models.Seat{PoolID: poolID}).
		Order(`section, row, "column"`).
		Find(&seats).Error; err != nil {
		return nil, err
	}
	snapshot := types.PoolSnapshot{
		PoolID:     pool.ID,
		Total:      pool.TotalSeats,
		Available:  pool.AvailableSeats,
		SeatStates: make([]types.SeatStateView, 0, len(seats)),
	}
	for _, s := range seats {
		snapshot.SeatStates = append(snapshot.SeatStates, types.SeatStateView{
			SeatID:  s.ID,
			Section: s.Section,
			Row:     s.Row,
			Column:  s.Column,
			Status:  string(s.Status),
		})
	}
	return &snapshot, nil
}

// TryReserve moves the requested seats available -> held for holdID, all or
// nothing. It must run inside the caller's transaction: the guarded UPDATE
// claims only seats still available, and when fewer rows than requested were
// claimed the returned ConflictError makes the caller roll everything back.
func TryReserve(tx *gorm.DB, poolID uint, seatIDs []uint, holdID uuid.UUID) error {
	res := tx.
		Model(&models.Seat{}).
		Where("pool_id = ? AND id IN ? AND status = ?", poolID, seatIDs, types.SEAT_AVAILABLE).
		Updates(map[string]any{"status": types.SEAT_HELD, "hold_id": holdID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != int64(len(seatIDs)) {
		var claimed []uint
		if err := tx.
			Model(&models.Seat{}).
			Where("pool_id = ? AND hold_id = ?", poolID, holdID).
			Pluck("id", &claimed).Error; err != nil {
			return err
		}
		return &types.ConflictError{PoolID: poolID, Seats: diffIDs(seatIDs, claimed)}
	}
	return tx.
		Model(&models.SeatPool{}).
		Where("id = ?", poolID).
		UpdateColumn("available_seats", gorm.Expr("available_seats - ?", len(seatIDs))).
		Error
}

// ReleaseSeats returns a hold's seats to the pool (held -> available) and
// restores the availability counter. Sold seats are untouched.
func ReleaseSeats(tx *gorm.DB, poolID uint, holdID uuid.UUID) (int64, error) {
	res := tx.
		Model(&models.Seat{}).
		Where("hold_id = ? AND status = ?", holdID, types.SEAT_HELD).
		Updates(map[string]any{"status": types.SEAT_AVAILABLE, "hold_id": nil})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, nil
	}
	err := tx.
		Model(&models.SeatPool{}).
		Where("id = ?", poolID).
		UpdateColumn("available_seats", gorm.Expr("available_seats + ?", res.RowsAffected)).
		Error
	return res.RowsAffected, err
}

// MarkSold flips a confirmed hold's seats held -> sold. The availability
// counter was already decremented at reservation time, so only the per-seat
// state moves here. The hold reference stays on the row as provenance.
func MarkSold(tx *gorm.DB, holdID uuid.UUID) (int64, error) {
	res := tx.
		Model(&models.Seat{}).
		Where("hold_id = ? AND status = ?", holdID, types.SEAT_HELD).
		Update("status", types.SEAT_SOLD)
	return res.RowsAffected, res.Error
}

func diffIDs(requested, claimed []uint) []uint {
	have := make(map[uint]bool, len(claimed))
	for _, id := range claimed {
		have[id] = true
	}
	missing := make([]uint, 0, len(requested))
	for _, id := range requested {
		if !have[id] {
			missing = append(missing, id)
		}
	}
	return missing
}
