package common

import (
	"fmt"
	"time"

	"boxoffice/src/db"
	"boxoffice/src/models"
	"boxoffice/src/types"
	"boxoffice/src/utils"

	"gorm.io/gorm"
)

// The catalog is owned by an external service; these helpers are the
// read-only boundary the engine consumes, plus a seeding path for local
// environments and tests.

func ListEvents() ([]models.Event, error) {
	dbi := db.GetDb()
	var events []models.Event
	err := dbi.Order("starts_at").Find(&events).Error
	return events, err
}

func GetEventPools(eventID uint) ([]models.SeatPool, error) {
	dbi := db.GetDb()
	var event models.Event
	if err := dbi.First(&event, eventID).Error; err != nil {
		return nil, err
	}
	var pools []models.SeatPool
	err := dbi.Where(&models.SeatPool{EventID: eventID}).Order("price DESC").Find(&pools).Error
	return pools, err
}

// SeedPool creates an event tier with an explicit seat grid: rows x columns
// seats in one section, all available. Returns the pool with seats loaded.
func SeedPool(eventTitle, tier string, price float32, section string, rows, columns uint, startsAt time.Time) (*models.SeatPool, error) {
	dbi := db.GetDb()
	var pool models.SeatPool
	err := dbi.Transaction(func(tx *gorm.DB) error {
		event := models.Event{
			Title:    eventTitle,
			Slug:     fmt.Sprintf("%s-%d", utils.EventSlug(eventTitle), time.Now().UnixNano()),
			StartsAt: startsAt,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		total := rows * columns
		pool = models.SeatPool{
			EventID:        event.ID,
			Tier:           tier,
			Price:          price,
			Currency:       "usd",
			TotalSeats:     total,
			AvailableSeats: total,
		}
		if err := tx.Create(&pool).Error; err != nil {
			return err
		}
		seats := make([]models.Seat, 0, total)
		for r := uint(1); r <= rows; r++ {
			for c := uint(1); c <= columns; c++ {
				seats = append(seats, models.Seat{
					PoolID:  pool.ID,
					Section: section,
					Row:     r,
					Column:  c,
					Status:  types.SEAT_AVAILABLE,
				})
			}
		}
		if err := tx.Create(&seats).Error; err != nil {
			return err
		}
		pool.Seats = seats
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &pool, nil
}
