package common

import (
	"fmt"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"boxoffice/src/db"
	"boxoffice/src/models"
	"boxoffice/src/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter atomic.Int64

// newTestDB opens a fresh in-memory database with the full schema. Each call
// gets its own namespace so tests never see each other's rows.
func newTestDB() *gorm.DB {
	dsn := fmt.Sprintf("file:engine%d?mode=memory&cache=shared", dbCounter.Add(1))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening test database", err)
	}
	inner, err := gormDB.DB()
	if err != nil {
		log.Fatalf("Error accessing inner db instance: %s", err.Error())
	}
	inner.SetMaxOpenConns(1)
	if err := gormDB.AutoMigrate(
		&models.Event{},
		&models.SeatPool{},
		&models.Seat{},
		&models.Hold{},
		&models.Order{},
		&models.Ticket{},
	); err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}
	return gormDB
}

type EngineTestSuite struct {
	suite.Suite
	DB *gorm.DB
}

func (s *EngineTestSuite) SetupTest() {
	s.DB = newTestDB()
	db.NewDB(s.DB)
}

func (s *EngineTestSuite) seedPool(rows, columns uint) *models.SeatPool {
	pool, err := SeedPool("Test Night", "REGULAR", 50, "A", rows, columns, time.Now().Add(48*time.Hour))
	s.Require().NoError(err)
	return pool
}

func (s *EngineTestSuite) seatIDs(pool *models.SeatPool, idx ...int) []uint {
	ids := make([]uint, 0, len(idx))
	for _, i := range idx {
		ids = append(ids, pool.Seats[i].ID)
	}
	return ids
}

func (s *EngineTestSuite) poolAvailable(poolID uint) uint {
	var pool models.SeatPool
	s.Require().NoError(s.DB.First(&pool, poolID).Error)
	return pool.AvailableSeats
}

func (s *EngineTestSuite) seatStatus(seatID uint) types.SeatStatus {
	var seat models.Seat
	s.Require().NoError(s.DB.First(&seat, seatID).Error)
	return seat.Status
}

func (s *EngineTestSuite) TestCreateHoldExplicitSeats() {
	pool := s.seedPool(1, 3)
	hold, err := CreateHold(1, pool.ID, types.SeatSelector{SeatIDs: s.seatIDs(pool, 0, 1)}, 10*time.Minute)
	s.Require().NoError(err)

	assert.Equal(s.T(), types.HOLD_ACTIVE, hold.Status)
	assert.Len(s.T(), hold.Seats, 2)
	assert.Equal(s.T(), uint(1), s.poolAvailable(pool.ID))
	assert.Equal(s.T(), types.SEAT_HELD, s.seatStatus(pool.Seats[0].ID))
	assert.Equal(s.T(), types.SEAT_AVAILABLE, s.seatStatus(pool.Seats[2].ID))
}

func (s *EngineTestSuite) TestAllOrNothingConflict() {
	pool := s.seedPool(1, 3)
	_, err := CreateHold(1, pool.ID, types.SeatSelector{SeatIDs: s.seatIDs(pool, 0, 1)}, 10*time.Minute)
	s.Require().NoError(err)

	// overlapping request conflicts on seat 2 and must not touch seat 3
	_, err = CreateHold(2, pool.ID, types.SeatSelector{SeatIDs: s.seatIDs(pool, 1, 2)}, 10*time.Minute)
	var conflict *types.ConflictError
	s.Require().ErrorAs(err, &conflict)
	assert.Equal(s.T(), s.seatIDs(pool, 1), conflict.Seats)
	assert.Equal(s.T(), types.SEAT_AVAILABLE, s.seatStatus(pool.Seats[2].ID))
	assert.Equal(s.T(), uint(1), s.poolAvailable(pool.ID))

	// the losing user retries with the free seat and wins
	retry, err := CreateHold(2, pool.ID, types.SeatSelector{SeatIDs: s.seatIDs(pool, 2)}, 10*time.Minute)
	s.Require().NoError(err)
	assert.Len(s.T(), retry.Seats, 1)
	assert.Equal(s.T(), uint(0), s.poolAvailable(pool.ID))
}

func (s *EngineTestSuite) TestConflictReportsOnlyMissingSeats() {
	pool := s.seedPool(1, 4)
	_, err := CreateHold(1, pool.ID, types.SeatSelector{SeatIDs: s.seatIDs(pool, 1)}, 10*time.Minute)
	s.Require().NoError(err)

	_, err = CreateHold(2, pool.ID, types.SeatSelector{SeatIDs: s.seatIDs(pool, 0, 1, 2)}, 10*time.Minute)
	var conflict *types.ConflictError
	s.Require().ErrorAs(err, &conflict)
	assert.Equal(s.T(), s.seatIDs(pool, 1), conflict.Seats)
	// nothing from the losing request stayed held
	assert.Equal(s.T(), types.SEAT_AVAILABLE, s.seatStatus(pool.Seats[0].ID))
	assert.Equal(s.T(), types.SEAT_AVAILABLE, s.seatStatus(pool.Seats[2].ID))
}

func (s *EngineTestSuite) TestQuantitySelectorIsDeterministic() {
	pool := s.seedPool(2, 2)
	hold, err := CreateHold(1, pool.ID, types.SeatSelector{Quantity: 2}, 10*time.Minute)
	s.Require().NoError(err)

	// lowest section/row/column first: row 1 columns 1 and 2
	s.Require().Len(hold.Seats, 2)
	got := []uint{hold.Seats[0].ID, hold.Seats[1].ID}
	assert.ElementsMatch(s.T(), s.seatIDs(pool, 0, 1), got)
}

func (s *EngineTestSuite) TestQuantityBeyondCapacity() {
	pool := s.seedPool(1, 2)
	_, err := CreateHold(1, pool.ID, types.SeatSelector{Quantity: 3}, 10*time.Minute)
	var conflict *types.ConflictError
	s.Require().ErrorAs(err, &conflict)
	assert.Empty(s.T(), conflict.Seats)
	assert.Equal(s.T(), uint(2), s.poolAvailable(pool.ID))
}

func (s *EngineTestSuite) TestUnknownSeatsConflict() {
	pool := s.seedPool(1, 2)
	_, err := CreateHold(1, pool.ID, types.SeatSelector{SeatIDs: []uint{99999}}, 10*time.Minute)
	var conflict *types.ConflictError
	s.Require().ErrorAs(err, &conflict)
	assert.Equal(s.T(), []uint{99999}, conflict.Seats)
	assert.Equal(s.T(), uint(2), s.poolAvailable(pool.ID))
}

func (s *EngineTestSuite) TestConfirmHold() {
	pool := s.seedPool(1, 2)
	hold, err := CreateHold(1, pool.ID, types.SeatSelector{Quantity: 1}, 10*time.Minute)
	s.Require().NoError(err)

	s.Require().NoError(ConfirmHold(s.DB, hold.ID, time.Now()))

	// the transition is one-way: a second confirm is rejected
	err = ConfirmHold(s.DB, hold.ID, time.Now())
	var terminal *types.AlreadyTerminalError
	assert.ErrorAs(s.T(), err, &terminal)
}

func (s *EngineTestSuite) TestConfirmExpiredHoldFails() {
	pool := s.seedPool(1, 1)
	hold, err := CreateHold(1, pool.ID, types.SeatSelector{Quantity: 1}, 0)
	s.Require().NoError(err)

	err = ConfirmHold(s.DB, hold.ID, time.Now())
	var expired *types.HoldExpiredError
	s.Require().ErrorAs(err, &expired)

	// the reaper returns the seat to the pool
	assert.Equal(s.T(), 1, ReapExpired())
	assert.Equal(s.T(), types.SEAT_AVAILABLE, s.seatStatus(pool.Seats[0].ID))
	assert.Equal(s.T(), uint(1), s.poolAvailable(pool.ID))
}

func (s *EngineTestSuite) TestReapExpiredReleasesSeats() {
	pool := s.seedPool(1, 3)
	_, err := CreateHold(1, pool.ID, types.SeatSelector{SeatIDs: s.seatIDs(pool, 0, 1)}, time.Millisecond)
	s.Require().NoError(err)
	time.Sleep(5 * time.Millisecond)

	assert.Equal(s.T(), 1, ReapExpired())
	assert.Equal(s.T(), uint(3), s.poolAvailable(pool.ID))

	// the same seats can be held again afterwards
	hold, err := CreateHold(2, pool.ID, types.SeatSelector{SeatIDs: s.seatIDs(pool, 0, 1)}, 10*time.Minute)
	s.Require().NoError(err)
	assert.Len(s.T(), hold.Seats, 2)

	// a second sweep finds nothing
	assert.Equal(s.T(), 0, ReapExpired())
}

func (s *EngineTestSuite) TestReaperSkipsConfirmedHolds() {
	pool := s.seedPool(1, 2)
	hold, err := CreateHold(1, pool.ID, types.SeatSelector{Quantity: 2}, 100*time.Millisecond)
	s.Require().NoError(err)
	s.Require().NoError(ConfirmHold(s.DB, hold.ID, time.Now()))
	time.Sleep(110 * time.Millisecond)

	// the confirm won the CAS; the sweep must not touch the hold
	assert.Equal(s.T(), 0, ReapExpired())
	var reloaded models.Hold
	s.Require().NoError(s.DB.Where("id = ?", hold.ID).First(&reloaded).Error)
	assert.Equal(s.T(), types.HOLD_CONFIRMED, reloaded.Status)
	assert.Equal(s.T(), types.SEAT_HELD, s.seatStatus(pool.Seats[0].ID))
}

func (s *EngineTestSuite) TestReleaseHoldIsIdempotent() {
	pool := s.seedPool(1, 2)
	hold, err := CreateHold(1, pool.ID, types.SeatSelector{Quantity: 2}, 10*time.Minute)
	s.Require().NoError(err)

	s.Require().NoError(ReleaseHold(hold.ID, "user_canceled"))
	assert.Equal(s.T(), uint(2), s.poolAvailable(pool.ID))

	// releasing again is a no-op, not an error
	s.Require().NoError(ReleaseHold(hold.ID, "user_canceled"))

	var reloaded models.Hold
	s.Require().NoError(s.DB.Where("id = ?", hold.ID).First(&reloaded).Error)
	assert.Equal(s.T(), types.HOLD_RELEASED, reloaded.Status)
}

func (s *EngineTestSuite) TestNoOversellAcrossHolds() {
	pool := s.seedPool(2, 2)
	var granted int
	for user := uint(1); user <= 6; user++ {
		if _, err := CreateHold(user, pool.ID, types.SeatSelector{Quantity: 1}, 10*time.Minute); err == nil {
			granted++
		}
	}
	// never more grants than seats, and every seat accounted for exactly once
	assert.Equal(s.T(), 4, granted)
	assert.Equal(s.T(), uint(0), s.poolAvailable(pool.ID))
	var held int64
	s.Require().NoError(s.DB.Model(&models.Seat{}).Where("pool_id = ? AND status = ?", pool.ID, types.SEAT_HELD).Count(&held).Error)
	assert.EqualValues(s.T(), 4, held)
}

func (s *EngineTestSuite) TestPoolSeatsAssociation() {
	pool := s.seedPool(2, 3)
	var loaded models.SeatPool
	s.Require().NoError(s.DB.Preload("Seats").First(&loaded, pool.ID).Error)
	assert.Len(s.T(), loaded.Seats, 6)
	for _, seat := range loaded.Seats {
		assert.Equal(s.T(), pool.ID, seat.PoolID)
	}
}

func (s *EngineTestSuite) TestGetPoolSnapshot() {
	pool := s.seedPool(1, 3)
	_, err := CreateHold(1, pool.ID, types.SeatSelector{SeatIDs: s.seatIDs(pool, 0)}, 10*time.Minute)
	s.Require().NoError(err)

	snapshot, err := GetPoolSnapshot(pool.ID)
	s.Require().NoError(err)
	assert.Equal(s.T(), uint(3), snapshot.Total)
	assert.Equal(s.T(), uint(2), snapshot.Available)
	s.Require().Len(snapshot.SeatStates, 3)
	assert.Equal(s.T(), string(types.SEAT_HELD), snapshot.SeatStates[0].Status)
	assert.Equal(s.T(), string(types.SEAT_AVAILABLE), snapshot.SeatStates[1].Status)
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}
