package common

import (
	"boxoffice/src/db"
	"boxoffice/src/models"
	"boxoffice/src/types"
	"boxoffice/src/utils"

	"gorm.io/gorm"
)

// IssueTickets mints exactly one ticket per held seat of a paid order, inside
// the caller's transaction. Codes come from a CSPRNG; the price paid is the
// pool price at hold time carried in by the caller, never a live lookup. The
// orchestrator guarantees at-most-once by gating on the order's one-way PAID
// transition in the same transaction.
func IssueTickets(tx *gorm.DB, order *models.Order, seats []models.Seat, pricePaid float32) ([]models.Ticket, error) {
	tickets := make([]models.Ticket, 0, len(seats))
	for _, seat := range seats {
		code, err := utils.NewTicketCode()
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, models.Ticket{
			OrderID:   order.ID,
			SeatID:    seat.ID,
			PricePaid: pricePaid,
			Code:      code,
			Status:    types.TICKET_VALID,
		})
	}
	if err := tx.Create(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

// GetTicket loads a single ticket with its seat.
func GetTicket(ticketID uint) (*models.Ticket, error) {
	dbi := db.GetDb()
	var ticket models.Ticket
	err := dbi.Preload("Seat").First(&ticket, ticketID).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ScanTicket redeems a ticket at the door: valid -> used, exactly once. The
// presented code must match; a second scan gets AlreadyTerminalError.
func ScanTicket(ticketID uint, code string) (*models.Ticket, error) {
	dbi := db.GetDb()
	var ticket models.Ticket
	err := dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ticket, ticketID).Error; err != nil {
			return err
		}
		res := tx.
			Model(&models.Ticket{}).
			Where("id = ? AND code = ? AND status = ?", ticketID, code, types.TICKET_VALID).
			Update("status", types.TICKET_USED)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if ticket.Code != code {
				return gorm.ErrRecordNotFound
			}
			return &types.AlreadyTerminalError{Resource: "ticket", ID: ticket.Code, Status: string(ticket.Status)}
		}
		ticket.Status = types.TICKET_USED
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}
