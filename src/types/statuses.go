package types

type SeatStatus string

const (
	SEAT_AVAILABLE SeatStatus = "available"
	SEAT_HELD      SeatStatus = "held"
	SEAT_SOLD      SeatStatus = "sold"
)

type HoldStatus string

const (
	HOLD_ACTIVE    HoldStatus = "active"
	HOLD_CONFIRMED HoldStatus = "confirmed"
	HOLD_EXPIRED   HoldStatus = "expired"
	HOLD_RELEASED  HoldStatus = "released"
)

// Terminal reports whether no further transition is allowed out of s. The
// state machine is ACTIVE -> CONFIRMED | EXPIRED | RELEASED, nothing else.
func (s HoldStatus) Terminal() bool {
	return s == HOLD_CONFIRMED || s == HOLD_EXPIRED || s == HOLD_RELEASED
}

type OrderStatus string

const (
	ORDER_PENDING_PAYMENT OrderStatus = "pending_payment"
	ORDER_PAID            OrderStatus = "paid"
	ORDER_FAILED          OrderStatus = "failed"
	ORDER_EXPIRED         OrderStatus = "expired"
)

type TicketStatus string

const (
	TICKET_VALID TicketStatus = "valid"
	TICKET_USED  TicketStatus = "used"
	TICKET_VOID  TicketStatus = "void"
)

const (
	TOPIC_HOLDS_CREATED = "holds.created"
	TOPIC_ORDERS_PAID   = "orders.paid"
	TOPIC_ORDERS_FAILED = "orders.failed"
)
