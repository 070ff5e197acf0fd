package common

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"boxoffice/src/config"
	"boxoffice/src/db"
	"boxoffice/src/lib"
	"boxoffice/src/models"
	"boxoffice/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// errDuplicateConfirm signals that a concurrent webhook delivery won the PAID
// transition first; the losing transaction rolls back and the caller treats
// the delivery as a no-op.
var errDuplicateConfirm = errors.New("order already transitioned by a concurrent confirmation")

// BeginCheckout turns an active hold into a pending order: prices the seats,
// requests a payment intent and persists the order. The payment-provider call
// happens with no database transaction open (and therefore no seat lock
// held). Calling it again for the same hold returns the existing pending
// order instead of double-charging.
func BeginCheckout(ctx context.Context, userID uint, holdID uuid.UUID) (*models.Order, error) {
	dbi := db.GetDb()
	var hold models.Hold
	err := dbi.
		Where("id = ?", holdID).
		Preload("Pool").
		Preload("Seats").
		First(&hold).Error
	if err != nil {
		return nil, err
	}
	if hold.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}

	var existing models.Order
	err = dbi.Where("hold_id = ?", holdID).First(&existing).Error
	if err == nil {
		if existing.Status == types.ORDER_PENDING_PAYMENT {
			// a cached pending order is only good while its hold is alive
			if hold.Expired(time.Now()) {
				return nil, &types.HoldExpiredError{HoldID: holdID.String()}
			}
			existing.Hold = &hold
			return &existing, nil
		}
		return nil, &types.AlreadyTerminalError{Resource: "order", ID: existing.ID.String(), Status: string(existing.Status)}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if hold.Status.Terminal() {
		return nil, &types.AlreadyTerminalError{Resource: "hold", ID: holdID.String(), Status: string(hold.Status)}
	}
	if hold.Expired(time.Now()) {
		return nil, &types.HoldExpiredError{HoldID: holdID.String()}
	}

	subtotal := hold.Pool.Price * float32(len(hold.Seats))
	fee := config.ServiceFee(subtotal)
	total := subtotal + fee
	order := models.Order{
		ID:         uuid.New(),
		HoldID:     holdID,
		UserID:     userID,
		Status:     types.ORDER_PENDING_PAYMENT,
		Subtotal:   subtotal,
		ServiceFee: fee,
		Total:      total,
		Currency:   hold.Pool.Currency,
	}

	amountCents := int64(math.Round(float64(total) * 100))
	ref, secret, err := lib.GetPaymentIntents().CreateIntent(ctx, amountCents, order.Currency, map[string]string{
		"order_id": order.ID.String(),
		"hold_id":  holdID.String(),
	})
	if err != nil {
		log.Printf("Error creating payment intent for hold %s: %s\n", holdID, err.Error())
		return nil, err
	}
	order.PaymentIntentID = &ref
	order.ClientSecret = &secret

	if err := dbi.Create(&order).Error; err != nil {
		// unique index on hold_id: a concurrent checkout may have won
		var winner models.Order
		if lookupErr := dbi.Where("hold_id = ?", holdID).First(&winner).Error; lookupErr == nil && winner.Status == types.ORDER_PENDING_PAYMENT {
			winner.Hold = &hold
			return &winner, nil
		}
		return nil, err
	}
	order.Hold = &hold
	return &order, nil
}

// OnPaymentConfirmed handles a provider success event. Idempotent under
// redelivery: a paid order is a no-op. The hold confirmation, ticket
// issuance, seat sale and order transition commit as one transaction. When
// the hold was already reaped (payment arrived after expiry) the order fails
// and the captured payment is escalated to the operator refund queue.
func OnPaymentConfirmed(paymentIntentRef string) error {
	dbi := db.GetDb()
	var order models.Order
	err := dbi.Where("payment_intent_id = ?", paymentIntentRef).First(&order).Error
	if err != nil {
		log.Printf("No order found for payment intent %s: %s\n", paymentIntentRef, err.Error())
		return err
	}
	if order.Status == types.ORDER_PAID {
		log.Printf("Order %s already paid; ignoring duplicate confirmation\n", order.ID)
		return nil
	}

	holdLost := false
	err = dbi.Transaction(func(tx *gorm.DB) error {
		if err := ConfirmHold(tx, order.HoldID, time.Now()); err != nil {
			var terminal *types.AlreadyTerminalError
			var expired *types.HoldExpiredError
			if errors.As(err, &terminal) {
				if terminal.Status == string(types.HOLD_CONFIRMED) {
					// a concurrent delivery confirmed the hold already;
					// the seats were never lost
					return errDuplicateConfirm
				}
				holdLost = true
			} else if errors.As(err, &expired) {
				holdLost = true
			}
			return err
		}
		var hold models.Hold
		if err := tx.Where("id = ?", order.HoldID).Preload("Pool").Preload("Seats").First(&hold).Error; err != nil {
			return err
		}
		if _, err := IssueTickets(tx, &order, hold.Seats, hold.Pool.Price); err != nil {
			return err
		}
		if _, err := MarkSold(tx, order.HoldID); err != nil {
			return err
		}
		res := tx.
			Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, types.ORDER_PENDING_PAYMENT).
			Update("status", types.ORDER_PAID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errDuplicateConfirm
		}
		return nil
	})
	if errors.Is(err, errDuplicateConfirm) {
		return nil
	}
	if holdLost {
		return escalateLostPayment(&order)
	}
	if err != nil {
		return err
	}
	go lib.KafkaProduceMessage(types.TOPIC_ORDERS_PAID, map[string]any{
		"order_id": order.ID.String(),
		"hold_id":  order.HoldID.String(),
		"total":    order.Total,
	})
	return nil
}

// OnPaymentFailed handles a provider failure event: the order fails and the
// hold is released right away so the seats return to the pool ahead of the
// natural expiry. Idempotent on terminal orders.
func OnPaymentFailed(paymentIntentRef string) error {
	dbi := db.GetDb()
	var order models.Order
	err := dbi.Where("payment_intent_id = ?", paymentIntentRef).First(&order).Error
	if err != nil {
		log.Printf("No order found for payment intent %s: %s\n", paymentIntentRef, err.Error())
		return err
	}
	res := dbi.
		Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, types.ORDER_PENDING_PAYMENT).
		Update("status", types.ORDER_FAILED)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}
	failure := &types.PaymentFailedError{PaymentIntentID: paymentIntentRef}
	log.Printf("Order %s: %s; releasing hold\n", order.ID, failure.Error())
	if err := ReleaseHold(order.HoldID, "payment_failed"); err != nil {
		log.Printf("Error releasing hold %s after failed payment: %s\n", order.HoldID, err.Error())
	}
	go lib.KafkaProduceMessage(types.TOPIC_ORDERS_FAILED, map[string]any{
		"order_id": order.ID.String(),
		"hold_id":  order.HoldID.String(),
		"reason":   "payment_failed",
	})
	return nil
}

// escalateLostPayment records the unrecoverable case: money moved but the
// seats were reaped. The order fails and an entry lands on the operator
// refund queue; the payment is never retried automatically.
func escalateLostPayment(order *models.Order) error {
	dbi := db.GetDb()
	res := dbi.
		Model(&models.Order{}).
		Where("id = ? AND status IN ?", order.ID, []types.OrderStatus{types.ORDER_PENDING_PAYMENT, types.ORDER_EXPIRED}).
		Update("status", types.ORDER_FAILED)
	if res.Error != nil {
		return res.Error
	}
	lost := &types.PostPaymentHoldLostError{OrderID: order.ID.String(), PaymentIntentID: deref(order.PaymentIntentID)}
	log.Printf("[refunds] %s\n", lost.Error())
	if res.RowsAffected == 0 {
		// a previous delivery already escalated this order
		return lost
	}
	queue := config.RefundsQueueName()
	if queue != "" {
		err := lib.SQSSendMessage(context.Background(), queue, map[string]any{
			"order_id":          order.ID.String(),
			"payment_intent_id": deref(order.PaymentIntentID),
			"amount":            order.Total,
			"currency":          order.Currency,
			"reason":            "post_payment_hold_lost",
		})
		if err != nil {
			log.Printf("[refunds] Error publishing to queue %s: %s\n", queue, err.Error())
		}
	}
	go lib.KafkaProduceMessage(types.TOPIC_ORDERS_FAILED, map[string]any{
		"order_id": order.ID.String(),
		"hold_id":  order.HoldID.String(),
		"reason":   "post_payment_hold_lost",
	})
	return lost
}

// GetOrder loads an order with its hold and any issued tickets, scoped to
// the owning user.
func GetOrder(userID uint, orderID uuid.UUID) (*models.Order, error) {
	dbi := db.GetDb()
	var order models.Order
	err := dbi.
		Where("id = ?", orderID).
		Preload("Hold").
		Preload("Tickets").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return &order, nil
}

// GetOwnOrders lists a user's orders, newest first.
func GetOwnOrders(userID uint) ([]models.Order, error) {
	dbi := db.GetDb()
	var orders []models.Order
	err := dbi.
		Where(&models.Order{UserID: userID}).
		Preload("Tickets").
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
