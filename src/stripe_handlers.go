package main

import (
	"errors"
	"io"
	"log"
	"net/http"
	"os"

	"boxoffice/src/common"
	"boxoffice/src/types"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

// stripeWebhookRoute receives the payment provider's asynchronous
// confirmations. Delivery is at-least-once, so the handlers behind it are
// idempotent; the provider owns the retry policy and retries on anything
// other than 2xx.
func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/payments/webhook", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEventWithOptions(payload, ctx.GetHeader("Stripe-Signature"), whsecret, webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		})
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		switch event.Type {
		case "payment_intent.succeeded", "payment_intent.payment_failed":
			if !gjson.ValidBytes(event.Data.Raw) {
				log.Printf("[StripeEvent] Received invalid payload for %s. Aborting\n", event.Type)
				ctx.Status(http.StatusBadRequest)
				return
			}
			intentRef := gjson.GetBytes(event.Data.Raw, "id").String()
			if intentRef == "" {
				log.Printf("[StripeEvent] No payment intent id in %s payload\n", event.Type)
				ctx.Status(http.StatusBadRequest)
				return
			}
			if event.Type == "payment_intent.succeeded" {
				err = common.OnPaymentConfirmed(intentRef)
			} else {
				err = common.OnPaymentFailed(intentRef)
			}
			if err != nil {
				var lost *types.PostPaymentHoldLostError
				if errors.As(err, &lost) {
					// escalated to the refund queue; ack so the
					// provider stops redelivering
					log.Printf("[StripeEvent] %s\n", lost.Error())
					break
				}
				if errors.Is(err, gorm.ErrRecordNotFound) {
					log.Printf("[StripeEvent] No order for intent %s; acknowledging\n", intentRef)
					break
				}
				log.Printf("[StripeEvent] Error handling %s: %s\n", event.Type, err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
		default:
			log.Printf("[StripeEvent] Ignoring event type %s\n", event.Type)
		}
		ctx.Status(http.StatusOK)
	})
	return apiv1
}
