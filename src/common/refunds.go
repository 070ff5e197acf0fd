package common

import (
	"log"

	"boxoffice/src/config"
	"boxoffice/src/lib"

	"github.com/tidwall/gjson"
)

// StartRefundsMonitor consumes the operator refund queue and writes each
// flagged payment to the log, so on-call has a trail of captured payments
// whose seats were lost. The refund itself stays a manual operator action.
// No-op when REFUNDS_QUEUE_NAME is unset.
func StartRefundsMonitor() {
	queue := config.RefundsQueueName()
	if queue == "" {
		return
	}
	c := lib.NewSQSConsumer(queue, func(body string) {
		if !gjson.Valid(body) {
			log.Printf("[%s]: Received invalid json body. Aborting", queue)
			return
		}
		orderID := gjson.Get(body, "order_id").String()
		intentRef := gjson.Get(body, "payment_intent_id").String()
		amount := gjson.Get(body, "amount").Float()
		currency := gjson.Get(body, "currency").String()
		log.Printf("[refunds] Manual refund required: order=%s intent=%s amount=%.2f %s\n",
			orderID, intentRef, amount, currency)
	})
	c.Listen()
}
