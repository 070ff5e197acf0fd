package main

import (
	"log"
	"net/http"

	"boxoffice/src/common"
	"boxoffice/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func checkoutHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/checkout", func(ctx *gin.Context) {
			var body types.CheckoutRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			order, err := common.BeginCheckout(ctx.Request.Context(), userId, uuid.MustParse(body.HoldID))
			if err != nil {
				log.Printf("Error starting checkout for hold %s: %s\n", body.HoldID, err.Error())
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{
				"order_id":              order.ID.String(),
				"payment_client_secret": order.ClientSecret,
				"subtotal":              order.Subtotal,
				"service_fee":           order.ServiceFee,
				"total_amount":          order.Total,
				"currency":              order.Currency,
				"expires_at":            order.Hold.ExpiresAt,
			})
		}).
		GET("/orders", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			orders, err := common.GetOwnOrders(userId)
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": orders, "count": len(orders)})
		}).
		GET("/orders/:id", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			order, err := common.GetOrder(userId, uuid.MustParse(params.ID))
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": order})
		})
	return g
}
