package main

import (
	"log"
	"net/http"

	"boxoffice/src/common"
	"boxoffice/src/types"

	"github.com/gin-gonic/gin"
)

func cartHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/cart/items", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			items, err := common.ListCartItems(ctx.Request.Context(), userId)
			if err != nil {
				log.Printf("Error listing cart for user %d: %s\n", userId, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": items, "count": len(items)})
		}).
		POST("/cart/items", func(ctx *gin.Context) {
			var body types.UpsertCartItemRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			item, err := common.UpsertCartItem(ctx.Request.Context(), userId, body)
			if err != nil {
				log.Printf("Error upserting cart item for user %d: %s\n", userId, err.Error())
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": item})
		}).
		DELETE("/cart/items/:id", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			if err := common.RemoveCartItem(ctx.Request.Context(), userId, params.ID); err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		DELETE("/cart/items", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			if err := common.ClearCart(ctx.Request.Context(), userId); err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		POST("/cart/checkout", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			results, err := common.CheckoutCart(ctx.Request.Context(), userId)
			if err != nil {
				log.Printf("Error checking out cart for user %d: %s\n", userId, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			status := http.StatusCreated
			for _, r := range results {
				if r.HoldID == "" {
					status = http.StatusConflict
					break
				}
			}
			ctx.JSON(status, gin.H{"data": results})
		})
	return g
}
