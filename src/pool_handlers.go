package main

import (
	"net/http"

	"boxoffice/src/common"
	"boxoffice/src/types"

	"github.com/gin-gonic/gin"
)

// Catalog reads: events and their pools come from the catalog service and are
// read-only here. The pool snapshot is the live seat-state view clients use
// to render seat selection.
func poolHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/events", func(ctx *gin.Context) {
			events, err := common.ListEvents()
			if err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": events, "count": len(events)})
		}).
		GET("/events/:id/pools", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			pools, err := common.GetEventPools(params.ID)
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": pools})
		}).
		GET("/pools/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			snapshot, err := common.GetPoolSnapshot(params.ID)
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": snapshot})
		})
	return g
}
