package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	"boxoffice/src/common"
	"boxoffice/src/config"
	"boxoffice/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func holdHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/holds", func(ctx *gin.Context) {
			var body types.CreateHoldRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			ttl := config.HoldTTL()
			if body.TTLSeconds != nil {
				ttl = time.Duration(*body.TTLSeconds) * time.Second
			}
			hold, err := common.CreateHold(userId, body.PoolID, body.Selector(), ttl)
			if err != nil {
				log.Printf("Error creating hold for user %d: %s\n", userId, err.Error())
				respondDomainError(ctx, err)
				return
			}
			seats := make([]uint, 0, len(hold.Seats))
			for _, s := range hold.Seats {
				seats = append(seats, s.ID)
			}
			ctx.JSON(http.StatusCreated, gin.H{
				"hold_id":    hold.ID.String(),
				"seats":      seats,
				"expires_at": hold.ExpiresAt,
			})
		}).
		GET("/holds/:id", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			hold, err := common.GetHold(userId, uuid.MustParse(params.ID))
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": hold})
		}).
		POST("/holds/:id/release", func(ctx *gin.Context) {
			var params types.UUIDRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.ReleaseHoldRequestBody
			if ctx.Request.ContentLength > 0 {
				if err := ctx.ShouldBindJSON(&body); err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
			}
			reason := body.Reason
			if reason == "" {
				reason = "user_canceled"
			}
			userId := ctx.GetUint("id")
			holdID := uuid.MustParse(params.ID)
			// releasing is owner-only, like every other hold operation
			if _, err := common.GetHold(userId, holdID); err != nil {
				respondDomainError(ctx, err)
				return
			}
			if err := common.ReleaseHold(holdID, reason); err != nil {
				log.Printf("Error releasing hold %s: %s\n", params.ID, err.Error())
				respondDomainError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}

// respondDomainError maps the engine's error taxonomy onto HTTP statuses.
// Conflicts carry the specific unavailable seats so the client can re-render
// seat selection without losing the rest of the cart.
func respondDomainError(ctx *gin.Context, err error) {
	var conflict *types.ConflictError
	if errors.As(err, &conflict) {
		ctx.JSON(http.StatusConflict, gin.H{"error": conflict.Error(), "conflict_seats": conflict.Seats})
		return
	}
	var expired *types.HoldExpiredError
	if errors.As(err, &expired) {
		ctx.JSON(http.StatusGone, gin.H{"error": expired.Error()})
		return
	}
	var terminal *types.AlreadyTerminalError
	if errors.As(err, &terminal) {
		ctx.JSON(http.StatusConflict, gin.H{"error": terminal.Error()})
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if errors.Is(err, types.ErrSelectorRequired) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
}
