package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"time"

	"boxoffice/src/common"
	"boxoffice/src/db"
	"boxoffice/src/lib"
	"boxoffice/src/models"
	"boxoffice/src/types"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeqown/go-qrcode"
)

func ticketHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/tickets/:id/code", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			ticket, err := common.GetTicket(params.ID)
			if err != nil {
				respondDomainError(ctx, err)
				return
			}
			var order models.Order
			if err := db.GetDb().First(&order, "id = ?", ticket.OrderID).Error; err != nil {
				respondDomainError(ctx, err)
				return
			}
			if order.UserID != userId {
				ctx.Status(http.StatusNotFound)
				return
			}

			filename := fmt.Sprintf("ticketcode_%d", ticket.ID)
			rd := lib.GetRedisClient()
			var filepath string
			if rd != nil {
				cached, err := rd.Get(context.Background(), filename).Result()
				if err != nil && !errors.Is(err, redis.Nil) {
					log.Printf("Error reading from cache: %s\n", err.Error())
				}
				if cached != "" {
					if _, err := os.Stat(cached); err == nil {
						filepath = cached
					}
				}
			}
			if filepath == "" {
				qrc, err := qrcode.New(ticket.Code)
				if err != nil {
					log.Printf("Could not build qrcode for ticket %d: %s\n", ticket.ID, err.Error())
					ctx.Status(http.StatusUnprocessableEntity)
					return
				}
				filepath = path.Join(os.TempDir(), fmt.Sprintf("%s.jpeg", filename))
				if err := qrc.Save(filepath); err != nil {
					log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
					ctx.Status(http.StatusUnprocessableEntity)
					return
				}
				if rd != nil {
					rd.SetEx(context.Background(), filename, filepath, 2*time.Hour)
				}
			}
			ctx.File(filepath)
		}).
		POST("/tickets/:id/scan", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.ScanTicketRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ticket, err := common.ScanTicket(params.ID, body.Code)
			if err != nil {
				log.Printf("Error scanning ticket %d: %s\n", params.ID, err.Error())
				respondDomainError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": ticket})
		})
	return g
}
