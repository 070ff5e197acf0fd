package main

import (
	"log"
	"net/http"
	"os"
	"path"
	"strings"

	"boxoffice/src/common"
	"boxoffice/src/db"
	"boxoffice/src/middlewares"
	"boxoffice/src/models"
	"boxoffice/src/types"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

const apiPrefix = "/api/v1"

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	return g.Group(apiPrefix)
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

// seatSelectorStructLevel enforces the tagged selector at the binding layer:
// a hold request carries explicit seat ids or a quantity, never both and
// never neither.
func seatSelectorStructLevel(sl validator.StructLevel) {
	body := sl.Current().Interface().(types.CreateHoldRequestBody)
	hasSeats := len(body.SeatIDs) > 0
	hasQty := body.Quantity > 0
	if hasSeats == hasQty {
		sl.ReportError(body.SeatIDs, "SeatIDs", "seat_ids", "seatselector", "")
	}
}

func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterStructValidation(seatSelectorStructLevel, types.CreateHoldRequestBody{})
	}
}

func initDb() *gorm.DB {
	dbi := db.GetDb()
	err := dbi.AutoMigrate(
		&models.Event{},
		&models.SeatPool{},
		&models.Seat{},
		&models.Hold{},
		&models.Order{},
		&models.Ticket{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}
	return dbi
}

func initLogger() {
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	log.SetPrefix("[boxoffice] ")
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			log.Printf("No .env file loaded: %s\n", err.Error())
		}
	}
	initLogger()

	initDb()

	router := setupRouter()
	registerValidations()

	origins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if apiEnv == "local" || origins == "" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "DELETE", "HEAD")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization")
		cc.AllowCredentials = true
		cc.AllowAllOrigins = false
		cc.AllowOrigins = strings.Split(origins, ",")
		router.Use(cors.New(cc))
	}

	stripeWebhookRoute(router)

	authorized := router.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	{
		poolHandlers(authorized)
		holdHandlers(authorized)
		cartHandlers(authorized)
		checkoutHandlers(authorized)
		ticketHandlers(authorized)
	}

	common.StartReaper()
	common.StartRefundsMonitor()

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %s", err.Error())
	}
}
