// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	performanceRoutes "studentperf_backend/internals/features/performance/route"
)

var startTime time.Time

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	startTime = time.Now()

	BaseRoutes(app, db)

	log.Println("[INFO] Mounting Performance routes...")
	api := app.Group("/api/v1")
	performanceRoutes.PerformanceRoutes(api, db)
}
