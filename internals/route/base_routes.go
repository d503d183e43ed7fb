package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func BaseRoutes(app *fiber.App, db *gorm.DB) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Student performance backend up 🚀")
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		dbStatus := "Connected"
		serverStatus := "OK"
		httpStatus := fiber.StatusOK

		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			dbStatus = "Database connection error"
			serverStatus = "DOWN"
			httpStatus = fiber.StatusServiceUnavailable
		}

		uptime := time.Since(startTime).Seconds()

		return c.Status(httpStatus).JSON(fiber.Map{
			"status":         serverStatus,
			"database":       dbStatus,
			"server_time":    time.Now().Format(time.RFC3339),
			"uptime_seconds": int(uptime),
		})
	})
}
