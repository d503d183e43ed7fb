package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"studentperf_backend/internals/middlewares/logger"
)

// SetupMiddlewares memasang middleware global aplikasi
func SetupMiddlewares(app *fiber.App) {
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(CorsMiddleware())
	app.Use(logger.LoggerMiddleware())
}
