package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/utils"

	"studentperf_backend/internals/configs"
	database "studentperf_backend/internals/databases"
	middlewares "studentperf_backend/internals/middlewares"
	routes "studentperf_backend/internals/route"
)

func main() {
	configs.LoadEnv()

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ProxyHeader:           fiber.HeaderXForwardedFor,
		BodyLimit:             25 * 1024 * 1024, // upload excel bisa besar
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault})) // gzip
	app.Use(etag.New())                                                  // 304 caching

	// 🔎 Request-ID + timing (observability ringan)
	app.Use(func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = utils.UUID()
		}
		c.Set("X-Request-ID", id)
		c.Locals("reqid", id)
		start := time.Now()
		// timeout guard, longgar karena proses upload excel bisa lama
		ctx, cancel := context.WithTimeout(c.Context(), 30*time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		err := c.Next()
		dur := time.Since(start)
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, c.Method(), c.OriginalURL(), c.Response().StatusCode(), dur)
		return err
	})

	middlewares.SetupMiddlewares(app)

	// 🔌 DB connect + pool + migrasi
	database.ConnectDB()
	database.TunePool()
	database.Migrate()

	// ✅ Routes
	routes.SetupRoutes(app, database.DB)

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	// Start server non-blocking
	go func() {
		log.Printf("✅ Listening on :%s", port)
		if err := app.Listen("0.0.0.0:" + port); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown + tutup pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	if sqlDB, err := database.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
