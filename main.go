package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/haoyun-crm/feishu-intake-bot/database"
	"github.com/haoyun-crm/feishu-intake-bot/internal/config"
	"github.com/haoyun-crm/feishu-intake-bot/internal/feishu"
	"github.com/haoyun-crm/feishu-intake-bot/internal/handlers"
	"github.com/haoyun-crm/feishu-intake-bot/internal/models"
	"github.com/haoyun-crm/feishu-intake-bot/internal/routes"
	"github.com/haoyun-crm/feishu-intake-bot/internal/services"
	"github.com/haoyun-crm/feishu-intake-bot/internal/storage"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found - using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Configuration error: ", err)
	}

	log.Println("=== 飞书机器人配置 ===")
	log.Printf("App ID: %s", cfg.AppID)
	log.Printf("Base URL: %s", cfg.BaseURL)
	log.Printf("目标表: %s", cfg.TargetTableName)

	// Session store: Redis first, in-memory for tests, no-op when Redis is
	// unreachable. The degraded mode means intake conversations cannot
	// progress past the prompt, so say so loudly.
	var store storage.Store
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory session store (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		redisStore, err := storage.NewRedisStore(cfg.RedisAddr(), cfg.RedisDB)
		if err != nil {
			log.Printf("⚠️  Redis unavailable (%v) - session state DISABLED, intake replies cannot be processed", err)
			store = storage.NewNoopStore()
		} else {
			log.Println("✅ Redis session store connected")
			store = redisStore
		}
	}

	// Optional Postgres archive of created records.
	var archive *services.ArchiveService
	if cfg.ArchiveEnabled() {
		db, err := database.Connect(cfg)
		if err != nil {
			log.Fatal("Failed to connect archive database: ", err)
		}
		if err := db.AutoMigrate(&models.CustomerArchive{}); err != nil {
			log.Fatal("Failed to migrate archive database: ", err)
		}
		archive = services.NewArchiveService(db)
	} else {
		log.Println("Archive database not configured - skipping")
	}

	client := feishu.NewClient(cfg.AppID, cfg.AppSecret)
	locator := services.NewTableLocator(client, store, cfg.BaseURL, cfg.TargetTableName)
	customers := services.NewCustomerService(client)
	intake := services.NewIntakeService(store, client, locator, customers, archive)

	// Resolve the destination table up front: a bot that cannot find its
	// table is misconfigured and should not start.
	bootCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	loc, err := locator.Resolve(bootCtx)
	cancel()
	if err != nil {
		log.Fatal("表格验证失败: ", err)
	}
	log.Printf("目标表ID: %s", loc.TableID)

	app := fiber.New(fiber.Config{
		AppName:           "Feishu Intake Bot v1.0.0",
		EnablePrintRoutes: cfg.Debug,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	webhookHandler := handlers.NewWebhookHandler(intake)
	healthHandler := handlers.NewHealthHandler(cfg, store, archive)
	configHandler := handlers.NewConfigHandler(cfg, locator)
	routes.Setup(app, cfg, webhookHandler, healthHandler, configHandler)

	// Graceful shutdown.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Println("🛑 Shutting down...")
		_ = app.Shutdown()
	}()

	log.Printf("🚀 Feishu intake bot starting on port %d", cfg.Port)
	log.Fatal(app.Listen(fmt.Sprintf(":%d", cfg.Port)))
}
