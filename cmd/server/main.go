package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"biteback/docs"

	"github.com/labstack/echo/v4"

	"biteback/internal/auth"
	"biteback/internal/cache"
	"biteback/internal/config"
	"biteback/internal/db"
	"biteback/internal/handler"
	"biteback/internal/model"
	"biteback/internal/notify"
	"biteback/internal/repository"
	"biteback/internal/router"
	"biteback/internal/service"
)

// @title Biteback API
// @version 1.0
// @description Marketplace backend with JWT authentication, purchases and realtime seller notifications.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.HideBanner = true

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		tables := []interface{}{
			&model.PurchaseLine{},
			&model.Purchase{},
			&model.ProductImage{},
			&model.Product{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.ProductImage{},
		&model.Purchase{},
		&model.PurchaseLine{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(context.Background()); err != nil {
		log.Printf("Warning: redis unreachable at %s, running with degraded caching and token revocation: %v", cfg.RedisAddr, err)
	}

	// Notification hub
	hub := notify.NewHub()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)
	purchaseRepo := repository.NewPurchaseRepository(gormDB)
	orderRepo := repository.NewOrderRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	userService := service.NewUserService(userRepo)
	productService := service.NewProductService(productRepo, cacheClient, hub)
	orderService := service.NewOrderService(orderRepo, purchaseRepo, hub)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	productHandler := handler.NewProductHandler(productService)
	purchaseHandler := handler.NewPurchaseHandler(orderService)
	lineHandler := handler.NewPurchaseLineHandler(orderService)
	notifyHandler := notify.NewHandler(hub, jwtService)

	// Register routes
	router.Register(
		e,
		cfg,
		jwtService,
		tokenStore,
		authHandler,
		userHandler,
		productHandler,
		purchaseHandler,
		lineHandler,
		notifyHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
