package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/libreriarexy/libreriarexy/internal/api"
	"github.com/libreriarexy/libreriarexy/internal/config"
	"github.com/libreriarexy/libreriarexy/internal/entity"
	"github.com/libreriarexy/libreriarexy/internal/events"
	"github.com/libreriarexy/libreriarexy/internal/ledger"
	"github.com/libreriarexy/libreriarexy/internal/notify"
	"github.com/libreriarexy/libreriarexy/internal/repository"
	"github.com/libreriarexy/libreriarexy/internal/service"
)

func connectDB(dsn string) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Printf("connected to mysql")
				return db, nil
			}
		}
		log.Printf("retry %d: failed to connect to mysql: %v", i+1, err)
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to mysql after retries: %v", err)
}

// buildStore picks the storage backend once at startup; everything else gets
// it injected and never knows which one is behind the interface.
func buildStore(cfg config.Config) (repository.Store, error) {
	switch cfg.StoreBackend {
	case "memory":
		ms := repository.NewMemoryStore(cfg.MemoryLatency)
		ms.Seed(demoProducts(), demoUsers())
		return ms, nil
	case "sheet":
		return repository.NewSheetStore(cfg.SheetPath)
	case "mysql":
		db, err := connectDB(cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		store := repository.NewSQLStore(db)
		if err := store.Migrate(context.Background()); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func demoProducts() []entity.Product {
	return []entity.Product{
		{ID: "p1", Name: "Cuaderno Premium A4", Description: "Tapa dura, 100 hojas.", Price: 4500, Cost: 2500, Stock: 50, Category: "Papelería", Active: true},
		{ID: "p2", Name: "Bolígrafo Gel Negro", Description: "Punta 0.5mm.", Price: 1200, Cost: 600, Stock: 200, Category: "Escritura", Active: true},
		{ID: "p3", Name: "Mochila Escolar", Description: "Resistente al agua.", Price: 25000, Cost: 15000, Stock: 10, Category: "Accesorios", Active: true},
	}
}

func demoUsers() []entity.User {
	adminHash, _ := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	clientHash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	return []entity.User{
		{ID: "u1", Email: "admin@libreriarexy.com", Name: "Administrador", Role: entity.RoleAdmin, Approved: true, CreatedAt: time.Now(), Password: string(adminHash)},
		{ID: "u2", Email: "cliente@demo.com", Name: "Cliente Demo", Role: entity.RoleClient, Balance: 5000, Approved: true, CreatedAt: time.Now(), Password: string(clientHash)},
	}
}

func main() {
	cfg := config.Load()

	store, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("store init failed: %v", err)
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	var mailer notify.Mailer = notify.LogMailer{}
	if cfg.SMTPHost != "" {
		mailer = notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	}

	publisher := events.NewPublisher(config.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
	defer publisher.Close()

	ldg := ledger.New(store)
	orderService := service.NewOrderService(store, ldg, mailer, publisher, rdb)
	userService := service.NewUserService(store, mailer, rdb, cfg.JWTSecret)
	catalogService := service.NewCatalogService(store, rdb)
	dashboardService := service.NewDashboardService(store)
	posService := service.NewPOSService(store, orderService)

	catalogHandler := api.NewCatalogHandler(catalogService)
	userHandler := api.NewUserHandler(userService)
	orderHandler := api.NewOrderHandler(orderService)
	adminHandler := api.NewAdminHandler(orderService, userService, dashboardService, posService)

	e := echo.New()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(10),
				Burst:     30,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	e.POST("/register", userHandler.Register)
	e.POST("/login", userHandler.Login)
	e.GET("/products", catalogHandler.ListProducts, api.OptionalAuth(cfg.JWTSecret))
	e.GET("/products/:id", catalogHandler.GetProduct, api.OptionalAuth(cfg.JWTSecret))

	auth := e.Group("", api.JWTMiddleware(cfg.JWTSecret))
	auth.GET("/profile", userHandler.Profile)
	auth.PUT("/profile", userHandler.UpdateProfile)
	auth.POST("/orders", orderHandler.PlaceOrder)
	auth.GET("/orders/mine", orderHandler.MyOrders)

	admin := e.Group("/admin", api.JWTMiddleware(cfg.JWTSecret), api.RequireAdmin)
	admin.GET("/dashboard", adminHandler.Dashboard)
	admin.GET("/orders", adminHandler.ListOrders)
	admin.PUT("/orders/:id/status", adminHandler.UpdateOrderStatus)
	admin.GET("/users", adminHandler.ListUsers)
	admin.PUT("/users/:id/approval", adminHandler.SetApproval)
	admin.PUT("/users/:id/balance", adminHandler.AdjustBalance)
	admin.POST("/pos", adminHandler.ProcessSale)

	e.Logger.Fatal(e.Start(cfg.HTTPAddr))
}
