package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lunchbox-orders/internal/admin"
	"lunchbox-orders/internal/admin/admin_api"
	"lunchbox-orders/internal/auth"
	"lunchbox-orders/internal/capacity"
	"lunchbox-orders/internal/capacity/capacity_api"
	"lunchbox-orders/internal/config"
	"lunchbox-orders/internal/customer"
	"lunchbox-orders/internal/customer/customer_api"
	customerdb "lunchbox-orders/internal/customer/db"
	"lunchbox-orders/internal/database/migrations"
	"lunchbox-orders/internal/kafka"
	"lunchbox-orders/internal/logger"
	"lunchbox-orders/internal/maintenance"
	"lunchbox-orders/internal/maintenance/maintenance_api"
	noticedb "lunchbox-orders/internal/notice/db"
	"lunchbox-orders/internal/notice/notice_api"
	"lunchbox-orders/internal/order"
	orderdb "lunchbox-orders/internal/order/db"
	orderkafka "lunchbox-orders/internal/order/kafka"
	"lunchbox-orders/internal/order/order_api"
	"lunchbox-orders/internal/settlement"
	"lunchbox-orders/internal/settlement/settlement_api"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func connectPostgres(cfg *config.Config, log *logger.Logger) *bun.DB {
	if cfg.Database.DSN == "" {
		log.Fatal("CONFIG", "POSTGRES_DSN not set")
	}

	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			log.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		if err = sqldb.Ping(); err == nil {
			break
		}

		log.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	log.Info("DATABASE", "PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

// connectRedis returns nil when Redis is not configured or unreachable; the
// capacity cache is an optimization, not a dependency.
func connectRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) *redis.Client {
	if cfg.Redis.Addr == "" {
		log.Info("REDIS", "REDIS_ADDR not set, capacity cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("REDIS", fmt.Sprintf("Redis connection error, capacity cache disabled: %v", err))
		_ = client.Close()
		return nil
	}

	log.Info("REDIS", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))
	return client
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting lunchbox order service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	bunDB := connectPostgres(cfg, log)
	defer bunDB.Close()

	migrationOpts := migrations.DefaultOptions()
	if migrationOpts.AutoMigrate {
		runner := migrations.NewRunner(bunDB, migrationOpts)
		if err := runner.RunMigrations(); err != nil {
			log.Warn("DATABASE", fmt.Sprintf("Schema migration failed: %v", err))
		}
		if err := runner.Close(); err != nil {
			log.Warn("DATABASE", fmt.Sprintf("Migration runner close: %v", err))
		}
	}

	redisClient := connectRedis(ctx, cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	var capCache *capacity.Cache
	if redisClient != nil {
		capCache = capacity.NewCache(redisClient, cfg.Redis.CapacityTTL)
	}

	var events order.EventPublisher
	if cfg.Kafka.Enabled {
		log.Info("KAFKA", fmt.Sprintf("Using Kafka brokers: %v", cfg.Kafka.Brokers))
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()

		requiredTopics := []string{
			cfg.Kafka.Topics.OrderCreated,
			cfg.Kafka.Topics.OrderCancelled,
			cfg.Kafka.Topics.OrderSettled,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}

		events = orderkafka.NewPublisher(producer, cfg.Kafka.Topics)
	} else {
		log.Info("KAFKA", "Kafka disabled, order events will not be published")
	}

	orderStore := &orderdb.DB{Bun: bunDB}
	customerStore := &customerdb.DB{Bun: bunDB}
	noticeStore := &noticedb.DB{Bun: bunDB}

	capacityService := capacity.NewService(orderStore, capCache, log)
	orderService := order.NewOrderService(orderStore, customerStore, capacityService, events, log)
	customerService := customer.NewService(customerStore)
	settlementService := settlement.NewService(orderStore, log)
	adminService := admin.NewService(orderStore, log)
	maintenanceService := maintenance.NewService(orderStore, customerStore, log)

	orderHandler := order_api.NewHandler(orderService, log)
	capacityHandler := capacity_api.NewHandler(capacityService, log)
	customerHandler := customer_api.NewHandler(customerService, log)
	settlementHandler := settlement_api.NewHandler(settlementService, log)
	adminHandler := admin_api.NewHandler(adminService, log)
	maintenanceHandler := maintenance_api.NewHandler(maintenanceService, log)
	noticeHandler := notice_api.NewHandler(noticeStore, log)

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	// --- Public routes: storefront order form and polling endpoints ---
	r.Get("/api/capacity", capacityHandler.GetCapacities)
	r.Get("/api/notices", noticeHandler.GetNotice)
	r.Post("/api/orders", orderHandler.CreateOrder)
	r.Get("/api/orders", orderHandler.ListOrders)
	r.Get("/api/orders/{orderId}", orderHandler.GetOrder)
	r.Get("/api/orders/{orderId}/qr", orderHandler.OrderQR)
	r.Get("/api/customers/by-contact", customerHandler.GetCustomerByContact)
	log.Info("ROUTER", "Public storefront routes registered under /api")

	// --- Admin routes ---
	r.Group(func(r chi.Router) {
		r.Use(auth.AdminOnly(cfg.Admin.JWTSecret))
		if cfg.Admin.JWTSecret == "" {
			log.Warn("AUTH", "ADMIN_JWT_SECRET not set, admin routes are unguarded")
		} else {
			log.Info("AUTH", "JWT middleware applied to admin routes")
		}

		r.Post("/api/capacity", capacityHandler.UpdateCapacity)

		r.Get("/api/customers", customerHandler.ListCustomers)
		r.Patch("/api/customers/{customerId}", customerHandler.UpdateCustomer)

		r.Patch("/api/orders/{orderId}", orderHandler.SettleOrderDate)
		r.Delete("/api/orders/{orderId}", orderHandler.DeleteOrder)
		r.Post("/api/orders/{orderId}/settle", orderHandler.SettleOrderDate)
		r.Post("/api/orders/{orderId}/cancel-date", orderHandler.CancelOrderDate)

		r.Get("/api/settlements", settlementHandler.GetSettlements)
		r.Patch("/api/settlements", settlementHandler.SettleAll)

		r.Route("/api/admin", func(r chi.Router) {
			r.Get("/summary", adminHandler.GetWeeklySummary)
			r.Post("/fix-sunday-dates", maintenanceHandler.FixSundayDates)
			r.Post("/trim-weekly-orders", maintenanceHandler.TrimWeeklyOrders)
			r.Post("/extend-weekly-orders", maintenanceHandler.ExtendWeeklyOrders)
			r.Post("/reset-capacity", maintenanceHandler.ResetCapacity)
		})
	})
	log.Info("ROUTER", "Admin routes registered under /api")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Lunchbox order service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "Lunchbox order service shutdown complete")
	}
}
