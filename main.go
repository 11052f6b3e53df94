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

	"github.com/jaevanlith/lorre-app/internal/admission"
	admission_api "github.com/jaevanlith/lorre-app/internal/admission/api"
	admissionredis "github.com/jaevanlith/lorre-app/internal/admission/redis"
	"github.com/jaevanlith/lorre-app/internal/auth"
	checkins_api "github.com/jaevanlith/lorre-app/internal/checkins/api"
	checkin_db "github.com/jaevanlith/lorre-app/internal/checkins/db"
	checkins "github.com/jaevanlith/lorre-app/internal/checkins/service"
	"github.com/jaevanlith/lorre-app/internal/config"
	"github.com/jaevanlith/lorre-app/internal/kafka"
	"github.com/jaevanlith/lorre-app/internal/logger"
	"github.com/jaevanlith/lorre-app/internal/notifier"
	"github.com/jaevanlith/lorre-app/internal/occupancy"
	occupancy_api "github.com/jaevanlith/lorre-app/internal/occupancy/api"
	passes_api "github.com/jaevanlith/lorre-app/internal/passes/api"
	pass_db "github.com/jaevanlith/lorre-app/internal/passes/db"
	passes "github.com/jaevanlith/lorre-app/internal/passes/service"
	payments_api "github.com/jaevanlith/lorre-app/internal/payments/api"
	payment_db "github.com/jaevanlith/lorre-app/internal/payments/db"
	"github.com/jaevanlith/lorre-app/internal/payments/gateway"
	payments "github.com/jaevanlith/lorre-app/internal/payments/service"
	user_db "github.com/jaevanlith/lorre-app/internal/users/db"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func connectPostgres(cfg *config.Config, log *logger.Logger) *bun.DB {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err == nil {
			err = sqldb.Ping()
			if err == nil {
				break
			}
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

func connectRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))
	return client
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Lorre backend initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	bunDB := connectPostgres(cfg, log)
	defer bunDB.Close()

	redisClient := connectRedis(ctx, cfg, log)
	defer redisClient.Close()

	var producer *kafka.Producer
	var notify notifier.Notifier = &notifier.NoopNotifier{Logger: log}
	var statusPublisher occupancy.Publisher
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		log.Info("KAFKA", "Kafka producer initialized successfully")

		requiredTopics := []string{
			cfg.Kafka.Topics.PurchaseConfirmation,
			cfg.Kafka.Topics.ExpiryReminder,
			cfg.Kafka.Topics.VenueStatus,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}

		notify = notifier.NewKafkaNotifier(producer, cfg.Kafka.Topics, log)
		statusPublisher = producer
	} else {
		log.Warn("KAFKA", "Kafka disabled, notifications will be dropped")
	}

	ownerDB := &user_db.DB{Bun: bunDB}
	passDB := &pass_db.DB{Bun: bunDB}
	checkinDB := &checkin_db.DB{Bun: bunDB}
	intentDB := &payment_db.DB{Bun: bunDB}

	passService := passes.NewPassService(passDB, ownerDB)
	ledgerService := checkins.NewLedgerService(checkinDB, ownerDB)

	counter := occupancy.NewCounter(ownerDB)
	venueStatus := occupancy.NewStatus(counter, statusPublisher, cfg.Kafka.Topics.VenueStatus, log)

	passLock := admissionredis.NewLock(redisClient, cfg.Redis.PassLockTTL)
	admissionService := admission.NewService(passDB, ownerDB, ledgerService, passLock, log)

	gatewayClient := gateway.NewClient(cfg.Gateway, log)
	paymentService := payments.NewPaymentService(gatewayClient, intentDB, passService, notify, cfg, log)

	admissionHandler := &admission_api.Handler{Verifier: admissionService, Logger: log}
	occupancyHandler := &occupancy_api.Handler{Counter: counter, Status: venueStatus, Logger: log}
	checkinHandler := &checkins_api.Handler{Ledger: ledgerService, Logger: log}
	passHandler := &passes_api.Handler{Service: passService, Logger: log}
	paymentHandler := &payments_api.Handler{Service: paymentService, Frontend: cfg.Frontend, Logger: log}

	log.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		// --- Public routes: scanners and the purchase flow ---
		r.Get("/tickets/verify/{id}", admissionHandler.VerifyPass)
		r.Get("/occupancy/total", occupancyHandler.GetTotal)
		r.Get("/venue/status", occupancyHandler.GetStatus)

		r.Post("/payments/methods", paymentHandler.PaymentMethods)
		r.Post("/payments/submit", paymentHandler.SubmitPayment)
		r.HandleFunc("/payments/callback", paymentHandler.Callback)

		// --- Authenticated routes ---
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(cfg.Auth.JWTSecret))

			r.Get("/checkins/history/{ownerId}", checkinHandler.GetHistory)
			r.Delete("/checkins/history/{ownerId}", checkinHandler.ClearHistory)

			r.Get("/passes/{id}", passHandler.GetPass)
			r.Get("/passes/owner/{ownerId}", passHandler.GetOwnerPasses)

			// --- Board-only routes ---
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole("admin"))

				r.Get("/occupancy/plus", occupancyHandler.Plus)
				r.Get("/occupancy/minus", occupancyHandler.Minus)
				r.Post("/venue/toggle-status", occupancyHandler.ToggleStatus)
				r.Post("/venue/checkout-all", occupancyHandler.CheckoutAll)

				r.Get("/checkins/count", checkinHandler.CountBetween)
				r.Delete("/checkins/{ownerId}", checkinHandler.DeleteAll)

				r.Post("/passes", passHandler.IssuePass)
				r.Delete("/passes/{id}", passHandler.DeletePass)
			})
		})
	})
	log.Info("ROUTER", "Routes registered under /api")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Lorre backend running on %s", cfg.Server.Port))
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
		log.Info("HTTP", "Lorre backend shutdown complete")
	}
}
