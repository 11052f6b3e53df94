package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jaevanlith/lorre-app/internal/config"
	"github.com/jaevanlith/lorre-app/internal/kafka"
	"github.com/jaevanlith/lorre-app/internal/logger"
	"github.com/jaevanlith/lorre-app/internal/notifier"
	pass_db "github.com/jaevanlith/lorre-app/internal/passes/db"
	passes "github.com/jaevanlith/lorre-app/internal/passes/service"
	payment_db "github.com/jaevanlith/lorre-app/internal/payments/db"
	user_db "github.com/jaevanlith/lorre-app/internal/users/db"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// staleIntentAge is how long an unresolved payment intent may linger before
// the sweep reclaims it. Abandoned redirects never call back.
const staleIntentAge = 24 * time.Hour

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("SWEEPER", "Starting maintenance sweep")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}

	cfg := config.Load()
	ctx := context.Background()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
	}
	defer sqldb.Close()

	if err := sqldb.PingContext(ctx); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
	}
	bunDB := bun.NewDB(sqldb, pgdialect.New())

	var notify notifier.Notifier = &notifier.NoopNotifier{Logger: log}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		notify = notifier.NewKafkaNotifier(producer, cfg.Kafka.Topics, log)
	}

	passService := passes.NewPassService(&pass_db.DB{Bun: bunDB}, &user_db.DB{Bun: bunDB})
	intentDB := &payment_db.DB{Bun: bunDB}

	sendExpiryReminders(ctx, passService, notify, log)
	purgeStaleIntents(ctx, intentDB, log)

	log.Info("SWEEPER", "Maintenance sweep complete")
}

// sendExpiryReminders notifies owners whose passes expire two weeks from
// today. The sweeper runs daily, so each pass is picked up exactly once.
func sendExpiryReminders(ctx context.Context, passService *passes.PassService, notify notifier.Notifier, log *logger.Logger) {
	expiring, err := passService.ExpiringInTwoWeeks(ctx, time.Now())
	if err != nil {
		log.Error("SWEEPER", fmt.Sprintf("Failed to query expiring passes: %v", err))
		return
	}

	for _, pass := range expiring {
		if err := notify.SendExpiryReminder(ctx, pass); err != nil {
			log.Error("SWEEPER", fmt.Sprintf("Failed to send expiry reminder for pass %s: %v", pass.PassID, err))
		}
	}
	log.Info("SWEEPER", fmt.Sprintf("Processed %d expiring passes", len(expiring)))
}

func purgeStaleIntents(ctx context.Context, intentDB *payment_db.DB, log *logger.Logger) {
	purged, err := intentDB.DeleteOlderThan(ctx, time.Now().Add(-staleIntentAge))
	if err != nil {
		log.Error("SWEEPER", fmt.Sprintf("Failed to purge stale payment intents: %v", err))
		return
	}
	log.Info("SWEEPER", fmt.Sprintf("Purged %d stale payment intents", purged))
}
