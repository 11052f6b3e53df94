package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"github.com/jaevanlith/lorre-app/internal/config"
	"github.com/jaevanlith/lorre-app/internal/models"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func main() {
	drop := flag.Bool("drop", false, "drop existing tables first")
	seed := flag.Bool("seed", false, "insert sample data")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqldb.Close()

	if err := sqldb.PingContext(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	if *drop {
		log.Println("Dropping tables...")
		dropTables(ctx, db)
	}

	log.Println("Creating tables...")
	createTables(ctx, db)

	if *seed {
		log.Println("Seeding sample data...")
		seedData(ctx, db)
	}

	log.Println("Done.")
}

func dropTables(ctx context.Context, db *bun.DB) {
	tables := []interface{}{
		(*models.PendingPaymentIntent)(nil),
		(*models.CheckInRecord)(nil),
		(*models.Pass)(nil),
		(*models.Owner)(nil),
	}
	for _, m := range tables {
		_, _ = db.NewDropTable().Model(m).IfExists().Cascade().Exec(ctx)
	}
}

func createTables(ctx context.Context, db *bun.DB) {
	tables := []interface{}{
		(*models.Owner)(nil),
		(*models.Pass)(nil),
		(*models.CheckInRecord)(nil),
		(*models.PendingPaymentIntent)(nil),
	}
	for _, m := range tables {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			log.Fatalf("Failed to create table for %T: %v", m, err)
		}
	}
}

func seedData(ctx context.Context, db *bun.DB) {
	owners := []models.Owner{
		{OwnerID: uuid.NewString(), Email: "piet@student.tudelft.nl", FirstName: "Piet", LastName: "Jansen"},
		{OwnerID: uuid.NewString(), Email: "anna@student.tudelft.nl", FirstName: "Anna", LastName: "de Vries"},
	}
	if _, err := db.NewInsert().Model(&owners).Exec(ctx); err != nil {
		log.Printf("Failed to seed owners: %v", err)
		return
	}

	now := time.Now()
	pass := models.Pass{
		PassID:     uuid.NewString(),
		OwnerID:    owners[0].OwnerID,
		Kind:       models.PassKindAnnual,
		ValidFrom:  now,
		ValidUntil: now.AddDate(1, 0, 0),
	}
	if _, err := db.NewInsert().Model(&pass).Exec(ctx); err != nil {
		log.Printf("Failed to seed pass: %v", err)
	}
}
