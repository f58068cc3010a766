// Command migrate bootstraps a development database: it creates the tables
// from the bun models and optionally drops them first or seeds sample data.
// Production schemas are managed by the versioned SQL files in ./migrations.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"lunchbox-orders/internal/config"
	"lunchbox-orders/internal/dates"
	"lunchbox-orders/internal/models"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func main() {
	drop := flag.Bool("drop", false, "drop tables before creating them")
	seed := flag.Bool("seed", false, "insert sample data after creating tables")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	if cfg.Database.DSN == "" {
		log.Fatal("POSTGRES_DSN is not set")
	}

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
		(*models.Notice)(nil),
		(*models.DailyCapacityRow)(nil),
		(*models.Customer)(nil),
		(*models.Order)(nil),
	}
	for _, m := range tables {
		_, _ = db.NewDropTable().Model(m).IfExists().Cascade().Exec(ctx)
	}
}

func createTables(ctx context.Context, db *bun.DB) {
	tables := []interface{}{
		(*models.Order)(nil),
		(*models.Customer)(nil),
		(*models.DailyCapacityRow)(nil),
		(*models.Notice)(nil),
	}
	for _, m := range tables {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			log.Fatalf("Failed to create table for %T: %v", m, err)
		}
	}
}

func seedData(ctx context.Context, db *bun.DB) {
	now := time.Now()
	monday := dates.NextMonday(now)

	customerID := uuid.New().String()
	orderID := uuid.New().String()
	settlements := []models.OrderSettlement{
		{Date: dates.Format(monday)},
		{Date: dates.Format(monday.AddDate(0, 0, 2))},
	}

	order := models.Order{
		ID:            orderID,
		CustomerID:    customerID,
		CustomerName:  "홍길동",
		Contact:       "0400000000",
		Location:      models.LocationKingsPark,
		PaymentMethod: models.PaymentCash,
		Settlements:   settlements,
		IsWeeklyOrder: true,
		CreatedAt:     now,
	}
	_, _ = db.NewInsert().Model(&order).Exec(ctx)

	customer := models.Customer{
		ID:            customerID,
		Name:          "홍길동",
		Contact:       "0400000000",
		Location:      models.LocationKingsPark,
		IsWeeklyOrder: true,
		Orders: []models.CustomerOrder{
			{
				OrderID:       orderID,
				Settlements:   settlements,
				IsWeeklyOrder: true,
				CreatedAt:     now.Format(time.RFC3339),
			},
		},
		CreatedAt: now,
	}
	_, _ = db.NewInsert().Model(&customer).Exec(ctx)

	notice := models.Notice{
		ID:        uuid.New().String(),
		Title:     "배달 안내",
		Content:   "월요일부터 금요일까지 배달합니다. 주문은 하루 30개까지 받습니다.",
		IsActive:  true,
		CreatedAt: now,
	}
	_, _ = db.NewInsert().Model(&notice).Exec(ctx)
}
