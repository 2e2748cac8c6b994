package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"paperapi/internal/config"
	"paperapi/internal/database"
	"paperapi/internal/database/migration"
	"paperapi/internal/model"
	"paperapi/internal/repository/postgres"
)

// Offline seeding routine: clears the catalog and inserts a fixed set of
// records. File paths reference blobs expected to be present in the blob
// store already; the catalog checks their existence at access time.
var papers = []model.Paper{
	{Title: "Electricity and Magnetism", Course: "PHY 212", Year: 2018, FilePath: "phyc212-2018-resit.pdf"},
	{Title: "Electricity and Magnetism", Course: "PHY 212", Year: 2020, FilePath: "phyc212-2020.pdf"},
	{Title: "Electricity and Magnetism", Course: "PHY 212", Year: 2018, FilePath: "phyc212-2018.pdf"},
	{Title: "Electricity and Magnetism", Course: "PHY 212", Year: 2019, FilePath: "phyc212-2019.pdf"},
	{Title: "Electricity and Magnetism", Course: "PHY 212", Year: 2016, FilePath: "phyc212-2016.pdf"},
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	repo := postgres.NewPaperPostgres(db)

	// Clear existing
	if err := repo.DeleteAll(ctx); err != nil {
		log.Fatalf("failed to clear papers: %v", err)
	}

	for _, p := range papers {
		p.ID = uuid.New().String()
		p.CreatedAt = time.Now().UTC()
		if _, err := repo.Create(ctx, &p); err != nil {
			log.Fatalf("failed to seed paper %q (%d): %v", p.Title, p.Year, err)
		}
	}

	log.Printf("seeded %d papers", len(papers))
}
