package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gocondprob/adapters/api"
	"gocondprob/adapters/db/postgres/migrations"
	"gocondprob/adapters/postgres"
	"gocondprob/adapters/rng"
	"gocondprob/app"
	"gocondprob/internal/config"
	"gocondprob/internal/errors"
	"gocondprob/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// initDatabase connects to PostgreSQL and applies pending migrations
func initDatabase(ctx context.Context, appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	db.SetMaxOpenConns(appConfig.Database.MaxOpenConns)

	applied, err := migrations.NewMigrator(db).Up(ctx)
	if err != nil {
		db.Close()
		return nil, errors.DatabaseError("database migration failed", err)
	}
	for _, v := range applied {
		log.Printf("✅ Applied migration %s", v)
	}
	return db, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var repo ports.AnalysisRepository
	if appConfig.HasDatabase() {
		db, err := initDatabase(ctx, appConfig)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		repo = postgres.NewAnalysisRepository(db)
	} else {
		log.Println("DATABASE_URL not set, analyses will not be stored")
	}

	svc := app.NewAnalysisService(repo, rng.NewAdapter(), app.AnalysisConfig{
		MaxConcurrency: appConfig.Analysis.MaxConcurrency,
		BaselineDraws:  appConfig.Analysis.BaselineDraws,
		BaselineSeed:   appConfig.Analysis.BaselineSeed,
		BaselineStep:   app.DefaultAnalysisConfig().BaselineStep,
	})

	server := api.NewServer(svc, appConfig.Analysis.DefaultWindow)
	if err := server.ListenAndServe(ctx, ":"+appConfig.Server.Port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}
