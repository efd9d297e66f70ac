package main

import (
	"context"
	"fmt"
	"log"

	"finwise-backend/bootstrap"
	"finwise-backend/config"
	"finwise-backend/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Populates the configured persistent index so servers can start with index.build_on_start=false
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zl, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.Index.Backend == "memory" {
		zl.Fatal("Index backend is memory; set INDEX_BACKEND to pgvector or elasticsearch")
	}

	ctx := context.Background()

	var pool *pgxpool.Pool
	if cfg.Index.Backend == "pgvector" {
		pool, err = bootstrap.OpenPostgres(ctx, cfg.Database.URL, zl)
		if err != nil {
			zl.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		var tableExists bool
		err = pool.QueryRow(ctx, "SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = 'market_documents')").Scan(&tableExists)
		if err != nil {
			zl.Fatal("Failed to check table existence", zap.Error(err))
		}
		if !tableExists {
			zl.Fatal("market_documents table does not exist. Please run: go run cmd/create-schema/main.go")
		}
	}

	embedder, err := bootstrap.NewEmbedder(cfg)
	if err != nil {
		zl.Fatal("Failed to initialize embedder", zap.Error(err))
	}
	index, err := bootstrap.NewIndex(cfg, pool)
	if err != nil {
		zl.Fatal("Failed to initialize index", zap.Error(err))
	}

	docs, err := bootstrap.LoadIndex(ctx, bootstrap.NewMarketDataProvider(cfg), embedder, index,
		bootstrap.CorpusOptions{Build: true}, zl)
	if err != nil {
		zl.Fatal("Failed to build index", zap.Error(err))
	}

	fmt.Printf("\nIndexed %d market documents into %s using %s embeddings\n",
		len(docs), index.Name(), embedder.Name())
	for _, d := range docs {
		fmt.Printf("   [%s] %s\n", d.RiskLabel, d.Description)
	}
}
