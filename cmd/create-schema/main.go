package main

import (
	"context"
	"fmt"
	"log"

	"finwise-backend/bootstrap"
	"finwise-backend/config"
	"finwise-backend/logger"

	"go.uber.org/zap"
)

const profilesSQL = `
CREATE TABLE IF NOT EXISTS user_profiles (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    income NUMERIC(14, 2) NOT NULL CHECK (income >= 0),
    expenses NUMERIC(14, 2) NOT NULL CHECK (expenses >= 0),
    goals TEXT NOT NULL DEFAULT '',
    risk_tolerance VARCHAR(20) NOT NULL CHECK (risk_tolerance IN ('Conservative', 'Moderate', 'Aggressive')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

// The embedding column has no fixed dimension so any embedder can populate it
const marketDocumentsSQL = `
CREATE TABLE IF NOT EXISTS market_documents (
    id VARCHAR(64) PRIMARY KEY,
    description TEXT NOT NULL,
    risk_label VARCHAR(20) NOT NULL CHECK (risk_label IN ('Conservative', 'Moderate', 'Aggressive')),
    position INTEGER NOT NULL,
    embedding vector NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

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

	ctx := context.Background()
	pool, err := bootstrap.OpenPostgres(ctx, cfg.Database.URL, zl)
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	tables := []struct {
		name string
		sql  string
	}{
		{"user_profiles", profilesSQL},
		{"market_documents", marketDocumentsSQL},
	}
	for _, t := range tables {
		if _, err := pool.Exec(ctx, t.sql); err != nil {
			zl.Fatal("Failed to create table", zap.String("table", t.name), zap.Error(err))
		}
		zl.Info("Table ready", zap.String("table", t.name))
	}

	indexes := []struct {
		name string
		sql  string
	}{
		{"Profiles by creation time", "CREATE INDEX IF NOT EXISTS idx_user_profiles_created_at ON user_profiles(created_at);"},
		{"Profiles by risk tolerance", "CREATE INDEX IF NOT EXISTS idx_user_profiles_risk ON user_profiles(risk_tolerance);"},
		{"Documents by position", "CREATE INDEX IF NOT EXISTS idx_market_documents_position ON market_documents(position);"},
	}
	for _, idx := range indexes {
		if _, err := pool.Exec(ctx, idx.sql); err != nil {
			zl.Warn("Failed to create index", zap.String("index", idx.name), zap.Error(err))
		} else {
			zl.Info("Created index", zap.String("index", idx.name))
		}
	}

	fmt.Println("\nDatabase schema created successfully!")
	fmt.Println("   Tables: user_profiles, market_documents")
}
