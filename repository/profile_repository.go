package repository

import (
	"context"
	"database/sql"
	"fmt"

	"finwise-backend/models"
)

// ProfileRepository handles database operations for user finance profiles
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Save inserts the profile in its own transaction and fills in its id and created_at
func (r *ProfileRepository) Save(ctx context.Context, profile *models.UserFinanceProfile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO user_profiles (
			income, expenses, goals, risk_tolerance
		) VALUES (
			$1, $2, $3, $4
		) RETURNING id, created_at`

	err = tx.QueryRowContext(
		ctx, query,
		profile.Income,
		profile.Expenses,
		profile.Goals,
		string(profile.RiskTolerance),
	).Scan(&profile.ID, &profile.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user profile: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable
func (r *ProfileRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
