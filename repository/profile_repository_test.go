package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"finwise-backend/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const insertProfileQuery = `INSERT INTO user_profiles \(\s*income, expenses, goals, risk_tolerance\s*\) VALUES \(\s*\$1, \$2, \$3, \$4\s*\) RETURNING id, created_at`

func newProfile() *models.UserFinanceProfile {
	return &models.UserFinanceProfile{
		Income:        decimal.NewFromInt(60000),
		Expenses:      decimal.RequireFromString("54000.50"),
		Goals:         "buy a house",
		RiskTolerance: models.RiskModerate,
	}
}

func TestProfileRepository_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	id := uuid.New()
	createdAt := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(insertProfileQuery).
		WithArgs("60000", "54000.5", "buy a house", "Moderate").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id.String(), createdAt))
	mock.ExpectCommit()

	repo := NewProfileRepository(db)
	p := newProfile()
	require.NoError(t, repo.Save(context.Background(), p))

	assert.Equal(t, id, p.ID)
	assert.Equal(t, createdAt, p.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepository_Save_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(mock sqlmock.Sqlmock)
		want  string
	}{
		{
			name: "begin fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errors.New("connection refused"))
			},
			want: "failed to begin transaction",
		},
		{
			name: "insert fails and rolls back",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(insertProfileQuery).WillReturnError(errors.New("disk full"))
				mock.ExpectRollback()
			},
			want: "failed to insert user profile",
		},
		{
			name: "commit fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(insertProfileQuery).
					WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New().String(), time.Now()))
				mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))
			},
			want: "failed to commit user profile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.setup(mock)

			err = NewProfileRepository(db).Save(context.Background(), newProfile())
			assert.ErrorContains(t, err, tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestProfileRepository_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	repo := NewProfileRepository(db)

	mock.ExpectPing()
	assert.NoError(t, repo.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.Error(t, repo.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
