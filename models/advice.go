package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdviceRecord is the archived form of a generated piece of advice
type AdviceRecord struct {
	ProfileID        uuid.UUID       `json:"profile_id"`
	RiskTolerance    RiskTolerance   `json:"risk_tolerance"`
	Advice           string          `json:"advice"`
	DisposableIncome decimal.Decimal `json:"disposable_income"`
	SavingsAmount    decimal.Decimal `json:"savings_amount"`
	CreatedAt        time.Time       `json:"created_at"`
}
