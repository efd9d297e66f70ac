package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RiskTolerance represents a user's declared investment risk appetite
type RiskTolerance string

const (
	RiskConservative RiskTolerance = "Conservative"
	RiskModerate     RiskTolerance = "Moderate"
	RiskAggressive   RiskTolerance = "Aggressive"
)

// RiskTolerances lists every accepted risk tolerance value
var RiskTolerances = []RiskTolerance{RiskConservative, RiskModerate, RiskAggressive}

// Valid reports whether r is one of the known risk tolerances
func (r RiskTolerance) Valid() bool {
	for _, known := range RiskTolerances {
		if r == known {
			return true
		}
	}
	return false
}

// UserFinanceProfile represents a submitted user financial profile
type UserFinanceProfile struct {
	ID            uuid.UUID       `json:"id,omitempty"`
	Income        decimal.Decimal `json:"income"`
	Expenses      decimal.Decimal `json:"expenses"`
	Goals         string          `json:"goals"`
	RiskTolerance RiskTolerance   `json:"risk_tolerance"`
	CreatedAt     time.Time       `json:"created_at,omitempty"`
}

// DisposableIncome returns income minus expenses. The result may be negative.
func (p *UserFinanceProfile) DisposableIncome() decimal.Decimal {
	return p.Income.Sub(p.Expenses)
}

// savingsRate is exactly 10%
var savingsRate = decimal.New(1, -1)

// SavingsAmount returns exactly 10% of income
func (p *UserFinanceProfile) SavingsAmount() decimal.Decimal {
	return p.Income.Mul(savingsRate)
}
