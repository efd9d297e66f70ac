package advice

import (
	"fmt"
	"strings"

	"finwise-backend/models"
)

// SavingsPlaceholder is the token the model is asked to emit in place of the savings amount
const SavingsPlaceholder = "$[amount]"

var riskInstructions = []struct {
	risk       models.RiskTolerance
	suggestion string
}{
	{models.RiskAggressive, "suggest stocks (e.g., individual tech stocks like AAPL)."},
	{models.RiskModerate, "suggest a mix of balanced ETFs (e.g., VTI) and bonds (e.g., BND) with exact percentage allocations (e.g., 60% VTI, 40% BND)."},
	{models.RiskConservative, "suggest bonds (e.g., BND) or fixed-income securities with 100% allocation, and explain the choice (e.g., 'for stability')."},
}

var promptExamples = []string{
	"Save $6,000 annually (10% of income). Invest 50% in a balanced ETF (e.g., VTI) and 50% in bonds (e.g., BND).",
	"Save $5,000 annually (10% of income). Invest 60% in a balanced ETF (e.g., VTI) and 40% in bonds (e.g., BND).",
	"Save $8,000 annually (10% of income). Invest 100% in a bond fund (e.g., BND) for stability.",
	"Save $10,000 annually (10% of income). Invest in stocks (e.g., individual tech stocks like AAPL).",
	"Save $9,000 annually (10% of income). Invest 60% in a balanced ETF (e.g., VTI) and 40% in bonds (e.g., BND).",
}

// BuildPrompt asks the model for budgeting and investment advice for the profile
func BuildPrompt(p *models.UserFinanceProfile) string {
	var b strings.Builder

	b.WriteString("You are a financial advisor. Provide specific budgeting and investment advice based on the user's financial profile:\n")
	b.WriteString(fmt.Sprintf("1. Suggest a savings amount as exactly 10%% of their income, in the format 'Save %s annually (10%% of income).'\n", SavingsPlaceholder))
	b.WriteString("2. Recommend specific investment options based on their risk tolerance:\n")
	for _, ins := range riskInstructions {
		b.WriteString(fmt.Sprintf("   - For '%s', %s\n", ins.risk, ins.suggestion))
	}

	b.WriteString("Here are examples:\n")
	for i, ex := range promptExamples {
		b.WriteString(fmt.Sprintf("Example %d: %s\n", i+1, ex))
	}

	b.WriteString(fmt.Sprintf(
		"Now, advise the user: A user has an annual income of $%s, annual expenses of $%s, disposable income of $%s, goal '%s', and %s risk tolerance.",
		p.Income.String(),
		p.Expenses.String(),
		p.DisposableIncome().String(),
		p.Goals,
		p.RiskTolerance,
	))

	return b.String()
}
