// Package advice turns a user profile into advice text: a text-generation model supplies
// the phrasing and deterministic post-processing supplies every number.
package advice

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"finwise-backend/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrGenerationFailed = errors.New("failed to generate advice")

// TipMarker starts the trailing tips sentence that is always replaced
const TipMarker = "Additionally,"

var (
	exampleMarker       = regexp.MustCompile(`Example \d+:`)
	instructionFragment = regexp.MustCompile(`For '[A-Za-z]+', suggest [^.]+?\.`)
)

// TextGenerator produces free text for a prompt
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Composer generates advice and post-processes it
type Composer struct {
	generator TextGenerator
	log       *zap.Logger
}

func NewComposer(generator TextGenerator, log *zap.Logger) *Composer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Composer{generator: generator, log: log}
}

// Compose calls the generator once and post-processes its output. A generator failure is
// returned wrapped in ErrGenerationFailed; no numbers are ever taken from the model.
func (c *Composer) Compose(ctx context.Context, p *models.UserFinanceProfile) (string, error) {
	if c.generator == nil {
		return "", fmt.Errorf("%w: text generator not set", ErrGenerationFailed)
	}

	start := time.Now()
	raw, err := c.generator.Generate(ctx, BuildPrompt(p))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	c.log.Debug("advice generated",
		zap.Int("raw_length", len(raw)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return PostProcess(raw, p), nil
}

// PostProcess applies the fixed cleanup pipeline to raw model output
func PostProcess(raw string, p *models.UserFinanceProfile) string {
	savings := FormatDollars(p.SavingsAmount())

	advice := strings.ReplaceAll(raw, SavingsPlaceholder, savings)
	advice = strings.TrimSpace(exampleMarker.ReplaceAllString(advice, ""))
	advice = strings.TrimSpace(instructionFragment.ReplaceAllString(advice, ""))

	if !strings.Contains(advice, savings) {
		advice = strings.TrimSpace(SavingsSentence(p) + " " + advice)
	}

	advice = ProfileSummary(p) + advice

	if i := strings.Index(advice, TipMarker); i >= 0 {
		advice = advice[:i]
	}
	return strings.TrimSpace(advice) + " " + Tip(p)
}

// SavingsSentence states the savings amount in the format the model is asked to use
func SavingsSentence(p *models.UserFinanceProfile) string {
	return fmt.Sprintf("Save %s annually (10%% of income).", FormatDollars(p.SavingsAmount()))
}

// ProfileSummary is the deterministic opening sentence, including its trailing space
func ProfileSummary(p *models.UserFinanceProfile) string {
	return fmt.Sprintf(
		"A user has an annual income of %s, annual expenses of %s, disposable income of %s, goal \"%s\", and %s risk tolerance. ",
		FormatDollars(p.Income),
		FormatDollars(p.Expenses),
		FormatDollars(p.DisposableIncome()),
		p.Goals,
		p.RiskTolerance,
	)
}

// Tip returns the closing tip for the profile's risk tolerance
func Tip(p *models.UserFinanceProfile) string {
	switch p.RiskTolerance {
	case models.RiskConservative:
		return TipMarker + " consult a financial planner, and automate savings."
	case models.RiskAggressive:
		return TipMarker + " diversify your investments, and monitor market trends."
	default:
		disposable := p.DisposableIncome()
		return fmt.Sprintf("%s build an emergency fund of %s-%s, and review your portfolio annually.",
			TipMarker,
			FormatDollars(disposable.Div(decimal.NewFromInt(2))),
			FormatDollars(disposable),
		)
	}
}
