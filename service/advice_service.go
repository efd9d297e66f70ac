package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finwise-backend/models"
	"finwise-backend/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProfileStore persists submitted profiles
type ProfileStore interface {
	Save(ctx context.Context, profile *models.UserFinanceProfile) error
}

// AdviceComposer turns a profile into final advice text
type AdviceComposer interface {
	Compose(ctx context.Context, profile *models.UserFinanceProfile) (string, error)
}

// AdviceArchiver keeps a copy of every generated advice
type AdviceArchiver interface {
	Save(ctx context.Context, rec *models.AdviceRecord) (string, error)
	Load(ctx context.Context, profileID uuid.UUID) (*models.AdviceRecord, error)
}

// AdviceService handles the financial advice flow
type AdviceService struct {
	profiles ProfileStore
	composer AdviceComposer
	archive  AdviceArchiver
	log      *zap.Logger
}

// AdviceServiceOption is a functional option for AdviceService
type AdviceServiceOption func(*AdviceService)

// WithProfileStore sets the profile store
func WithProfileStore(store ProfileStore) AdviceServiceOption {
	return func(s *AdviceService) {
		s.profiles = store
	}
}

// WithAdviceComposer sets the advice composer
func WithAdviceComposer(composer AdviceComposer) AdviceServiceOption {
	return func(s *AdviceService) {
		s.composer = composer
	}
}

// WithAdviceArchive sets the optional advice archive
func WithAdviceArchive(archive AdviceArchiver) AdviceServiceOption {
	return func(s *AdviceService) {
		s.archive = archive
	}
}

// WithAdviceLogger sets the logger
func WithAdviceLogger(log *zap.Logger) AdviceServiceOption {
	return func(s *AdviceService) {
		s.log = log
	}
}

// NewAdviceService creates a new advice service
func NewAdviceService(opts ...AdviceServiceOption) *AdviceService {
	s := &AdviceService{log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateAdviceRequest represents a request for financial advice
type GenerateAdviceRequest struct {
	Profile *models.UserFinanceProfile
}

// GenerateAdviceResult represents generated advice
type GenerateAdviceResult struct {
	ProfileID uuid.UUID
	Advice    string
}

// GenerateAdvice persists the profile and then composes advice for it.
// A profile that cannot be stored gets no advice.
func (s *AdviceService) GenerateAdvice(ctx context.Context, req GenerateAdviceRequest) (*GenerateAdviceResult, error) {
	if s.profiles == nil {
		return nil, errors.New("profile store not set")
	}
	if s.composer == nil {
		return nil, errors.New("advice composer not set")
	}
	if err := validateProfile(req.Profile); err != nil {
		return nil, err
	}

	if err := s.profiles.Save(ctx, req.Profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	text, err := s.composer.Compose(ctx, req.Profile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}

	s.archiveAdvice(ctx, req.Profile, text)

	return &GenerateAdviceResult{
		ProfileID: req.Profile.ID,
		Advice:    text,
	}, nil
}

// archiveAdvice is best effort, the response never depends on it
func (s *AdviceService) archiveAdvice(ctx context.Context, p *models.UserFinanceProfile, text string) {
	if s.archive == nil {
		return
	}

	rec := &models.AdviceRecord{
		ProfileID:        p.ID,
		RiskTolerance:    p.RiskTolerance,
		Advice:           text,
		DisposableIncome: p.DisposableIncome(),
		SavingsAmount:    p.SavingsAmount(),
		CreatedAt:        time.Now().UTC(),
	}
	key, err := s.archive.Save(ctx, rec)
	if err != nil {
		s.log.Warn("failed to archive advice",
			zap.String("profile_id", p.ID.String()),
			zap.Error(err),
		)
		return
	}
	s.log.Debug("advice archived", zap.String("key", key))
}

// ArchivedAdvice returns the advice previously generated for a profile
func (s *AdviceService) ArchivedAdvice(ctx context.Context, profileID uuid.UUID) (*models.AdviceRecord, error) {
	if s.archive == nil {
		return nil, fmt.Errorf("%w: advice archive is disabled", ErrNotFound)
	}

	rec, err := s.archive.Load(ctx, profileID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: no advice for profile %s", ErrNotFound, profileID)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return rec, nil
}

func validateProfile(p *models.UserFinanceProfile) error {
	if p == nil {
		return fmt.Errorf("%w: profile is required", ErrValidation)
	}
	if p.Income.IsNegative() {
		return fmt.Errorf("%w: income must not be negative", ErrValidation)
	}
	if p.Expenses.IsNegative() {
		return fmt.Errorf("%w: expenses must not be negative", ErrValidation)
	}
	if !p.RiskTolerance.Valid() {
		return fmt.Errorf("%w: unknown risk tolerance %q", ErrValidation, p.RiskTolerance)
	}
	return nil
}
