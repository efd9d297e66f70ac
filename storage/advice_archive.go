package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"finwise-backend/models"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("object not found")

// AdviceArchive writes each generated advice as a JSON document keyed by profile id
type AdviceArchive struct {
	store Storage
}

func NewAdviceArchive(store Storage) *AdviceArchive {
	return &AdviceArchive{store: store}
}

// Save stores the record and returns its key
func (a *AdviceArchive) Save(ctx context.Context, rec *models.AdviceRecord) (string, error) {
	if rec.ProfileID == uuid.Nil {
		return "", errors.New("advice record has no profile id")
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode advice record: %w", err)
	}

	key := adviceKey(rec.ProfileID)
	if err := a.store.Put(ctx, key, "application/json", bytes.NewReader(data)); err != nil {
		return "", err
	}
	return key, nil
}

// Load reads back the advice archived for a profile
func (a *AdviceArchive) Load(ctx context.Context, profileID uuid.UUID) (*models.AdviceRecord, error) {
	body, err := a.store.Get(ctx, adviceKey(profileID))
	if err != nil {
		return nil, err
	}
	defer body.Close()

	rec := &models.AdviceRecord{}
	if err := json.NewDecoder(body).Decode(rec); err != nil {
		return nil, fmt.Errorf("failed to decode advice record: %w", err)
	}
	return rec, nil
}
