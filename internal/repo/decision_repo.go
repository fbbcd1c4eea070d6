// Package repo — decision records backing idempotent submits. A record maps
// an Idempotency-Key to the verdict it produced so retries can be replayed
// without re-evaluating (or re-saving) the application.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-loan-backend/internal/domain"
)

// GetDecision returns the non-expired record for key, or ErrNotFound.
func GetDecision(ctx context.Context, db *gorm.DB, key string, now time.Time) (*domain.DecisionRecord, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.DecisionRecord
	err := db.WithContext(ctx).
		Where("key = ? AND expires_at > ?", key, now).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateDecision inserts a record for key and returns ErrDuplicate when a
// record for the same key already exists (a concurrent retry won the race).
func CreateDecision(ctx context.Context, db *gorm.DB, key string, approved bool, status int, ttl time.Duration) (*domain.DecisionRecord, error) {
	now := time.Now().UTC()
	rec := &domain.DecisionRecord{
		ID:        uuid.NewString(),
		Key:       key,
		Approved:  approved,
		Status:    status,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}
