// Package repo — write path for submitted applications.
//
// The store is an audit sink: every submission that reaches the evaluator is
// recorded under a random key, concurrent writers never contend on the same
// key, and nothing in the decision pipeline reads the rows back. Failures
// here are logged by the caller and never surface to the client.
package repo

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-loan-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist. It aliases
// gorm.ErrRecordNotFound for consistency across services and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates a unique-key violation on insert.
var ErrDuplicate = errors.New("duplicate")

// keyAttempts bounds retries on the (vanishingly unlikely) random-key clash.
const keyAttempts = 3

// SaveApplication records a submission under a fresh random 8-hex-digit key.
// The license payload itself is not persisted, only its size; the finances
// subtree is stored as the submitted JSON.
func SaveApplication(ctx context.Context, db *gorm.DB, a *domain.Applicant, finances []byte) (*domain.Application, error) {
	var lastErr error
	for i := 0; i < keyAttempts; i++ {
		row := &domain.Application{
			Key:          randomKey(),
			FirstName:    a.FirstName,
			LastName:     a.LastName,
			Location:     a.Location,
			BirthDate:    a.DateOfBirth,
			LicenseBytes: len(a.License),
			Payload:      finances,
		}
		if err := db.WithContext(ctx).Create(row).Error; err != nil {
			if isUniqueViolation(err) {
				lastErr = ErrDuplicate
				continue
			}
			return nil, err
		}
		return row, nil
	}
	return nil, lastErr
}

// CountApplications returns the number of recorded submissions. Used by the
// health endpoint and tests; there is deliberately no per-row read path.
func CountApplications(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Application{}).Count(&total).Error
	return total, err
}

// randomKey returns 4 random bytes hex-encoded (8 characters).
func randomKey() string {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// an all-zero key still satisfies the store's (weak) contract.
		return "00000000"
	}
	return hex.EncodeToString(b[:])
}

// isUniqueViolation detects unique-constraint errors across driver wordings.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique")
}
