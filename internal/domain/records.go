// Package domain — persistence models mapped with GORM. The backing store is
// in-memory SQLite by default: rows survive for the process lifetime only,
// which is the documented durability guarantee (none).
package domain

import "time"

// Application is the write-only audit row recorded for every submission that
// passes the age gate. It is keyed by a random hex identifier and has no read
// path in the API; the decision pipeline never depends on its success.
type Application struct {
	// Key is a random 8-hex-digit identifier, not derived from the applicant.
	Key       string    `gorm:"type:char(8);primaryKey"`
	FirstName string    `gorm:"type:varchar(50);not null"`
	LastName  string    `gorm:"type:varchar(50);not null"`
	Location  string    `gorm:"type:varchar(50);not null"`
	BirthDate time.Time `gorm:"type:DATETIME;not null"`
	// LicenseBytes records the size of the uploaded document; the payload
	// itself is not persisted.
	LicenseBytes int       `gorm:"not null"`
	Payload      []byte    `gorm:"type:blob"` // submitted finances as JSON
	CreatedAt    time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
}

// TableName implements the GORM tabler interface.
func (Application) TableName() string { return "applications" }

// DecisionRecord stores the outcome of a previously processed submission,
// keyed by the client-supplied Idempotency-Key. It enables safe retries of
// POST /submit by replaying the original verdict without re-evaluating.
type DecisionRecord struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_decision_key"`
	Approved  bool      `gorm:"not null"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (DecisionRecord) TableName() string { return "decisions" }
