// Package services – SubmitService
//
// This file implements the SubmitService, which turns a validated applicant
// into an eligibility decision. It verifies the uploaded document, applies
// the age gate, records the submission in the application store, and runs
// the asset/liability comparison. The arithmetic is deliberately simple and
// fully deterministic: the same applicant always yields the same verdict.
//
// Service-level errors (ErrApplicantUnderage, ErrInvalidDateOfBirth) are
// returned for predictable cases so handlers can map them to HTTP results
// consistently; any other error is an internal failure.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-loan-backend/internal/domain"
	"github.com/tbourn/go-loan-backend/internal/repo"
)

// ApplicationStore defines the persistence contract required by SubmitService.
type ApplicationStore interface {
	// SaveApplication records one submission and returns the stored row.
	SaveApplication(ctx context.Context, db *gorm.DB, a *domain.Applicant, finances []byte) (*domain.Application, error)
}

// gormStore adapts the package-level repo functions to ApplicationStore.
type gormStore struct{}

func (gormStore) SaveApplication(ctx context.Context, db *gorm.DB, a *domain.Applicant, finances []byte) (*domain.Application, error) {
	return repo.SaveApplication(ctx, db, a, finances)
}

// SubmitService evaluates loan eligibility for validated applicants.
type SubmitService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Store is the application store used by this service.
	Store ApplicationStore

	// Verifier checks the uploaded identity document.
	Verifier DocumentVerifier
	// Oracle values stock holdings.
	Oracle PriceOracle

	// MinAge is the minimum accepted applicant age in years. Age is the
	// difference of calendar years; month and day are ignored.
	MinAge int
	// QuartersPerYear annualizes the quarterly salary figure.
	QuartersPerYear int

	// Now supplies the current time; tests pin it for reproducible age math.
	Now func() time.Time
}

// NewSubmitService constructs a SubmitService with the default strategies
// and decision parameters.
func NewSubmitService(db *gorm.DB) *SubmitService {
	return &SubmitService{
		DB:              db,
		Store:           gormStore{},
		Verifier:        SizeDocumentVerifier{},
		Oracle:          FixedPriceOracle{UnitPrice: DefaultUnitPrice},
		MinAge:          18,
		QuartersPerYear: 4,
		Now:             time.Now,
	}
}

// Evaluate runs the full decision pipeline for one applicant and returns the
// verdict. The store write is a side effect: its failure is logged and does
// not block the decision. Rule order is fixed: document check, age gate,
// store write, asset/liability comparison.
func (s *SubmitService) Evaluate(ctx context.Context, a *domain.Applicant) (domain.Decision, error) {
	ok, err := s.Verifier.Verify(ctx, a.License)
	if err != nil {
		return domain.Decision{}, err
	}
	if !ok {
		return domain.Decision{}, errors.New("document verification rejected the upload")
	}

	if a.DateOfBirth.IsZero() {
		return domain.Decision{}, ErrInvalidDateOfBirth
	}
	if s.age(a.DateOfBirth) < s.MinAge {
		return domain.Decision{}, ErrApplicantUnderage
	}

	s.record(ctx, a)

	assets, err := s.assets(ctx, a)
	if err != nil {
		return domain.Decision{}, err
	}
	liabilities := a.Finances.CurrentHomeLoanDebt + a.Finances.TotalCreditCardDebt
	decision := domain.Decision{Approved: assets > liabilities}

	ObserveDecision(decision.Approved)
	return decision, nil
}

// age returns the applicant's age as a plain year difference.
func (s *SubmitService) age(dob time.Time) int {
	return s.Now().Year() - dob.Year()
}

// assets totals the annualized salary and the valued stock portfolio. An
// unpriceable holding aborts the valuation: silently dropping it would deny
// applicants over an oracle outage.
func (s *SubmitService) assets(ctx context.Context, a *domain.Applicant) (float64, error) {
	total := float64(a.Finances.SalaryPerQuarter) * float64(s.QuartersPerYear)
	for _, pos := range a.Finances.Stock {
		price, err := s.Oracle.Price(ctx, pos.Name)
		if err != nil {
			log.Error().Err(err).Str("stock", pos.Name).Msg("price lookup failed")
			return 0, err
		}
		total += float64(pos.Quantity) * price
	}
	return total, nil
}

// record persists the submission for audit. Store failures must not affect
// the applicant-facing outcome.
func (s *SubmitService) record(ctx context.Context, a *domain.Applicant) {
	finances, err := json.Marshal(a.Finances)
	if err != nil {
		log.Error().Err(err).Msg("marshal finances for audit record")
		return
	}
	row, err := s.Store.SaveApplication(ctx, s.DB, a, finances)
	if err != nil {
		log.Error().Err(err).Msg("save application record")
		return
	}
	log.Debug().Str("key", row.Key).Msg("application recorded")
}
