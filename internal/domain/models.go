// Package domain defines the applicant record evaluated by the loan decision
// rule, plus the persistence models for the non-durable application store.
// The decision inputs are immutable once constructed and live only for the
// request that created them.
package domain

import "time"

// Applicant is the validated decision input. It is built from a payload that
// already passed schema validation and is never mutated afterwards.
type Applicant struct {
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Location    string    `json:"location"`
	DateOfBirth time.Time `json:"dateOfBirth"`
	// License is the applicant's ID document as an opaque base64 payload.
	// Only its presence and size matter to the core; authenticity checks are
	// delegated to a DocumentVerifier.
	License  string   `json:"license"`
	Finances Finances `json:"finances"`
}

// Finances holds the financial figures the eligibility rule operates on.
// Monetary amounts are in whole currency units.
type Finances struct {
	SalaryPerQuarter    int64   `json:"salaryPerQuarter"`
	TotalCreditCardDebt float64 `json:"totalCreditCardDebt"`
	CurrentHomeLoanDebt float64 `json:"currentHomeLoanDebt"`
	// TotalSavings is mandatory input but currently unused by the rule.
	TotalSavings float64 `json:"totalSavings"`
	// Stock is an ordered sequence; order is preserved from the payload.
	Stock []StockPosition `json:"stock"`
}

// StockPosition is one holding inside an applicant's portfolio.
type StockPosition struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

// Decision is the eligibility verdict. Computed once per request from a
// validated Applicant and never stored beyond the response (the idempotency
// record keeps only the boolean, not the inputs).
type Decision struct {
	Approved bool
}
