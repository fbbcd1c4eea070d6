// Package services – pluggable evaluation strategies.
//
// Document authenticity and stock valuation are external capabilities the
// decision rule depends on but does not own. They are injected into the
// evaluator behind narrow interfaces so the deterministic defaults below can
// be swapped for real integrations (an identity-verification provider, a
// market-data API) without touching the decision logic. A failing strategy
// is an internal failure, never a field-level validation error: by the time
// a strategy runs, the input was already confirmed well-formed.
package services

import "context"

// DocumentVerifier checks that an uploaded identity document is acceptable.
// Implementations backed by network services must honor ctx for cancellation
// and must not block indefinitely.
type DocumentVerifier interface {
	// Verify reports whether the base64 document payload is a valid
	// identity document. A false return with nil error means the document
	// was readable but rejected.
	Verify(ctx context.Context, document string) (bool, error)
}

// PriceOracle values one share of the named stock in whole currency units.
type PriceOracle interface {
	Price(ctx context.Context, name string) (float64, error)
}

// DefaultUnitPrice is the placeholder per-share valuation used until a real
// market-data integration replaces the fixed oracle.
const DefaultUnitPrice = 18

// SizeDocumentVerifier accepts any non-empty document payload. It stands in
// for a real image/authenticity check.
type SizeDocumentVerifier struct{}

// Verify implements DocumentVerifier.
func (SizeDocumentVerifier) Verify(_ context.Context, document string) (bool, error) {
	return len(document) > 0, nil
}

// FixedPriceOracle values every stock at the same unit price.
type FixedPriceOracle struct {
	UnitPrice float64
}

// Price implements PriceOracle.
func (o FixedPriceOracle) Price(context.Context, string) (float64, error) {
	return o.UnitPrice, nil
}
