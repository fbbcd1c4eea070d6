// Package codes defines the closed set of machine-readable response codes
// returned by the loan decision API, together with the static mapping from
// payload fields to their missing/invalid code pair and the normalizer that
// reduces an ordered list of validation violations to exactly one code.
//
// The string values are contract: clients pattern-match on them, so they must
// never be constructed at runtime from struct or property names. Every field
// the validator knows about has a compile-time entry in the table below, and
// an exhaustiveness test asserts the emitted set equals the published
// enumeration verbatim.
package codes

import "net/http"

// Code is a machine-readable response code. Exactly one Code appears in the
// message field of every API response.
type Code string

// Sentinel codes independent of field-level validation.
const (
	// Success is the literal returned alongside the eligibility decision.
	Success Code = "success"
	// NotFound is returned when the request target does not exist
	// (routing-level failure, not a field violation).
	NotFound Code = "not-found-error"
	// Internal is returned for any unexpected failure occurring after
	// validation succeeded. Internal detail never leaks into the body.
	Internal Code = "internal-server-error"
)

// Field identifies a validated payload field. It is the key of the static
// code table; the dotted JSON path of a concrete violation is carried
// separately for logging.
type Field int

const (
	FieldFirstName Field = iota
	FieldLastName
	FieldLocation
	FieldDateOfBirth
	FieldLicenseUpload
	FieldCreditCardDebt
	FieldHomeLoanDebt
	FieldSavings
	FieldStockName
	FieldStockQuantity
	// FieldApplicantAge is a virtual field: it is never produced by the
	// schema validator, only by the eligibility evaluator's age gate.
	FieldApplicantAge

	numFields
)

// Kind classifies a violation: the field was either absent (or present with
// an empty-string/zero value) or present but out of bounds / malformed.
type Kind int

const (
	// KindMissing: absent, or empty-string/zero where non-empty is required.
	KindMissing Kind = iota
	// KindInvalid: present but failing a type, format, length, or range rule.
	KindInvalid
)

// Violation is a single raw constraint failure emitted by the schema
// validator. Violations are ordered (field declaration order) and transient;
// the normalizer consumes them once and discards all but the first.
type Violation struct {
	// Field keys the static code table.
	Field Field
	// Path is the dotted JSON path, e.g. "finances.stock.0.quantity".
	// It is informational only (logs); codes never derive from it.
	Path string
	// Kind selects the missing or invalid half of the code pair.
	Kind Kind
}

// pair holds the two published codes of one field. An empty missing code
// means the field has no missing variant in the contract.
type pair struct {
	missing Code
	invalid Code
}

// table is the static field → code-pair mapping published in the API
// contract. It is the single source of the field-level code strings.
var table = [numFields]pair{
	FieldFirstName:      {missing: "missing-first-name-error", invalid: "invalid-first-name-error"},
	FieldLastName:       {missing: "missing-last-name-error", invalid: "invalid-last-name-error"},
	FieldLocation:       {missing: "missing-location-error", invalid: "invalid-location-error"},
	FieldDateOfBirth:    {missing: "missing-date-of-birth-error", invalid: "invalid-date-of-birth-error"},
	FieldLicenseUpload:  {missing: "missing-license-upload-error", invalid: "invalid-license-upload-size-error"},
	FieldCreditCardDebt: {missing: "missing-credit-card-debt-amount-error", invalid: "invalid-credit-card-debt-amount-error"},
	FieldHomeLoanDebt:   {missing: "missing-home-loan-debt-amount-error", invalid: "invalid-home-loan-debt-amount-error"},
	FieldSavings:        {missing: "missing-savings-amount-error", invalid: "invalid-savings-amount-error"},
	FieldStockName:      {missing: "missing-stock-name-error", invalid: "invalid-stock-name-error"},
	FieldStockQuantity:  {missing: "missing-stock-quantity-error", invalid: "invalid-stock-quantity-error"},
	FieldApplicantAge:   {invalid: "invalid-applicant-age-error"},
}

// Missing returns the missing-variant code for f. The second return is false
// when the contract defines no missing code for f (applicant age).
func Missing(f Field) (Code, bool) {
	if f < 0 || f >= numFields {
		return "", false
	}
	p := table[f]
	return p.missing, p.missing != ""
}

// Invalid returns the invalid-variant code for f.
func Invalid(f Field) (Code, bool) {
	if f < 0 || f >= numFields {
		return "", false
	}
	return table[f].invalid, table[f].invalid != ""
}

// For resolves a violation to its contract code. The boolean is false only
// for a (Field, Kind) combination the contract does not define, which the
// validator never emits; callers treat that as a defect.
func For(v Violation) (Code, bool) {
	if v.Kind == KindMissing {
		return Missing(v.Field)
	}
	return Invalid(v.Field)
}

// FieldLevel reports whether c is one of the per-field validation codes
// (as opposed to a sentinel or the success literal).
func FieldLevel(c Code) bool {
	for _, p := range table {
		if c == p.missing || c == p.invalid {
			return c != ""
		}
	}
	return false
}

// Enumeration returns every code the API may emit, in a stable order:
// field-level codes in field order (missing before invalid), then the
// sentinels, then the success literal. Used by the contract test and the
// generated API documentation.
func Enumeration() []Code {
	out := make([]Code, 0, 2*int(numFields)+3)
	for f := Field(0); f < numFields; f++ {
		if c, ok := Missing(f); ok {
			out = append(out, c)
		}
		if c, ok := Invalid(f); ok {
			out = append(out, c)
		}
	}
	return append(out, NotFound, Internal, Success)
}

// Status maps a code to its HTTP status: field-level codes are client errors,
// the sentinels carry their fixed statuses, and success is 200.
func Status(c Code) int {
	switch c {
	case Success:
		return http.StatusOK
	case NotFound:
		return http.StatusNotFound
	case Internal:
		return http.StatusInternalServerError
	default:
		if FieldLevel(c) {
			return http.StatusBadRequest
		}
		// Unlisted codes are a contract defect; fail closed as internal.
		return http.StatusInternalServerError
	}
}

// Normalize reduces an ordered violation list to the single code surfaced to
// the client: duplicates are dropped preserving first occurrence, then the
// first remaining violation wins. The boolean is false when violations is
// empty or no violation resolves to a published code.
func Normalize(violations []Violation) (Code, bool) {
	for _, v := range violations {
		if c, ok := For(v); ok {
			return c, true
		}
	}
	return "", false
}
