// Package validation implements the schema validator for loan submissions.
// It operates on the untyped JSON payload (decoded with json.Number so that
// integer bounds are exact) and produces an ordered list of raw constraint
// violations; reducing that list to a single client-facing code is the
// normalizer's job (internal/codes).
//
// Evaluation is per field, in payload declaration order, without
// short-circuiting: firstName, lastName, location, dateOfBirth, license,
// then the finances amounts, then each stock entry. Absence is always
// checked before bounds, so a field can never be reported invalid when it
// is missing.
package validation

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/tbourn/go-loan-backend/internal/codes"
)

// Field length and range bounds from the API contract.
const (
	minNameLen = 1
	maxNameLen = 50

	// License size bounds, measured over the base64-encoded string.
	minLicenseBytes = 1
	maxLicenseBytes = 5_000_000

	minStockQuantity = 1
	maxStockQuantity = 1000

	// dobLayout is the only accepted calendar date format.
	dobLayout = "2006-01-02"
)

// Decode parses a raw JSON body into the untyped payload the validator
// consumes. Numbers are kept as json.Number. A malformed or empty body
// returns nil, which Validate treats as an all-absent payload.
func Decode(raw []byte) map[string]any {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil
	}
	return payload
}

// Validate checks payload against the schema and returns every violation in
// declaration order. A nil payload yields a missing violation for each
// required field. The function is pure: no I/O, no mutation of payload.
func Validate(payload map[string]any) []codes.Violation {
	var out []codes.Violation

	out = appendString(out, payload, "firstName", codes.FieldFirstName)
	out = appendString(out, payload, "lastName", codes.FieldLastName)
	out = appendString(out, payload, "location", codes.FieldLocation)
	out = appendDOB(out, payload)
	out = appendLicense(out, payload)

	finances, _ := payload["finances"].(map[string]any)
	out = appendAmount(out, finances, "totalCreditCardDebt", codes.FieldCreditCardDebt)
	out = appendAmount(out, finances, "currentHomeLoanDebt", codes.FieldHomeLoanDebt)
	out = appendAmount(out, finances, "totalSavings", codes.FieldSavings)
	// salaryPerQuarter carries no published code pair and is intentionally
	// unconstrained here; Bind treats a non-numeric salary as zero.

	if finances != nil {
		if stock, ok := finances["stock"].([]any); ok {
			for i, entry := range stock {
				out = appendStockEntry(out, entry, i)
			}
		}
		// An absent or non-array stock field is an empty portfolio.
	}

	return out
}

// appendString validates a required 1–50 character string field at the top
// level of the payload.
func appendString(out []codes.Violation, payload map[string]any, key string, field codes.Field) []codes.Violation {
	v, present := lookup(payload, key)
	if !present {
		return append(out, codes.Violation{Field: field, Path: key, Kind: codes.KindMissing})
	}
	s, isString := v.(string)
	if isString && s == "" {
		return append(out, codes.Violation{Field: field, Path: key, Kind: codes.KindMissing})
	}
	if !isString || utf8.RuneCountInString(s) > maxNameLen {
		return append(out, codes.Violation{Field: field, Path: key, Kind: codes.KindInvalid})
	}
	return out
}

// appendDOB validates dateOfBirth: required, and must parse as a YYYY-MM-DD
// calendar date. A present but unparseable value is invalid, never missing.
func appendDOB(out []codes.Violation, payload map[string]any) []codes.Violation {
	const key = "dateOfBirth"
	v, present := lookup(payload, key)
	if !present {
		return append(out, codes.Violation{Field: codes.FieldDateOfBirth, Path: key, Kind: codes.KindMissing})
	}
	s, isString := v.(string)
	if isString && s == "" {
		return append(out, codes.Violation{Field: codes.FieldDateOfBirth, Path: key, Kind: codes.KindMissing})
	}
	if !isString {
		return append(out, codes.Violation{Field: codes.FieldDateOfBirth, Path: key, Kind: codes.KindInvalid})
	}
	if _, err := time.Parse(dobLayout, s); err != nil {
		return append(out, codes.Violation{Field: codes.FieldDateOfBirth, Path: key, Kind: codes.KindInvalid})
	}
	return out
}

// appendLicense validates the base64 document upload by encoded size.
func appendLicense(out []codes.Violation, payload map[string]any) []codes.Violation {
	const key = "license"
	v, present := lookup(payload, key)
	if !present {
		return append(out, codes.Violation{Field: codes.FieldLicenseUpload, Path: key, Kind: codes.KindMissing})
	}
	s, isString := v.(string)
	if isString && s == "" {
		return append(out, codes.Violation{Field: codes.FieldLicenseUpload, Path: key, Kind: codes.KindMissing})
	}
	if !isString || len(s) < minLicenseBytes || len(s) > maxLicenseBytes {
		return append(out, codes.Violation{Field: codes.FieldLicenseUpload, Path: key, Kind: codes.KindInvalid})
	}
	return out
}

// appendAmount validates a required non-negative monetary amount inside
// finances. When the finances object itself is absent the amount is missing.
func appendAmount(out []codes.Violation, finances map[string]any, key string, field codes.Field) []codes.Violation {
	path := "finances." + key
	v, present := lookup(finances, key)
	if !present {
		return append(out, codes.Violation{Field: field, Path: path, Kind: codes.KindMissing})
	}
	f, ok := number(v)
	if !ok || f < 0 {
		return append(out, codes.Violation{Field: field, Path: path, Kind: codes.KindInvalid})
	}
	return out
}

// appendStockEntry validates one position of the stock sequence. Violations
// carry the element index in their path.
func appendStockEntry(out []codes.Violation, entry any, i int) []codes.Violation {
	base := "finances.stock." + strconv.Itoa(i) + "."
	pos, _ := entry.(map[string]any)

	// name: 1–50 characters.
	if v, present := lookup(pos, "name"); !present {
		out = append(out, codes.Violation{Field: codes.FieldStockName, Path: base + "name", Kind: codes.KindMissing})
	} else if s, isString := v.(string); isString && s == "" {
		out = append(out, codes.Violation{Field: codes.FieldStockName, Path: base + "name", Kind: codes.KindMissing})
	} else if !isString || utf8.RuneCountInString(s) > maxNameLen {
		out = append(out, codes.Violation{Field: codes.FieldStockName, Path: base + "name", Kind: codes.KindInvalid})
	}

	// quantity: integer in [1,1000]. A literal zero counts as missing
	// (presence is checked before bounds).
	if v, present := lookup(pos, "quantity"); !present {
		out = append(out, codes.Violation{Field: codes.FieldStockQuantity, Path: base + "quantity", Kind: codes.KindMissing})
	} else if q, ok := integer(v); !ok {
		out = append(out, codes.Violation{Field: codes.FieldStockQuantity, Path: base + "quantity", Kind: codes.KindInvalid})
	} else if q == 0 {
		out = append(out, codes.Violation{Field: codes.FieldStockQuantity, Path: base + "quantity", Kind: codes.KindMissing})
	} else if q < minStockQuantity || q > maxStockQuantity {
		out = append(out, codes.Violation{Field: codes.FieldStockQuantity, Path: base + "quantity", Kind: codes.KindInvalid})
	}

	return out
}

// lookup fetches key from m, reporting presence. JSON null is treated as a
// present value (it will fail the type check of its field, yielding invalid).
func lookup(m map[string]any, key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m[key]
	return v, ok
}

// number extracts a float64 from a json.Number value.
func number(v any) (float64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// integer extracts an int64 from a json.Number value, rejecting fractions.
func integer(v any) (int64, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return i, true
}
