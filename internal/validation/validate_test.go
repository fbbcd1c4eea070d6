package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/tbourn/go-loan-backend/internal/codes"
)

// validBody returns a payload that passes every schema rule.
func validBody() map[string]any {
	return Decode([]byte(`{
		"firstName": "Joe",
		"lastName": "Smith",
		"location": "Canberra",
		"dateOfBirth": "1990-12-03",
		"license": "aGVsbG8=",
		"finances": {
			"salaryPerQuarter": 1000,
			"totalCreditCardDebt": 0,
			"currentHomeLoanDebt": 0,
			"totalSavings": 500,
			"stock": [{"name": "ACME", "quantity": 10}]
		}
	}`))
}

func firstViolation(t *testing.T, payload map[string]any) codes.Violation {
	t.Helper()
	vs := Validate(payload)
	if len(vs) == 0 {
		t.Fatal("expected violations")
	}
	return vs[0]
}

func TestValidatePassesCleanPayload(t *testing.T) {
	if vs := Validate(validBody()); len(vs) != 0 {
		t.Fatalf("unexpected violations: %+v", vs)
	}
}

func TestDecodeMalformedBody(t *testing.T) {
	for _, raw := range []string{"", "{", "[1,2]", "null", `"str"`} {
		if m := Decode([]byte(raw)); m != nil && raw != "null" {
			t.Errorf("Decode(%q) = %v; want nil", raw, m)
		}
	}
}

func TestValidateNilPayloadReportsEveryRequiredField(t *testing.T) {
	vs := Validate(nil)
	wantOrder := []codes.Field{
		codes.FieldFirstName,
		codes.FieldLastName,
		codes.FieldLocation,
		codes.FieldDateOfBirth,
		codes.FieldLicenseUpload,
		codes.FieldCreditCardDebt,
		codes.FieldHomeLoanDebt,
		codes.FieldSavings,
	}
	if len(vs) != len(wantOrder) {
		t.Fatalf("got %d violations, want %d: %+v", len(vs), len(wantOrder), vs)
	}
	for i, f := range wantOrder {
		if vs[i].Field != f || vs[i].Kind != codes.KindMissing {
			t.Errorf("violation %d = %+v; want field %d missing", i, vs[i], f)
		}
	}
}

func TestValidateStringFields(t *testing.T) {
	long := strings.Repeat("x", 51)
	max := strings.Repeat("x", 50)

	cases := []struct {
		name  string
		key   string
		value any // nil means delete
		field codes.Field
		kind  codes.Kind
		clean bool
	}{
		{"absent first name", "firstName", nil, codes.FieldFirstName, codes.KindMissing, false},
		{"empty first name", "firstName", "", codes.FieldFirstName, codes.KindMissing, false},
		{"long first name", "firstName", long, codes.FieldFirstName, codes.KindInvalid, false},
		{"max-length first name ok", "firstName", max, 0, 0, true},
		{"numeric first name", "firstName", json.Number("7"), codes.FieldFirstName, codes.KindInvalid, false},
		{"null last name", "lastName", nil2(), codes.FieldLastName, codes.KindInvalid, false},
		{"absent last name", "lastName", nil, codes.FieldLastName, codes.KindMissing, false},
		{"long location", "location", long, codes.FieldLocation, codes.KindInvalid, false},
		{"empty location", "location", "", codes.FieldLocation, codes.KindMissing, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := validBody()
			if tc.value == nil {
				delete(payload, tc.key)
			} else if _, isNull := tc.value.(nullValue); isNull {
				payload[tc.key] = nil
			} else {
				payload[tc.key] = tc.value
			}
			vs := Validate(payload)
			if tc.clean {
				if len(vs) != 0 {
					t.Fatalf("unexpected violations: %+v", vs)
				}
				return
			}
			if len(vs) != 1 || vs[0].Field != tc.field || vs[0].Kind != tc.kind {
				t.Fatalf("violations = %+v; want field %d kind %d", vs, tc.field, tc.kind)
			}
		})
	}
}

// nullValue marks an explicit JSON null in table cases (distinct from the
// nil that means "delete the key").
type nullValue struct{}

func nil2() nullValue { return nullValue{} }

func TestValidateDateOfBirth(t *testing.T) {
	cases := []struct {
		name  string
		value any
		kind  codes.Kind
		clean bool
	}{
		{"absent", nil, codes.KindMissing, false},
		{"empty", "", codes.KindMissing, false},
		{"not a date", "yesterday", codes.KindInvalid, false},
		{"wrong layout", "03/12/1990", codes.KindInvalid, false},
		{"time suffix rejected", "1990-12-03T00:00:00Z", codes.KindInvalid, false},
		{"impossible day", "1990-02-31", codes.KindInvalid, false},
		{"numeric", json.Number("1990"), codes.KindInvalid, false},
		{"valid", "1990-12-03", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := validBody()
			if tc.value == nil {
				delete(payload, "dateOfBirth")
			} else {
				payload["dateOfBirth"] = tc.value
			}
			vs := Validate(payload)
			if tc.clean {
				if len(vs) != 0 {
					t.Fatalf("unexpected violations: %+v", vs)
				}
				return
			}
			if len(vs) != 1 || vs[0].Field != codes.FieldDateOfBirth || vs[0].Kind != tc.kind {
				t.Fatalf("violations = %+v; want dateOfBirth kind %d", vs, tc.kind)
			}
		})
	}
}

func TestValidateLicense(t *testing.T) {
	payload := validBody()
	delete(payload, "license")
	if v := firstViolation(t, payload); v.Field != codes.FieldLicenseUpload || v.Kind != codes.KindMissing {
		t.Fatalf("absent license = %+v", v)
	}

	payload = validBody()
	payload["license"] = ""
	if v := firstViolation(t, payload); v.Field != codes.FieldLicenseUpload || v.Kind != codes.KindMissing {
		t.Fatalf("empty license = %+v", v)
	}

	// Oversize by a single byte is invalid, never missing.
	payload = validBody()
	payload["license"] = strings.Repeat("A", 5_000_001)
	if v := firstViolation(t, payload); v.Field != codes.FieldLicenseUpload || v.Kind != codes.KindInvalid {
		t.Fatalf("oversize license = %+v", v)
	}

	// At the boundary the payload is clean.
	payload = validBody()
	payload["license"] = strings.Repeat("A", 5_000_000)
	if vs := Validate(payload); len(vs) != 0 {
		t.Fatalf("boundary license: %+v", vs)
	}
}

func TestValidateAmounts(t *testing.T) {
	for _, key := range []string{"totalCreditCardDebt", "currentHomeLoanDebt", "totalSavings"} {
		payload := validBody()
		fin := payload["finances"].(map[string]any)
		delete(fin, key)
		if v := firstViolation(t, payload); v.Kind != codes.KindMissing {
			t.Errorf("absent %s = %+v; want missing", key, v)
		}

		payload = validBody()
		payload["finances"].(map[string]any)[key] = json.Number("-0.01")
		if v := firstViolation(t, payload); v.Kind != codes.KindInvalid {
			t.Errorf("negative %s = %+v; want invalid", key, v)
		}

		payload = validBody()
		payload["finances"].(map[string]any)[key] = "plenty"
		if v := firstViolation(t, payload); v.Kind != codes.KindInvalid {
			t.Errorf("string %s = %+v; want invalid", key, v)
		}

		// Zero passes: the amounts only require non-negativity.
		payload = validBody()
		payload["finances"].(map[string]any)[key] = json.Number("0")
		if vs := Validate(payload); len(vs) != 0 {
			t.Errorf("zero %s: %+v", key, vs)
		}
	}
}

func TestValidateAbsentFinancesReportsNestedFields(t *testing.T) {
	payload := validBody()
	delete(payload, "finances")
	vs := Validate(payload)
	want := []codes.Field{codes.FieldCreditCardDebt, codes.FieldHomeLoanDebt, codes.FieldSavings}
	if len(vs) != len(want) {
		t.Fatalf("violations = %+v", vs)
	}
	for i, f := range want {
		if vs[i].Field != f || vs[i].Kind != codes.KindMissing {
			t.Errorf("violation %d = %+v; want field %d missing", i, vs[i], f)
		}
	}
}

func TestValidateStock(t *testing.T) {
	set := func(q string, name any) map[string]any {
		payload := validBody()
		entry := map[string]any{}
		if name != nil {
			entry["name"] = name
		}
		if q != "" {
			entry["quantity"] = json.Number(q)
		}
		payload["finances"].(map[string]any)["stock"] = []any{entry}
		return payload
	}

	cases := []struct {
		name  string
		body  map[string]any
		field codes.Field
		kind  codes.Kind
	}{
		{"zero quantity is missing", set("0", "ACME"), codes.FieldStockQuantity, codes.KindMissing},
		{"negative quantity", set("-1", "ACME"), codes.FieldStockQuantity, codes.KindInvalid},
		{"too many shares", set("1001", "ACME"), codes.FieldStockQuantity, codes.KindInvalid},
		{"fractional quantity", set("1.5", "ACME"), codes.FieldStockQuantity, codes.KindInvalid},
		{"absent quantity", set("", "ACME"), codes.FieldStockQuantity, codes.KindMissing},
		{"empty name", set("10", ""), codes.FieldStockName, codes.KindMissing},
		{"absent name", set("10", nil), codes.FieldStockName, codes.KindMissing},
		{"long name", set("10", strings.Repeat("z", 51)), codes.FieldStockName, codes.KindInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := firstViolation(t, tc.body)
			if v.Field != tc.field || v.Kind != tc.kind {
				t.Fatalf("violation = %+v; want field %d kind %d", v, tc.field, tc.kind)
			}
		})
	}

	// Boundary quantities pass.
	for _, q := range []string{"1", "1000"} {
		if vs := Validate(set(q, "ACME")); len(vs) != 0 {
			t.Errorf("quantity %s: %+v", q, vs)
		}
	}

	// Absent stock is an empty portfolio, not a violation.
	payload := validBody()
	delete(payload["finances"].(map[string]any), "stock")
	if vs := Validate(payload); len(vs) != 0 {
		t.Errorf("absent stock: %+v", vs)
	}
}

func TestValidateStockPathCarriesIndex(t *testing.T) {
	payload := validBody()
	payload["finances"].(map[string]any)["stock"] = []any{
		map[string]any{"name": "ACME", "quantity": json.Number("10")},
		map[string]any{"name": "", "quantity": json.Number("5")},
	}
	vs := Validate(payload)
	if len(vs) != 1 {
		t.Fatalf("violations = %+v", vs)
	}
	if vs[0].Path != "finances.stock.1.name" {
		t.Fatalf("path = %q", vs[0].Path)
	}
}

func TestValidateCollectsAllViolationsInOrder(t *testing.T) {
	payload := validBody()
	delete(payload, "lastName")
	payload["location"] = strings.Repeat("q", 60)
	payload["finances"].(map[string]any)["totalSavings"] = json.Number("-5")

	vs := Validate(payload)
	if len(vs) != 3 {
		t.Fatalf("violations = %+v", vs)
	}
	if vs[0].Field != codes.FieldLastName || vs[1].Field != codes.FieldLocation || vs[2].Field != codes.FieldSavings {
		t.Fatalf("unexpected order: %+v", vs)
	}
}

func TestSalaryIsUnconstrained(t *testing.T) {
	payload := validBody()
	delete(payload["finances"].(map[string]any), "salaryPerQuarter")
	if vs := Validate(payload); len(vs) != 0 {
		t.Fatalf("absent salary: %+v", vs)
	}
	payload["finances"].(map[string]any)["salaryPerQuarter"] = "lots"
	if vs := Validate(payload); len(vs) != 0 {
		t.Fatalf("string salary: %+v", vs)
	}
}
