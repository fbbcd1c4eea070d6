package validation

import (
	"errors"
	"time"

	"github.com/tbourn/go-loan-backend/internal/domain"
)

// ErrUnvalidated is returned by Bind when the payload does not satisfy the
// schema. Callers must run Validate first and only bind clean payloads.
var ErrUnvalidated = errors.New("payload failed schema validation")

// Bind constructs the immutable applicant record from a payload that has
// already passed Validate. It re-checks nothing beyond what it needs to
// extract typed values; a payload with outstanding violations yields
// ErrUnvalidated rather than a partially populated record.
func Bind(payload map[string]any) (*domain.Applicant, error) {
	if len(Validate(payload)) > 0 {
		return nil, ErrUnvalidated
	}

	dobRaw, _ := payload["dateOfBirth"].(string)
	dob, err := time.Parse(dobLayout, dobRaw)
	if err != nil {
		return nil, ErrUnvalidated
	}

	a := &domain.Applicant{
		FirstName:   payload["firstName"].(string),
		LastName:    payload["lastName"].(string),
		Location:    payload["location"].(string),
		DateOfBirth: dob,
		License:     payload["license"].(string),
	}

	finances, _ := payload["finances"].(map[string]any)
	if salary, ok := number(finances["salaryPerQuarter"]); ok {
		a.Finances.SalaryPerQuarter = int64(salary)
	}
	a.Finances.TotalCreditCardDebt, _ = number(finances["totalCreditCardDebt"])
	a.Finances.CurrentHomeLoanDebt, _ = number(finances["currentHomeLoanDebt"])
	a.Finances.TotalSavings, _ = number(finances["totalSavings"])

	if stock, ok := finances["stock"].([]any); ok {
		a.Finances.Stock = make([]domain.StockPosition, 0, len(stock))
		for _, entry := range stock {
			pos := entry.(map[string]any)
			q, _ := integer(pos["quantity"])
			a.Finances.Stock = append(a.Finances.Stock, domain.StockPosition{
				Name:     pos["name"].(string),
				Quantity: q,
			})
		}
	}

	return a, nil
}
