// Package services implements the eligibility evaluator. This file
// centralizes the service-level error values returned for predictable
// business-rule failures so handlers can map them to response codes with
// errors.Is; anything else coming out of the evaluator is an unexpected
// failure and maps to the internal sentinel.
package services

import "errors"

var (
	// ErrInvalidDateOfBirth is returned when the applicant's date of birth
	// cannot be interpreted as a calendar date.
	ErrInvalidDateOfBirth = errors.New("date of birth is not a calendar date")

	// ErrApplicantUnderage is returned when the applicant's age (current
	// year minus birth year, no month or day adjustment) is below the
	// minimum.
	ErrApplicantUnderage = errors.New("applicant is below the minimum age")
)
