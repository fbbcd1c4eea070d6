// Package services – decision metrics.
//
// Domain-level Prometheus collectors for the submission flow. HTTP traffic
// metrics live in the middleware package; the counters here track business
// outcomes so dashboards can watch approval rates and the distribution of
// rejection codes independently of transport concerns. Label values are
// drawn from closed sets (two outcomes, a fixed code enumeration), so
// cardinality stays bounded.
package services

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tbourn/go-loan-backend/internal/codes"
)

var (
	// decisionsTotal counts completed eligibility evaluations by outcome.
	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_decisions_total",
			Help: "Total number of completed loan eligibility decisions.",
		},
		[]string{"outcome"}, // "approved" | "denied"
	)

	// validationFailures counts rejected submissions by response code.
	validationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validation_failures_total",
			Help: "Total number of submissions rejected before evaluation.",
		},
		[]string{"code"},
	)
)

func init() {
	prometheus.MustRegister(decisionsTotal, validationFailures)
}

// ObserveDecision records one completed evaluation.
func ObserveDecision(approved bool) {
	outcome := "denied"
	if approved {
		outcome = "approved"
	}
	decisionsTotal.WithLabelValues(outcome).Inc()
}

// ObserveRejection records one submission turned away with the given code.
func ObserveRejection(code codes.Code) {
	validationFailures.WithLabelValues(string(code)).Inc()
}
