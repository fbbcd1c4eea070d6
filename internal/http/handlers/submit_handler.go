// Loan submission HTTP handler.
//
// This file exposes the decision endpoint:
//   - POST /submit   (validate an application and return the eligibility verdict)
//
// The handler is transport-thin:
//   - decode the raw body without rejecting malformed JSON (an unreadable
//     payload is evaluated as an all-absent one, so the response is still a
//     code from the closed vocabulary)
//   - normalize schema violations to the single highest-priority code
//   - delegate the decision to SubmitService
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous completed
// decision exists for that key, the handler returns the recorded verdict and
// sets `Idempotency-Replayed: true`.
package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-loan-backend/internal/codes"
	"github.com/tbourn/go-loan-backend/internal/http/middleware"
	"github.com/tbourn/go-loan-backend/internal/repo"
	"github.com/tbourn/go-loan-backend/internal/services"
	"github.com/tbourn/go-loan-backend/internal/validation"
)

// Handlers bundles the endpoint implementations and their dependencies.
type Handlers struct {
	// Submit evaluates validated applications.
	Submit *services.SubmitService
	// DB backs the decision replay records; nil disables idempotent replays.
	DB *gorm.DB
	// IdempotencyTTL bounds how long a recorded decision can be replayed.
	IdempotencyTTL time.Duration
}

// New constructs the handler set.
func New(submit *services.SubmitService, db *gorm.DB, idemTTL time.Duration) *Handlers {
	if idemTTL <= 0 {
		idemTTL = 24 * time.Hour
	}
	return &Handlers{Submit: submit, DB: db, IdempotencyTTL: idemTTL}
}

// SubmitApplication godoc
// @ID          submitApplication
// @Summary     Submit a loan application
// @Description Validates the application payload and returns the eligibility
// @Description verdict. Every response carries exactly one code in `message`;
// @Description `approved` is present only when the code is "success".
// @Description Supports idempotency via the Idempotency-Key header (same key → same verdict).
// @Tags        Loans
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    map[string]any  true  "Application payload"
//
// @Success     200  {object}  handlers.Envelope  "Completed decision"
// @Failure     400  {object}  handlers.Envelope  "Schema or rule violation"
// @Failure     500  {object}  handlers.Envelope  "Internal error"
// @Router      /submit [post]
func (h *Handlers) SubmitApplication(c *gin.Context) {
	ctx := c.Request.Context()

	// Idempotency (replay path) – serve the recorded verdict when the
	// middleware flagged a known key.
	idemKey, _ := middleware.GetIdempotencyKey(c)
	if idemKey != "" && middleware.IsReplay(c) && h.DB != nil {
		if rec, err := repo.GetDecision(ctx, h.DB, idemKey, time.Now().UTC()); err == nil && rec != nil {
			c.Header("Idempotency-Replayed", "true")
			decided(c, rec.Approved)
			return
		}
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		// Oversized or interrupted bodies collapse to the all-absent payload;
		// the first schema violation is reported, never a code outside the
		// vocabulary.
		raw = nil
	}
	payload := validation.Decode(raw)

	if violations := validation.Validate(payload); len(violations) > 0 {
		code, ok := codes.Normalize(violations)
		if !ok {
			fail(c, codes.Internal)
			return
		}
		services.ObserveRejection(code)
		fail(c, code)
		return
	}

	applicant, err := validation.Bind(payload)
	if err != nil {
		fail(c, codes.Internal)
		return
	}

	d, err := h.Submit.Evaluate(ctx, applicant)
	if err != nil {
		code := codes.Internal
		switch {
		case errors.Is(err, services.ErrInvalidDateOfBirth):
			code, _ = codes.Invalid(codes.FieldDateOfBirth)
		case errors.Is(err, services.ErrApplicantUnderage):
			code, _ = codes.Invalid(codes.FieldApplicantAge)
		}
		if codes.FieldLevel(code) {
			services.ObserveRejection(code)
		}
		fail(c, code)
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" && h.DB != nil {
		_, _ = repo.CreateDecision(ctx, h.DB, idemKey, d.Approved, http.StatusOK, h.IdempotencyTTL)
	}

	decided(c, d.Approved)
}

// Health godoc
// @ID          health
// @Summary     Liveness and store reachability
// @Tags        Ops
// @Produce     json
// @Success     200  {object}  map[string]any
// @Router      /health [get]
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if h.DB != nil {
		if n, err := repo.CountApplications(c.Request.Context(), h.DB); err == nil {
			body["applications"] = n
		}
	}
	c.JSON(http.StatusOK, body)
}
