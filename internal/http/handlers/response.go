// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response envelope used across all endpoints.
// Every response, success or failure, carries exactly one machine-readable
// code in `message`; `approved` appears only on completed decisions. The
// vocabulary of codes is closed (see the codes package), so clients can
// branch on `message` without defensive string handling.
//
// Conventions:
//   - `fail()` centralizes rejection writing: it picks the HTTP status from
//     the code table and logs 5xx responses with request context.
//   - `decided()` writes the success envelope for a completed evaluation.
//
// Example rejection:
//
//	HTTP/1.1 400 Bad Request
//	{ "message": "missing-last-name-error" }
//
// Example decision:
//
//	HTTP/1.1 200 OK
//	{ "message": "success", "approved": false }
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-loan-backend/internal/codes"
	"github.com/tbourn/go-loan-backend/internal/http/middleware"
)

// Envelope is the single response shape returned by every endpoint.
//
// Fields:
//   - Message: one code from the closed enumeration ("success" or an error).
//   - Approved: the eligibility verdict; present only when Message is
//     "success".
//
// This struct is used in OpenAPI documentation via Swagger annotations.
type Envelope struct {
	// One code from the closed response vocabulary
	Message string `json:"message" example:"success"`
	// Eligibility verdict, present only on completed decisions
	Approved *bool `json:"approved,omitempty" example:"true"`
}

// fail aborts the request with the envelope for the given code. The HTTP
// status comes from the code table, so a handler can never pair a code with
// a status the contract does not allow.
//
// Server errors (>=500) are logged using the request-scoped logger from middleware.
func fail(c *gin.Context, code codes.Code) {
	status := codes.Status(code)

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", string(code)).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, Envelope{Message: string(code)})
}

// Fail is the exported variant of fail().
//
// External packages (e.g., router setup) should call Fail to return
// consistent envelopes without directly depending on unexported helpers.
func Fail(c *gin.Context, code codes.Code) { fail(c, code) }

// decided writes the success envelope carrying the verdict.
func decided(c *gin.Context, approved bool) {
	v := approved
	c.JSON(http.StatusOK, Envelope{Message: string(codes.Success), Approved: &v})
}
