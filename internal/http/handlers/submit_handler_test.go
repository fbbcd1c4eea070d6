package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-loan-backend/internal/domain"
	"github.com/tbourn/go-loan-backend/internal/http/middleware"
	"github.com/tbourn/go-loan-backend/internal/repo"
	"github.com/tbourn/go-loan-backend/internal/services"
)

// stubStore keeps handler tests free of database setup for the plain paths.
type stubStore struct{ saves int }

func (s *stubStore) SaveApplication(_ context.Context, _ *gorm.DB, _ *domain.Applicant, _ []byte) (*domain.Application, error) {
	s.saves++
	return &domain.Application{Key: "deadbeef"}, nil
}

func newTestService(store services.ApplicationStore) *services.SubmitService {
	svc := services.NewSubmitService(nil)
	svc.Store = store
	svc.Now = func() time.Time { return time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func newTestRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/submit", h.SubmitApplication)
	r.GET("/health", h.Health)
	return r
}

func validBodyJSON() string {
	return `{
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
	}`
}

func postSubmit(r *gin.Engine, body string, hdr map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submit", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestSubmit_ApprovedDecision(t *testing.T) {
	store := &stubStore{}
	r := newTestRouter(New(newTestService(store), nil, 0))

	w := postSubmit(r, validBodyJSON(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	body := decodeEnvelope(t, w)
	if body["message"] != "success" || body["approved"] != true {
		t.Fatalf("unexpected envelope: %v", body)
	}
	if store.saves != 1 {
		t.Errorf("saves = %d; want 1", store.saves)
	}
}

func TestSubmit_DeniedDecision(t *testing.T) {
	r := newTestRouter(New(newTestService(&stubStore{}), nil, 0))

	var payload map[string]any
	if err := json.Unmarshal([]byte(validBodyJSON()), &payload); err != nil {
		t.Fatal(err)
	}
	payload["finances"].(map[string]any)["currentHomeLoanDebt"] = 5000.0
	payload["finances"].(map[string]any)["stock"] = []any{}
	raw, _ := json.Marshal(payload)

	w := postSubmit(r, string(raw), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	body := decodeEnvelope(t, w)
	if body["message"] != "success" || body["approved"] != false {
		t.Fatalf("unexpected envelope: %v", body)
	}
}

func TestSubmit_MissingLastName(t *testing.T) {
	r := newTestRouter(New(newTestService(&stubStore{}), nil, 0))

	var payload map[string]any
	if err := json.Unmarshal([]byte(validBodyJSON()), &payload); err != nil {
		t.Fatal(err)
	}
	delete(payload, "lastName")
	raw, _ := json.Marshal(payload)

	w := postSubmit(r, string(raw), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	body := decodeEnvelope(t, w)
	if body["message"] != "missing-last-name-error" {
		t.Fatalf("unexpected envelope: %v", body)
	}
	if _, present := body["approved"]; present {
		t.Fatalf("approved must be absent on rejection: %v", body)
	}
}

func TestSubmit_FirstViolationWins(t *testing.T) {
	r := newTestRouter(New(newTestService(&stubStore{}), nil, 0))

	var payload map[string]any
	if err := json.Unmarshal([]byte(validBodyJSON()), &payload); err != nil {
		t.Fatal(err)
	}
	// Two violations; location precedes the date-of-birth field.
	payload["location"] = ""
	payload["dateOfBirth"] = "03/12/1990"
	raw, _ := json.Marshal(payload)

	w := postSubmit(r, string(raw), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if body := decodeEnvelope(t, w); body["message"] != "missing-location-error" {
		t.Fatalf("unexpected envelope: %v", body)
	}
}

func TestSubmit_MalformedJSONReportsFirstMissingField(t *testing.T) {
	r := newTestRouter(New(newTestService(&stubStore{}), nil, 0))

	for _, body := range []string{"", "{", "[]", `"text"`, "null"} {
		w := postSubmit(r, body, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d", body, w.Code)
		}
		if env := decodeEnvelope(t, w); env["message"] != "missing-first-name-error" {
			t.Fatalf("body %q: unexpected envelope: %v", body, env)
		}
	}
}

func TestSubmit_UnderageApplicant(t *testing.T) {
	r := newTestRouter(New(newTestService(&stubStore{}), nil, 0))

	var payload map[string]any
	if err := json.Unmarshal([]byte(validBodyJSON()), &payload); err != nil {
		t.Fatal(err)
	}
	payload["dateOfBirth"] = "2009-06-01" // 17 at the pinned clock
	raw, _ := json.Marshal(payload)

	w := postSubmit(r, string(raw), nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if body := decodeEnvelope(t, w); body["message"] != "invalid-applicant-age-error" {
		t.Fatalf("unexpected envelope: %v", body)
	}
}

func TestSubmit_VerifierFailureIsInternal(t *testing.T) {
	svc := newTestService(&stubStore{})
	svc.Verifier = failVerifier{}
	r := newTestRouter(New(svc, nil, 0))

	w := postSubmit(r, validBodyJSON(), nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if body := decodeEnvelope(t, w); body["message"] != "internal-server-error" {
		t.Fatalf("unexpected envelope: %v", body)
	}
}

type failVerifier struct{}

func (failVerifier) Verify(context.Context, string) (bool, error) {
	return false, fmt.Errorf("provider unreachable")
}

func TestSubmit_OracleFailureIsInternal(t *testing.T) {
	svc := newTestService(&stubStore{})
	svc.Oracle = failOracle{}
	r := newTestRouter(New(svc, nil, 0))

	// Solvent without the holding; only a propagated oracle error can turn
	// this request into a 500.
	w := postSubmit(r, validBodyJSON(), nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	body := decodeEnvelope(t, w)
	if body["message"] != "internal-server-error" {
		t.Fatalf("unexpected envelope: %v", body)
	}
	if _, present := body["approved"]; present {
		t.Fatalf("approved must be absent on failure: %v", body)
	}
}

type failOracle struct{}

func (failOracle) Price(context.Context, string) (float64, error) {
	return 0, fmt.Errorf("market data unreachable")
}

func TestSubmit_IdempotentReplay(t *testing.T) {
	db := newHandlerTestDB(t)
	svc := newTestService(&stubStore{})
	h := New(svc, db, time.Hour)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{},
		func(ctx context.Context, key string, now time.Time) (bool, error) {
			rec, err := repo.GetDecision(ctx, db, key, now)
			return err == nil && rec != nil, nil
		},
	))
	r.POST("/submit", h.SubmitApplication)

	hdr := map[string]string{middleware.HeaderIdempotencyKey: "retry-7"}

	// First submission computes and records the decision.
	w1 := postSubmit(r, validBodyJSON(), hdr)
	if w1.Code != http.StatusOK {
		t.Fatalf("first: status = %d body = %s", w1.Code, w1.Body.String())
	}
	if w1.Header().Get("Idempotency-Replayed") != "" {
		t.Fatalf("first submission must not be marked replayed")
	}

	// Second submission with the same key replays the stored verdict even
	// though the body now fails validation.
	w2 := postSubmit(r, "{}", hdr)
	if w2.Code != http.StatusOK {
		t.Fatalf("replay: status = %d body = %s", w2.Code, w2.Body.String())
	}
	if w2.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("expected Idempotency-Replayed header on second call")
	}
	if body := decodeEnvelope(t, w2); body["message"] != "success" || body["approved"] != true {
		t.Fatalf("unexpected replay envelope: %v", body)
	}
}

func TestHealth_ReportsStoreCount(t *testing.T) {
	db := newHandlerTestDB(t)
	r := newTestRouter(New(newTestService(&stubStore{}), db, 0))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected health body: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"applications":0`) {
		t.Fatalf("expected application count in health body: %s", w.Body.String())
	}
}

func newHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Application{}, &domain.DecisionRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
