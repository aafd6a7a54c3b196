package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"financas/internal/config"
	"financas/internal/core"
	"financas/internal/state"
	"financas/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		Port:               "8081",
		DataBackend:        "memory",
		CacheMaxEntries:    50,
		CacheTTL:           time.Minute,
		RateLimitPerMinute: 1000,
	}
	store := state.Open(context.Background(), storage.NewMemoryRepository())
	s := NewServer(cfg, store)
	t.Cleanup(func() {
		_ = s.Shutdown(context.Background())
	})
	return s
}

func doRequest(s *Server, method, target string, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(w, r)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	if w := doRequest(s, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", w.Code)
	}
	if w := doRequest(s, http.MethodGet, "/readyz", ""); w.Code != http.StatusOK {
		t.Fatalf("readyz status = %d", w.Code)
	}
}

func TestCreateAndListTransactions(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodPost, "/api/transactions",
		`{"type":"expense","date":"2025-03-10","amount":"1.234,56","description":"Mercado","category":"Alimentação"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}

	var created core.Transaction
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("created transaction has no id")
	}
	if created.Amount.Cents != 123456 {
		t.Fatalf("amount cents = %d, want 123456", created.Amount.Cents)
	}

	w = doRequest(s, http.MethodGet, "/api/transactions?month=2025-03", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var listed struct {
		Month        string             `json:"month"`
		Transactions []core.Transaction `json:"transactions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if listed.Month != "2025-03" {
		t.Fatalf("month = %q", listed.Month)
	}
	if len(listed.Transactions) != 1 || listed.Transactions[0].ID != created.ID {
		t.Fatalf("listed = %+v", listed.Transactions)
	}

	// Other months stay empty.
	w = doRequest(s, http.MethodGet, "/api/transactions?month=2025-04", "")
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Transactions) != 0 {
		t.Fatalf("expected empty month, got %d", len(listed.Transactions))
	}
}

func TestCreateTransactionAcceptsNumericAmount(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodPost, "/api/transactions",
		`{"type":"income","date":"2025-03-01","amount":2500.5,"description":"Salário"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var created core.Transaction
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Amount.Cents != 250050 {
		t.Fatalf("amount cents = %d, want 250050", created.Amount.Cents)
	}
	if created.Category != core.IncomeCategory {
		t.Fatalf("income category = %q, want %q", created.Category, core.IncomeCategory)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{`, http.StatusBadRequest},
		{"bad type", `{"type":"transfer","date":"2025-03-01","amount":"10","description":"ab","category":"Outros"}`, http.StatusUnprocessableEntity},
		{"bad date", `{"type":"expense","date":"01/03/2025","amount":"10","description":"ab","category":"Outros"}`, http.StatusUnprocessableEntity},
		{"zero amount", `{"type":"expense","date":"2025-03-01","amount":"abc","description":"ab","category":"Outros"}`, http.StatusUnprocessableEntity},
		{"short description", `{"type":"expense","date":"2025-03-01","amount":"10","description":"a","category":"Outros"}`, http.StatusUnprocessableEntity},
		{"expense without category", `{"type":"expense","date":"2025-03-01","amount":"10","description":"ab","category":" "}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(s, http.MethodPost, "/api/transactions", tc.body)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d, body %s", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestDeleteTransaction(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodPost, "/api/transactions",
		`{"type":"expense","date":"2025-03-10","amount":"10,00","description":"Café","category":"Alimentação"}`)
	var created core.Transaction
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if w := doRequest(s, http.MethodDelete, "/api/transactions?id="+created.ID, ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	if w := doRequest(s, http.MethodDelete, "/api/transactions?id="+created.ID, ""); w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", w.Code)
	}
	if w := doRequest(s, http.MethodDelete, "/api/transactions", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("missing id status = %d", w.Code)
	}
}

func TestGoalLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := doRequest(s, http.MethodPost, "/api/goals", `{"name":"Reserva","target":"5.000,00"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	var created goalView
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Target.Cents != 500000 || created.Saved.Cents != 0 {
		t.Fatalf("created = %+v", created.Goal)
	}

	w = doRequest(s, http.MethodPost, "/api/goals/contribute",
		`{"id":"`+created.ID+`","amount":"6.000,00"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("contribute status = %d, body %s", w.Code, w.Body.String())
	}
	var after goalView
	if err := json.Unmarshal(w.Body.Bytes(), &after); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// Stored amount keeps the over-funding; display values clamp.
	if after.Saved.Cents != 600000 {
		t.Fatalf("saved cents = %d, want 600000", after.Saved.Cents)
	}
	if after.Progress.Ratio != 1 || after.Progress.Remaining.Cents != 0 {
		t.Fatalf("progress = %+v", after.Progress)
	}
	if after.Progress.Saved.Cents != 500000 {
		t.Fatalf("displayed saved = %d, want clamped 500000", after.Progress.Saved.Cents)
	}

	if w := doRequest(s, http.MethodPost, "/api/goals/contribute", `{"id":"nope","amount":"10"}`); w.Code != http.StatusNotFound {
		t.Fatalf("unknown goal status = %d", w.Code)
	}
	if w := doRequest(s, http.MethodPost, "/api/goals/contribute", `{"id":"`+created.ID+`","amount":"0"}`); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("zero contribution status = %d", w.Code)
	}

	if w := doRequest(s, http.MethodDelete, "/api/goals?id="+created.ID, ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = doRequest(s, http.MethodGet, "/api/goals", "")
	var listed struct {
		Goals []goalView `json:"goals"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed.Goals) != 0 {
		t.Fatalf("goals remaining: %d", len(listed.Goals))
	}
}

func TestSummaryEndpoint(t *testing.T) {
	s := newTestServer(t)

	seed := []string{
		`{"type":"income","date":"2025-03-01","amount":"3.000,00","description":"Salário"}`,
		`{"type":"expense","date":"2025-03-05","amount":"800,00","description":"Aluguel","category":"Moradia"}`,
		`{"type":"expense","date":"2025-03-07","amount":"200,00","description":"Mercado","category":"Alimentação"}`,
		`{"type":"expense","date":"2025-02-20","amount":"100,00","description":"Fevereiro","category":"Outros"}`,
	}
	for _, body := range seed {
		if w := doRequest(s, http.MethodPost, "/api/transactions", body); w.Code != http.StatusCreated {
			t.Fatalf("seed failed: %d %s", w.Code, w.Body.String())
		}
	}

	w := doRequest(s, http.MethodGet, "/api/summary?month=2025-03", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp summaryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Totals.Income.Cents != 300000 || resp.Totals.Expense.Cents != 100000 {
		t.Fatalf("totals = %+v", resp.Totals)
	}
	if resp.Totals.Balance.Cents != 200000 {
		t.Fatalf("balance = %d", resp.Totals.Balance.Cents)
	}
	// Lifetime includes February's expense.
	if resp.LifetimeBalance.Cents != 190000 {
		t.Fatalf("lifetime = %d", resp.LifetimeBalance.Cents)
	}
	if len(resp.ByCategory) != 2 || resp.ByCategory[0].Name != "Moradia" {
		t.Fatalf("byCategory = %+v", resp.ByCategory)
	}
	if resp.Formatted.Income == "" {
		t.Fatalf("formatted totals missing")
	}

	// Cached and fresh responses agree.
	w2 := doRequest(s, http.MethodGet, "/api/summary?month=2025-03", "")
	if !bytes.Equal(w.Body.Bytes(), w2.Body.Bytes()) {
		t.Fatalf("cached response differs")
	}

	// A mutation bumps the generation, so the summary reflects it.
	doRequest(s, http.MethodPost, "/api/transactions",
		`{"type":"expense","date":"2025-03-09","amount":"50,00","description":"Extra","category":"Lazer"}`)
	w = doRequest(s, http.MethodGet, "/api/summary?month=2025-03", "")
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Totals.Expense.Cents != 105000 {
		t.Fatalf("expense after mutation = %d, want 105000", resp.Totals.Expense.Cents)
	}
}

func TestTrendEndpoint(t *testing.T) {
	s := newTestServer(t)

	doRequest(s, http.MethodPost, "/api/transactions",
		`{"type":"expense","date":"2025-03-05","amount":"100,00","description":"Mercado","category":"Alimentação"}`)

	w := doRequest(s, http.MethodGet, "/api/trend?month=2025-03&range=6m", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp trendResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Points) != 6 {
		t.Fatalf("points = %d, want 6", len(resp.Points))
	}
	if resp.Points[5].Key != "2025-03" || resp.Points[5].Expense.Cents != 10000 {
		t.Fatalf("last point = %+v", resp.Points[5])
	}
	if resp.Points[0].Key != "2024-10" {
		t.Fatalf("first point = %+v", resp.Points[0])
	}

	if w := doRequest(s, http.MethodGet, "/api/trend?month=2025-03&range=weekly", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid range status = %d", w.Code)
	}
}

func TestBackupExportImport(t *testing.T) {
	s := newTestServer(t)

	doRequest(s, http.MethodPost, "/api/transactions",
		`{"type":"expense","date":"2025-03-05","amount":"100,00","description":"Mercado","category":"Alimentação"}`)
	doRequest(s, http.MethodPost, "/api/goals", `{"name":"Viagem","target":"2.000,00"}`)

	w := doRequest(s, http.MethodGet, "/api/backup", "")
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "financas-backup-") {
		t.Fatalf("content disposition = %q", cd)
	}
	exported := w.Body.String()

	// Import into a fresh server reproduces the data.
	s2 := newTestServer(t)
	if w := doRequest(s2, http.MethodPost, "/api/backup/import", exported); w.Code != http.StatusOK {
		t.Fatalf("import status = %d, body %s", w.Code, w.Body.String())
	}

	w = doRequest(s2, http.MethodGet, "/api/transactions?month=2025-03", "")
	var listed struct {
		Transactions []core.Transaction `json:"transactions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed.Transactions) != 1 || listed.Transactions[0].Description != "Mercado" {
		t.Fatalf("imported transactions = %+v", listed.Transactions)
	}
}

func TestBackupImportRejectsInvalidPayload(t *testing.T) {
	s := newTestServer(t)

	doRequest(s, http.MethodPost, "/api/transactions",
		`{"type":"expense","date":"2025-03-05","amount":"100,00","description":"Mercado","category":"Alimentação"}`)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"not an object", `[1,2,3]`, http.StatusUnprocessableEntity},
		{"transactions not array", `{"transactions":{},"goals":[]}`, http.StatusUnprocessableEntity},
		{"garbage", `not json at all`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := doRequest(s, http.MethodPost, "/api/backup/import", tc.body); w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}

	// Failed imports leave the state untouched.
	w := doRequest(s, http.MethodGet, "/api/transactions?month=2025-03", "")
	var listed struct {
		Transactions []core.Transaction `json:"transactions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed.Transactions) != 1 {
		t.Fatalf("state changed after rejected import: %d transactions", len(listed.Transactions))
	}
}

func TestResetEndpoint(t *testing.T) {
	s := newTestServer(t)

	doRequest(s, http.MethodPost, "/api/transactions",
		`{"type":"expense","date":"2025-03-05","amount":"100,00","description":"Mercado","category":"Alimentação"}`)
	doRequest(s, http.MethodPost, "/api/goals", `{"name":"Viagem","target":"2.000,00"}`)

	if w := doRequest(s, http.MethodPost, "/api/reset", ""); w.Code != http.StatusNoContent {
		t.Fatalf("reset status = %d", w.Code)
	}

	w := doRequest(s, http.MethodGet, "/api/transactions?month=2025-03", "")
	var listed struct {
		Transactions []core.Transaction `json:"transactions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed.Transactions) != 0 {
		t.Fatalf("transactions after reset: %d", len(listed.Transactions))
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		method string
		target string
	}{
		{http.MethodPut, "/api/transactions"},
		{http.MethodGet, "/api/goals/contribute"},
		{http.MethodPost, "/api/summary"},
		{http.MethodPost, "/api/trend"},
		{http.MethodPost, "/api/backup"},
		{http.MethodGet, "/api/backup/import"},
		{http.MethodGet, "/api/reset"},
	}
	for _, tc := range cases {
		if w := doRequest(s, tc.method, tc.target, ""); w.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s status = %d", tc.method, tc.target, w.Code)
		}
	}
}

func TestRateLimitOnMutations(t *testing.T) {
	cfg := &config.Config{
		Port:               "8081",
		DataBackend:        "memory",
		CacheMaxEntries:    50,
		CacheTTL:           time.Minute,
		RateLimitPerMinute: 3,
	}
	store := state.Open(context.Background(), storage.NewMemoryRepository())
	s := NewServer(cfg, store)
	t.Cleanup(func() {
		_ = s.Shutdown(context.Background())
	})

	body := `{"type":"expense","date":"2025-03-05","amount":"10,00","description":"Café","category":"Alimentação"}`
	var last int
	for i := 0; i < 5; i++ {
		w := doRequest(s, http.MethodPost, "/api/transactions", body)
		last = w.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("status after burst = %d, want 429", last)
	}

	// Reads are never limited.
	if w := doRequest(s, http.MethodGet, "/api/summary", ""); w.Code != http.StatusOK {
		t.Fatalf("read status = %d", w.Code)
	}
}
