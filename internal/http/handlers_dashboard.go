package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"financas/internal/core"
)

// summaryResponse is the month dashboard payload. Formatted strings are
// rendered once server-side so every client shows identical currency text.
type summaryResponse struct {
	Month           string                `json:"month"`
	Totals          core.Totals           `json:"totals"`
	ByCategory      []core.CategoryAmount `json:"byCategory"`
	LifetimeBalance core.Money            `json:"lifetimeBalance"`
	Formatted       formattedTotals       `json:"formatted"`
}

type formattedTotals struct {
	Income          string `json:"income"`
	Expense         string `json:"expense"`
	Balance         string `json:"balance"`
	LifetimeBalance string `json:"lifetimeBalance"`
}

type trendResponse struct {
	Month  string           `json:"month"`
	Range  core.TrendRange  `json:"range"`
	Points []core.TrendPoint `json:"points"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	month := parseMonthParam(r)
	key := fmt.Sprintf("%d:%s", s.store.Generation(), month.MonthKey())

	if cached, ok := s.summaryCache.Get(key); ok {
		slog.DebugContext(r.Context(), "Summary cache hit",
			"component", "http",
			"month", month.MonthKey())
		respondJSON(w, http.StatusOK, cached)
		return
	}

	snapshot := s.store.Snapshot()
	monthTx := core.MonthTransactions(snapshot.Transactions, month)
	totals := core.Summarize(monthTx)
	lifetime := core.LifetimeBalance(snapshot.Transactions)

	resp := summaryResponse{
		Month:           month.MonthKey(),
		Totals:          totals,
		ByCategory:      core.CategoryBreakdown(monthTx),
		LifetimeBalance: lifetime,
		Formatted: formattedTotals{
			Income:          s.formatter(totals.Income),
			Expense:         s.formatter(totals.Expense),
			Balance:         s.formatter(totals.Balance),
			LifetimeBalance: s.formatter(lifetime),
		},
	}

	s.summaryCache.Set(key, resp)
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	tr := core.TrendRange(strings.TrimSpace(r.URL.Query().Get("range")))
	if tr == "" {
		tr = core.TrendSixMonths
	}
	if !tr.IsValid() {
		respondError(w, http.StatusBadRequest, "invalid range: must be one of [month 6m 1y all]")
		return
	}

	month := parseMonthParam(r)
	key := fmt.Sprintf("%d:%s:%s", s.store.Generation(), month.MonthKey(), tr)

	if cached, ok := s.trendCache.Get(key); ok {
		slog.DebugContext(r.Context(), "Trend cache hit",
			"component", "http",
			"month", month.MonthKey(),
			"range", string(tr))
		respondJSON(w, http.StatusOK, cached)
		return
	}

	snapshot := s.store.Snapshot()
	resp := trendResponse{
		Month:  month.MonthKey(),
		Range:  tr,
		Points: core.TrendSeries(snapshot.Transactions, month, tr),
	}

	s.trendCache.Set(key, resp)
	respondJSON(w, http.StatusOK, resp)
}
