package http

import (
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"financas/internal/core"
)

// extractClientIP resolves the client address, preferring proxy headers.
func extractClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		// First hop is the original client.
		if idx := strings.IndexByte(ip, ','); idx >= 0 {
			ip = ip[:idx]
		}
		return strings.TrimSpace(ip)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// parseMonthParam reads the "month" query parameter as "YYYY-MM", falling
// back to the current month when absent or malformed.
func parseMonthParam(r *http.Request) core.Date {
	v := strings.TrimSpace(r.URL.Query().Get("month"))
	if v == "" {
		return core.Today().StartOfMonth()
	}
	d, err := core.ParseMonthKey(v)
	if err != nil {
		slog.WarnContext(r.Context(), "Invalid month parameter, using current month",
			"component", "http",
			"month", v)
		return core.Today().StartOfMonth()
	}
	return d
}

// amountField accepts an amount either as a JSON number or as a free-form
// string run through the tolerant parser, so clients can submit raw form
// input like "1.234,56" directly.
type amountField struct {
	core.Money
}

func (a *amountField) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		a.Money = core.ParseAmount(raw)
		return nil
	}
	return a.Money.UnmarshalJSON(b)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	respondError(w, http.StatusMethodNotAllowed, "method not allowed")
}
