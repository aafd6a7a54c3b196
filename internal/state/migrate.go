// Package state owns the in-memory application state: loading and
// normalizing persisted payloads into the current schema, and the mutation
// operations that persist the whole state after every change.
package state

import (
	"bytes"
	"encoding/json"
	"time"

	"financas/internal/core"
)

// ValidationError reports a structurally invalid persisted or imported
// payload. The message is meant for the user; rejection is all-or-nothing
// and leaves the caller's state untouched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid backup payload: " + e.Reason
	}
	return "invalid backup payload: " + e.Field + ": " + e.Reason
}

// payload mirrors the persisted record loosely enough to survive older
// schema revisions. Strongly typed decoding happens per migration step.
type payload struct {
	Version      json.RawMessage `json:"version"`
	CurrencyCode json.RawMessage `json:"currencyCode"`
	Categories   []string        `json:"categories"`
	Transactions json.RawMessage `json:"transactions"`
	Goals        json.RawMessage `json:"goals"`
}

// goalRecord covers goal shapes before and after the saved field existed.
// The pointer distinguishes a missing value from an explicit zero.
type goalRecord struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Target    core.Money  `json:"target"`
	Saved     *core.Money `json:"saved"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Normalize decodes an arbitrary payload into the current AppState schema,
// or fails with a *ValidationError. The payload must be a JSON object with
// array-valued transactions and goals; categories default to the built-in
// list when absent or empty; version and currency are forced to the
// current constants.
//
// Migration steps run oldest-first so future schema revisions chain onto
// the pipeline instead of scattering defaults across load and import.
func Normalize(raw []byte) (core.AppState, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return core.AppState{}, &ValidationError{Reason: "payload is not an object"}
	}

	var p payload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return core.AppState{}, &ValidationError{Reason: "malformed JSON: " + err.Error()}
	}

	transactions, err := decodeTransactions(p.Transactions)
	if err != nil {
		return core.AppState{}, err
	}
	goals, err := decodeGoals(p.Goals)
	if err != nil {
		return core.AppState{}, err
	}

	return core.AppState{
		Version:      core.SchemaVersion,
		CurrencyCode: core.DefaultCurrency,
		Categories:   normalizeCategories(p.Categories),
		Transactions: transactions,
		Goals:        goals,
	}, nil
}

func decodeTransactions(raw json.RawMessage) ([]core.Transaction, error) {
	if !isArray(raw) {
		return nil, &ValidationError{Field: "transactions", Reason: "must be an array"}
	}
	var ts []core.Transaction
	if err := json.Unmarshal(raw, &ts); err != nil {
		return nil, &ValidationError{Field: "transactions", Reason: err.Error()}
	}
	if ts == nil {
		ts = []core.Transaction{}
	}
	return ts, nil
}

// decodeGoals is the v0 -> v1 step: goals written before the saved field
// existed are backfilled with zero.
func decodeGoals(raw json.RawMessage) ([]core.Goal, error) {
	if !isArray(raw) {
		return nil, &ValidationError{Field: "goals", Reason: "must be an array"}
	}
	var records []goalRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &ValidationError{Field: "goals", Reason: err.Error()}
	}

	goals := make([]core.Goal, 0, len(records))
	for _, r := range records {
		g := core.Goal{
			ID:        r.ID,
			Name:      r.Name,
			Target:    r.Target,
			CreatedAt: r.CreatedAt,
		}
		if r.Saved != nil {
			g.Saved = *r.Saved
		}
		goals = append(goals, g)
	}
	return goals, nil
}

func normalizeCategories(cats []string) []string {
	if len(cats) == 0 {
		return append([]string(nil), core.DefaultCategories...)
	}
	return append([]string(nil), cats...)
}

func isArray(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '['
}
