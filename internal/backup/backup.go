// Package backup serializes the full application state to a portable JSON
// snapshot and validates snapshots back in. Import is all-or-nothing: the
// caller only swaps state after a snapshot normalizes cleanly.
package backup

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"financas/internal/core"
	"financas/internal/state"
)

const filePrefix = "financas"

// MaxImportBytes bounds how much of an import file is read. Snapshots are
// a few kilobytes in practice; anything near this limit is not ours.
const MaxImportBytes = 10 << 20

// FileName returns the dated snapshot name, e.g.
// "financas-backup-2026-08-30.json".
func FileName(t time.Time) string {
	return fmt.Sprintf("%s-backup-%s.json", filePrefix, t.Format("2006-01-02"))
}

// Export writes the state as formatted JSON.
func Export(w io.Writer, st core.AppState) error {
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize state: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}

// Import reads a snapshot and normalizes it into the current schema. On
// any error the returned state is zero and the caller must keep its
// current state as-is.
func Import(r io.Reader) (core.AppState, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxImportBytes))
	if err != nil {
		return core.AppState{}, fmt.Errorf("read backup: %w", err)
	}
	return state.Normalize(raw)
}
