package http

import (
	"errors"
	"net/http"
	"time"

	"financas/internal/backup"
	applog "financas/internal/log"
	"financas/internal/state"
)

// handleBackupExport streams the full state as a downloadable JSON
// snapshot.
func (s *Server) handleBackupExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	logger := applog.FromContext(r.Context()).WithComponent(applog.ComponentBackup)

	name := backup.FileName(time.Now())
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)

	if err := backup.Export(w, s.store.Snapshot()); err != nil {
		logger.ErrorContext(r.Context(), "Backup export failed",
			applog.FieldError, err)
		return
	}
	logger.InfoContext(r.Context(), "Backup exported",
		applog.FieldBackupFile, name)
}

// handleBackupImport replaces the whole state from an uploaded snapshot.
// Import is all-or-nothing: a snapshot that fails validation leaves the
// current state untouched.
func (s *Server) handleBackupImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	logger := applog.FromContext(r.Context()).WithComponent(applog.ComponentBackup)

	st, err := backup.Import(r.Body)
	if err != nil {
		var verr *state.ValidationError
		if errors.As(err, &verr) {
			logger.WarnContext(r.Context(), "Backup import rejected",
				"field", verr.Field,
				"reason", verr.Reason)
			respondError(w, http.StatusUnprocessableEntity, verr.Error())
			return
		}
		respondError(w, http.StatusBadRequest, "could not read backup file")
		return
	}

	s.store.ReplaceAll(r.Context(), st)
	respondJSON(w, http.StatusOK, map[string]any{
		"transactions": len(st.Transactions),
		"goals":        len(st.Goals),
	})
}

// handleReset wipes everything back to the default state.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	s.store.ResetAll(r.Context())
	w.WriteHeader(http.StatusNoContent)
}
