package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"financas/internal/core"
)

// goalView is a goal joined with its derived progress. The progress values
// are clamped for display; the stored saved amount is reported as-is.
type goalView struct {
	core.Goal
	Progress core.GoalProgress `json:"progress"`
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListGoals(w, r)
	case http.MethodPost:
		s.handleCreateGoal(w, r)
	case http.MethodDelete:
		s.handleDeleteGoal(w, r)
	default:
		methodNotAllowed(w, "GET", "POST", "DELETE")
	}
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	snapshot := s.store.Snapshot()

	views := make([]goalView, 0, len(snapshot.Goals))
	for _, g := range snapshot.Goals {
		views = append(views, goalView{Goal: g, Progress: core.ProgressOf(g)})
	}
	respondJSON(w, http.StatusOK, map[string]any{"goals": views})
}

type createGoalRequest struct {
	Name   string      `json:"name"`
	Target amountField `json:"target"`
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft := core.GoalDraft{
		Name:   sanitizeInput(req.Name),
		Target: req.Target.Money,
	}
	if err := draft.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	g := s.store.AddGoal(r.Context(), draft)
	respondJSON(w, http.StatusCreated, goalView{Goal: g, Progress: core.ProgressOf(g)})
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing id parameter")
		return
	}

	if !s.store.DeleteGoal(r.Context(), id) {
		respondError(w, http.StatusNotFound, "goal not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type contributeRequest struct {
	ID     string      `json:"id"`
	Amount amountField `json:"amount"`
}

// handleGoalContribute records a contribution. Contributions only grow the
// saved amount; over-funding is allowed and only clamped at display time.
func (s *Server) handleGoalContribute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req contributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing goal id")
		return
	}
	if !req.Amount.IsPositive() {
		respondError(w, http.StatusUnprocessableEntity, core.ErrInvalidAmount.Error())
		return
	}

	if !s.store.ContributeToGoal(r.Context(), id, req.Amount.Money) {
		respondError(w, http.StatusNotFound, "goal not found")
		return
	}

	for _, g := range s.store.Snapshot().Goals {
		if g.ID == id {
			respondJSON(w, http.StatusOK, goalView{Goal: g, Progress: core.ProgressOf(g)})
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
