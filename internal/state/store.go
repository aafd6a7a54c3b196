package state

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"financas/internal/core"
)

// ErrNoState is returned by repositories when nothing has been stored yet.
var ErrNoState = errors.New("no stored state")

// Repository persists the whole serialized state as a single record,
// last write wins.
type Repository interface {
	LoadState(ctx context.Context) ([]byte, error)
	SaveState(ctx context.Context, payload []byte) error
}

// Store owns the application state. Every mutation replaces the state
// atomically under one lock and then persists the full serialized record;
// persistence is best-effort, so a failed save keeps memory correct and
// only the next load may lag.
type Store struct {
	mu    sync.Mutex
	repo  Repository
	state core.AppState
	gen   uint64
}

// Open loads the persisted state through the migration pipeline, or starts
// from the default state when storage is unavailable, empty, or holds a
// payload the current schema rejects. The stored record is only
// overwritten again on the next successful mutation.
func Open(ctx context.Context, repo Repository) *Store {
	s := &Store{repo: repo, state: core.DefaultState()}

	raw, err := repo.LoadState(ctx)
	switch {
	case errors.Is(err, ErrNoState):
		slog.InfoContext(ctx, "No stored state, starting from defaults",
			"component", "state")
	case err != nil:
		slog.WarnContext(ctx, "Storage unavailable, starting from defaults",
			"component", "state",
			"error", err)
	default:
		st, nerr := Normalize(raw)
		if nerr != nil {
			slog.ErrorContext(ctx, "Stored state rejected by migration, starting from defaults",
				"component", "state",
				"error", nerr)
		} else {
			s.state = st
			slog.InfoContext(ctx, "State loaded",
				"component", "state",
				"transactions", len(st.Transactions),
				"goals", len(st.Goals))
		}
	}
	return s
}

// Snapshot returns a deep copy of the current state. Readers never alias
// the owned collections.
func (s *Store) Snapshot() core.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Generation counts applied mutations. Callers memoizing derived data use
// it as part of their cache key.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// AddTransaction assigns identity to a validated draft and prepends it.
// Draft validation is the producing form's responsibility; the store only
// trusts and records.
func (s *Store) AddTransaction(ctx context.Context, d core.TransactionDraft) core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	category := strings.TrimSpace(d.Category)
	if d.Type == core.TypeIncome {
		category = core.IncomeCategory
	}

	t := core.Transaction{
		ID:          core.NewID(),
		Type:        d.Type,
		Date:        d.Date,
		Amount:      d.Amount,
		Description: strings.TrimSpace(d.Description),
		Category:    category,
		CreatedAt:   time.Now(),
	}
	s.state.Transactions = append([]core.Transaction{t}, s.state.Transactions...)
	s.persistLocked(ctx)

	slog.InfoContext(ctx, "Transaction recorded",
		"component", "state",
		"transaction_id", t.ID,
		"type", string(t.Type),
		"amount_cents", t.Amount.Cents,
		"category", t.Category)
	return t
}

// DeleteTransaction removes the matching record. Unknown ids are a no-op
// and do not persist.
func (s *Store) DeleteTransaction(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]core.Transaction, 0, len(s.state.Transactions))
	removed := false
	for _, t := range s.state.Transactions {
		if t.ID == id {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	if !removed {
		return false
	}

	s.state.Transactions = kept
	s.persistLocked(ctx)
	slog.InfoContext(ctx, "Transaction deleted",
		"component", "state",
		"transaction_id", id)
	return true
}

// AddGoal assigns identity to a validated draft and prepends it with zero
// progress.
func (s *Store) AddGoal(ctx context.Context, d core.GoalDraft) core.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := core.Goal{
		ID:        core.NewID(),
		Name:      strings.TrimSpace(d.Name),
		Target:    d.Target,
		CreatedAt: time.Now(),
	}
	s.state.Goals = append([]core.Goal{g}, s.state.Goals...)
	s.persistLocked(ctx)

	slog.InfoContext(ctx, "Goal created",
		"component", "state",
		"goal_id", g.ID,
		"target_cents", g.Target.Cents)
	return g
}

// DeleteGoal removes the goal and all its recorded progress. Unknown ids
// are a no-op.
func (s *Store) DeleteGoal(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]core.Goal, 0, len(s.state.Goals))
	removed := false
	for _, g := range s.state.Goals {
		if g.ID == id {
			removed = true
			continue
		}
		kept = append(kept, g)
	}
	if !removed {
		return false
	}

	s.state.Goals = kept
	s.persistLocked(ctx)
	slog.InfoContext(ctx, "Goal deleted",
		"component", "state",
		"goal_id", id)
	return true
}

// ContributeToGoal increases the goal's saved amount. Contributions are
// monotonic: non-positive amounts and unknown ids are no-ops, and there is
// no operation to take a contribution back.
func (s *Store) ContributeToGoal(ctx context.Context, id string, amount core.Money) bool {
	if !amount.IsPositive() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Goals {
		if s.state.Goals[i].ID != id {
			continue
		}
		s.state.Goals[i].Saved = s.state.Goals[i].Saved.Add(amount)
		s.persistLocked(ctx)
		slog.InfoContext(ctx, "Goal contribution recorded",
			"component", "state",
			"goal_id", id,
			"amount_cents", amount.Cents,
			"saved_cents", s.state.Goals[i].Saved.Cents)
		return true
	}
	return false
}

// ResetAll replaces everything with the empty default state. Irreversible
// without a prior backup.
func (s *Store) ResetAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = core.DefaultState()
	s.persistLocked(ctx)
	slog.WarnContext(ctx, "State reset to defaults", "component", "state")
}

// ReplaceAll swaps in an already-normalized state wholesale, used by
// successful backup imports.
func (s *Store) ReplaceAll(ctx context.Context, st core.AppState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = st.Clone()
	s.persistLocked(ctx)
	slog.InfoContext(ctx, "State replaced from import",
		"component", "state",
		"transactions", len(st.Transactions),
		"goals", len(st.Goals))
}

// persistLocked serializes the current state and writes it through the
// repository. Callers hold the lock. Save failures are logged and
// swallowed.
func (s *Store) persistLocked(ctx context.Context) {
	s.gen++

	raw, err := json.Marshal(s.state)
	if err != nil {
		slog.ErrorContext(ctx, "State serialization failed",
			"component", "state",
			"error", err)
		return
	}
	if err := s.repo.SaveState(ctx, raw); err != nil {
		slog.WarnContext(ctx, "State save failed, keeping in-memory state",
			"component", "state",
			"error", err)
	}
}
