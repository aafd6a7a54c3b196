package state

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"financas/internal/core"
)

// fakeRepo records every save and can simulate unavailable storage.
type fakeRepo struct {
	stored  []byte
	saves   int
	loadErr error
	saveErr error
}

func (r *fakeRepo) LoadState(_ context.Context) ([]byte, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	if r.stored == nil {
		return nil, ErrNoState
	}
	return append([]byte(nil), r.stored...), nil
}

func (r *fakeRepo) SaveState(_ context.Context, payload []byte) error {
	r.saves++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.stored = append([]byte(nil), payload...)
	return nil
}

func draft() core.TransactionDraft {
	return core.TransactionDraft{
		Type:        core.TypeExpense,
		Date:        core.NewDate(2025, 3, 10),
		Amount:      core.Money{Cents: 1500},
		Description: "mercado",
		Category:    "Alimentação",
	}
}

func TestOpenFreshStore(t *testing.T) {
	s := Open(context.Background(), &fakeRepo{})
	st := s.Snapshot()
	if len(st.Transactions) != 0 || len(st.Goals) != 0 {
		t.Fatalf("fresh store not empty: %+v", st)
	}
	if st.Version != core.SchemaVersion {
		t.Fatalf("version = %d", st.Version)
	}
}

func TestOpenUnavailableStorageFallsBack(t *testing.T) {
	repo := &fakeRepo{loadErr: errors.New("disk on fire")}
	s := Open(context.Background(), repo)
	if got := s.Snapshot(); len(got.Transactions) != 0 {
		t.Fatalf("expected default state")
	}
}

func TestOpenCorruptPayloadFallsBack(t *testing.T) {
	repo := &fakeRepo{stored: []byte(`{"transactions": "nope"}`)}
	s := Open(context.Background(), repo)
	if got := s.Snapshot(); len(got.Transactions) != 0 {
		t.Fatalf("expected default state")
	}
	if repo.saves != 0 {
		t.Fatalf("corrupt payload must not be overwritten at load time")
	}
}

func TestOpenLoadsStoredState(t *testing.T) {
	seed := core.DefaultState()
	seed.Transactions = append(seed.Transactions, core.Transaction{
		ID: "t1", Type: core.TypeIncome, Date: core.NewDate(2025, 1, 5),
		Amount: core.Money{Cents: 100000}, Description: "salário",
		Category: core.IncomeCategory,
	})
	raw, err := json.Marshal(seed)
	if err != nil {
		t.Fatalf("marshal seed: %v", err)
	}

	s := Open(context.Background(), &fakeRepo{stored: raw})
	if got := s.Snapshot(); len(got.Transactions) != 1 || got.Transactions[0].ID != "t1" {
		t.Fatalf("stored state not loaded: %+v", got)
	}
}

func TestAddTransactionPrependsAndPersists(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	s := Open(ctx, repo)

	first := s.AddTransaction(ctx, draft())
	second := s.AddTransaction(ctx, draft())
	if first.ID == second.ID {
		t.Fatalf("ids must be unique")
	}

	st := s.Snapshot()
	if len(st.Transactions) != 2 || st.Transactions[0].ID != second.ID {
		t.Fatalf("newest transaction must be first: %+v", st.Transactions)
	}
	if repo.saves != 2 {
		t.Fatalf("expected a save per mutation, got %d", repo.saves)
	}

	// The persisted record must normalize back to the same state.
	reloaded, err := Normalize(repo.stored)
	if err != nil {
		t.Fatalf("persisted record rejected: %v", err)
	}
	if len(reloaded.Transactions) != 2 {
		t.Fatalf("persisted %d transactions", len(reloaded.Transactions))
	}
}

func TestAddTransactionIncomeSentinelCategory(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, &fakeRepo{})

	got := s.AddTransaction(ctx, core.TransactionDraft{
		Type:        core.TypeIncome,
		Date:        core.NewDate(2025, 3, 1),
		Amount:      core.Money{Cents: 300000},
		Description: "salário",
		Category:    "Lazer", // ignored for income
	})
	if got.Category != core.IncomeCategory {
		t.Fatalf("income category = %q, want %q", got.Category, core.IncomeCategory)
	}
}

func TestDeleteTransaction(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	s := Open(ctx, repo)
	tr := s.AddTransaction(ctx, draft())

	if !s.DeleteTransaction(ctx, tr.ID) {
		t.Fatalf("expected deletion")
	}
	if len(s.Snapshot().Transactions) != 0 {
		t.Fatalf("transaction still present")
	}

	savesBefore := repo.saves
	if s.DeleteTransaction(ctx, "missing") {
		t.Fatalf("unknown id must be a no-op")
	}
	if repo.saves != savesBefore {
		t.Fatalf("no-op deletion must not persist")
	}
}

func TestGoalLifecycle(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, &fakeRepo{})

	g := s.AddGoal(ctx, core.GoalDraft{Name: "Viagem", Target: core.Money{Cents: 500000}})
	if g.Saved.Cents != 0 {
		t.Fatalf("new goal starts with saved=0, got %d", g.Saved.Cents)
	}

	if !s.ContributeToGoal(ctx, g.ID, core.Money{Cents: 120000}) {
		t.Fatalf("contribution rejected")
	}
	if !s.ContributeToGoal(ctx, g.ID, core.Money{Cents: 450000}) {
		t.Fatalf("second contribution rejected")
	}

	// Over-funding is allowed and stored unclamped.
	got := s.Snapshot().Goals[0]
	if got.Saved.Cents != 570000 {
		t.Fatalf("saved = %d, want 570000", got.Saved.Cents)
	}

	if !s.DeleteGoal(ctx, g.ID) {
		t.Fatalf("expected deletion")
	}
	if len(s.Snapshot().Goals) != 0 {
		t.Fatalf("goal still present")
	}
	if s.DeleteGoal(ctx, g.ID) {
		t.Fatalf("second delete must be a no-op")
	}
}

func TestContributeNoOps(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	s := Open(ctx, repo)
	g := s.AddGoal(ctx, core.GoalDraft{Name: "Reserva", Target: core.Money{Cents: 100000}})
	savesBefore := repo.saves

	if s.ContributeToGoal(ctx, g.ID, core.Money{Cents: 0}) {
		t.Fatalf("zero contribution must be a no-op")
	}
	if s.ContributeToGoal(ctx, g.ID, core.Money{Cents: -500}) {
		t.Fatalf("negative contribution must be a no-op")
	}
	if s.ContributeToGoal(ctx, "missing", core.Money{Cents: 100}) {
		t.Fatalf("unknown goal must be a no-op")
	}

	if s.Snapshot().Goals[0].Saved.Cents != 0 {
		t.Fatalf("saved changed by a no-op")
	}
	if repo.saves != savesBefore {
		t.Fatalf("no-op contribution must not persist")
	}
}

func TestResetAll(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, &fakeRepo{})
	s.AddTransaction(ctx, draft())
	s.AddGoal(ctx, core.GoalDraft{Name: "Viagem", Target: core.Money{Cents: 100}})

	s.ResetAll(ctx)
	st := s.Snapshot()
	if len(st.Transactions) != 0 || len(st.Goals) != 0 {
		t.Fatalf("reset left data behind: %+v", st)
	}
	if len(st.Categories) != len(core.DefaultCategories) {
		t.Fatalf("reset must restore default categories")
	}
}

func TestReplaceAllIsWholesale(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, &fakeRepo{})
	s.AddTransaction(ctx, draft())

	imported := core.DefaultState()
	imported.Goals = append(imported.Goals, core.Goal{ID: "g9", Name: "Nova", Target: core.Money{Cents: 100}})
	s.ReplaceAll(ctx, imported)

	st := s.Snapshot()
	if len(st.Transactions) != 0 || len(st.Goals) != 1 || st.Goals[0].ID != "g9" {
		t.Fatalf("replace was not wholesale: %+v", st)
	}

	// The store must own its copy.
	imported.Goals[0].Name = "mutated"
	if s.Snapshot().Goals[0].Name != "Nova" {
		t.Fatalf("store aliases the imported state")
	}
}

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{saveErr: errors.New("storage full")}
	s := Open(ctx, repo)

	s.AddTransaction(ctx, draft())
	if len(s.Snapshot().Transactions) != 1 {
		t.Fatalf("in-memory state must survive save failures")
	}
}

func TestGenerationBumpsOnMutation(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, &fakeRepo{})

	before := s.Generation()
	s.AddTransaction(ctx, draft())
	if s.Generation() == before {
		t.Fatalf("generation must change on mutation")
	}

	mid := s.Generation()
	s.DeleteTransaction(ctx, "missing") // no-op
	if s.Generation() != mid {
		t.Fatalf("no-op must not change the generation")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, &fakeRepo{})
	s.AddTransaction(ctx, draft())

	snap := s.Snapshot()
	snap.Transactions[0].Description = "mutated"
	if s.Snapshot().Transactions[0].Description == "mutated" {
		t.Fatalf("snapshot aliases the store")
	}
}
