package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/habit-tracker/internal/apperror"
	"github.com/sakif/habit-tracker/internal/model"
)

func markDone(t *testing.T, repo *CompletionRepo, habitID, userID, date string) {
	t.Helper()
	c := &model.Completion{HabitID: habitID, UserID: userID, Date: date}
	if err := repo.Upsert(context.Background(), c); err != nil {
		t.Fatalf("failed to upsert completion: %v", err)
	}
}

// =========================================================================
// UPSERT TESTS
// =========================================================================

func TestCompletionUpsert(t *testing.T) {
	db := newTestDB(t)
	habits := NewHabitRepo(db)
	completions := NewCompletionRepo(db)
	habit := createTestHabit(t, habits, "alice", "Read")

	markDone(t, completions, habit.ID, "alice", "2024-01-10")

	c, err := completions.Get(context.Background(), habit.ID, "alice", "2024-01-10")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if c.Amount != 1 {
		t.Errorf("Amount = %d, want default 1", c.Amount)
	}
}

func TestCompletionUpsert_IdempotentOnSameDay(t *testing.T) {
	// Inserting the same (habit, user, date) twice must leave exactly one
	// row — the UNIQUE constraint plus ON CONFLICT makes the toggle
	// replace, not duplicate.
	db := newTestDB(t)
	habits := NewHabitRepo(db)
	completions := NewCompletionRepo(db)
	habit := createTestHabit(t, habits, "alice", "Read")

	markDone(t, completions, habit.ID, "alice", "2024-01-10")
	markDone(t, completions, habit.ID, "alice", "2024-01-10")

	dates, err := completions.ListDates(context.Background(), habit.ID, "alice", "")
	if err != nil {
		t.Fatalf("ListDates() error = %v", err)
	}
	if len(dates) != 1 {
		t.Errorf("len(dates) = %d, want 1 (double insert must not duplicate)", len(dates))
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestCompletionListDates_NewestFirstWithSince(t *testing.T) {
	db := newTestDB(t)
	habits := NewHabitRepo(db)
	completions := NewCompletionRepo(db)
	habit := createTestHabit(t, habits, "alice", "Read")

	for _, date := range []string{"2024-01-08", "2024-01-10", "2024-01-09"} {
		markDone(t, completions, habit.ID, "alice", date)
	}

	dates, err := completions.ListDates(context.Background(), habit.ID, "alice", "2024-01-09")
	if err != nil {
		t.Fatalf("ListDates() error = %v", err)
	}
	want := []string{"2024-01-10", "2024-01-09"}
	if len(dates) != len(want) {
		t.Fatalf("len(dates) = %d, want %d", len(dates), len(want))
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("dates[%d] = %s, want %s", i, dates[i], want[i])
		}
	}
}

func TestCompletionListDates_ScopedToUser(t *testing.T) {
	db := newTestDB(t)
	habits := NewHabitRepo(db)
	completions := NewCompletionRepo(db)
	aliceHabit := createTestHabit(t, habits, "alice", "Read")
	bobHabit := createTestHabit(t, habits, "bob", "Read")

	markDone(t, completions, aliceHabit.ID, "alice", "2024-01-10")
	markDone(t, completions, bobHabit.ID, "bob", "2024-01-10")

	dates, err := completions.ListDates(context.Background(), aliceHabit.ID, "alice", "")
	if err != nil {
		t.Fatalf("ListDates() error = %v", err)
	}
	if len(dates) != 1 {
		t.Errorf("len(dates) = %d, want 1", len(dates))
	}
}

// =========================================================================
// REMOVE / CASCADE TESTS
// =========================================================================

func TestCompletionRemove(t *testing.T) {
	db := newTestDB(t)
	habits := NewHabitRepo(db)
	completions := NewCompletionRepo(db)
	habit := createTestHabit(t, habits, "alice", "Read")
	markDone(t, completions, habit.ID, "alice", "2024-01-10")

	if err := completions.Remove(context.Background(), habit.ID, "alice", "2024-01-10"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	_, err := completions.Get(context.Background(), habit.ID, "alice", "2024-01-10")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get(removed) error = %v, want ErrNotFound", err)
	}
}

func TestCompletionRemove_MissingIsNoop(t *testing.T) {
	db := newTestDB(t)
	habits := NewHabitRepo(db)
	completions := NewCompletionRepo(db)
	habit := createTestHabit(t, habits, "alice", "Read")

	if err := completions.Remove(context.Background(), habit.ID, "alice", "2024-01-10"); err != nil {
		t.Errorf("Remove(never completed) error = %v, want nil (idempotent)", err)
	}
}

func TestHabitDelete_CascadesCompletions(t *testing.T) {
	db := newTestDB(t)
	habits := NewHabitRepo(db)
	completions := NewCompletionRepo(db)
	habit := createTestHabit(t, habits, "alice", "Read")
	markDone(t, completions, habit.ID, "alice", "2024-01-10")

	if err := habits.Delete(context.Background(), habit.ID, "alice"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	dates, err := completions.ListDates(context.Background(), habit.ID, "alice", "")
	if err != nil {
		t.Fatalf("ListDates() error = %v", err)
	}
	if len(dates) != 0 {
		t.Errorf("len(dates) = %d, want 0 (ON DELETE CASCADE must remove completions)", len(dates))
	}
}
