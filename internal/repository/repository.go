// Package repository defines the storage interfaces the service layer depends
// on. Services receive these interfaces, never the concrete sqlite types, so
// tests can inject in-memory fakes and the backend could be swapped without
// touching business logic.
package repository

import (
	"context"

	"github.com/sakif/habit-tracker/internal/model"
)

// HabitRepository persists habits. All operations are scoped by userID; a
// habit is only ever visible to its owner.
type HabitRepository interface {
	Create(ctx context.Context, habit *model.Habit) error
	GetByID(ctx context.Context, id, userID string) (*model.Habit, error)
	ListByUser(ctx context.Context, userID string) ([]model.Habit, error)
	Update(ctx context.Context, habit *model.Habit) error

	// UpdateStats persists the engine's derived fields (current streak, best
	// streak, total completions) back onto the habit row. Called after every
	// completion insert/remove.
	UpdateStats(ctx context.Context, id string, stats model.HabitStats) error

	// Delete removes the habit; its completions cascade away with it.
	Delete(ctx context.Context, id, userID string) error
	CountByUser(ctx context.Context, userID string) (int, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// CompletionRepository persists per-day completion records. The table holds
// at most one row per (habit, user, date); Upsert replaces on conflict so
// marking the same day twice is idempotent.
type CompletionRepository interface {
	Upsert(ctx context.Context, completion *model.Completion) error
	Remove(ctx context.Context, habitID, userID, date string) error
	Get(ctx context.Context, habitID, userID, date string) (*model.Completion, error)

	// ListDates returns the distinct completion dates for a habit, newest
	// first, on or after since (a "YYYY-MM-DD" string; empty means all).
	ListDates(ctx context.Context, habitID, userID, since string) ([]string, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// UpsertGitHub inserts or updates a user keyed on their GitHub ID,
	// keeping the internal ID stable across logins.
	UpsertGitHub(ctx context.Context, user *model.User) error
	UpdateProfile(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
}

// MoodRepository persists daily mood/focus entries, one row per (user, date).
type MoodRepository interface {
	Upsert(ctx context.Context, mood *model.Mood) error
	Get(ctx context.Context, userID, date string) (*model.Mood, error)

	// ListSince returns entries on or after since, oldest first.
	ListSince(ctx context.Context, userID, since string) ([]model.Mood, error)
	DeleteByUser(ctx context.Context, userID string) error
}
