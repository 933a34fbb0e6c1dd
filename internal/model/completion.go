package model

import "time"

// Completion records that a habit was performed on a specific calendar date.
//
// Identity is the composite (HabitID, UserID, Date) — the table has a UNIQUE
// constraint on it, and inserts are upserts, so marking the same day twice
// replaces rather than duplicates. Date is a "YYYY-MM-DD" string: calendar
// days are compared as strings in one fixed timezone (UTC), never as instants.
type Completion struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habitId"`
	UserID    string    `json:"userId"`
	Date      string    `json:"date"`   // "YYYY-MM-DD"
	Amount    int       `json:"amount"` // positive, defaults to 1
	CreatedAt time.Time `json:"createdAt"`
}

// DayCompletion is the per-habit completion status for a single date,
// returned by GET /api/user/habits/completions.
type DayCompletion struct {
	HabitID   string `json:"habitId"`
	Completed bool   `json:"completed"`
}
