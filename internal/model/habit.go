// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — plain values with json tags,
// no behaviour beyond small helpers.
package model

import "time"

// Habit frequencies accepted by the API. Frequency is carried through and
// displayed by the frontend; the streak/rate engine treats every habit as
// "one qualifying completion per calendar day" regardless of frequency.
const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
	FrequencyCustom = "custom"
)

// ValidFrequency reports whether f is one of the accepted frequency values.
func ValidFrequency(f string) bool {
	return f == FrequencyDaily || f == FrequencyWeekly || f == FrequencyCustom
}

// Habit represents a tracked habit owned by exactly one user.
//
// CurrentStreak, BestStreak, and TotalCompletions are derived fields: they are
// recomputed by the stats engine after every completion insert/remove and
// persisted back onto the row. They are a cache of what the engine would
// return for the habit's completion history, never hand-edited.
type Habit struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	Name             string    `json:"name"`
	Icon             string    `json:"icon"`
	IconColor        string    `json:"iconColor"`
	Frequency        string    `json:"frequency"` // daily | weekly | custom
	DailyGoal        int       `json:"dailyGoal"`
	Unit             string    `json:"unit"`
	Description      string    `json:"description"`
	ReminderEnabled  bool      `json:"reminderEnabled"`
	ReminderTime     string    `json:"reminderTime"` // "HH:MM"
	CurrentStreak    int       `json:"currentStreak"`
	BestStreak       int       `json:"bestStreak"`
	TotalCompletions int       `json:"totalCompletions"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// HabitStats bundles the derived fields written back after recomputation.
type HabitStats struct {
	CurrentStreak    int `json:"currentStreak"`
	BestStreak       int `json:"bestStreak"`
	TotalCompletions int `json:"totalCompletions"`
}
