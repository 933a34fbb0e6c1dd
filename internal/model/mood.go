package model

import "time"

// Mood is a user's daily mood/focus entry. One row per (user, date),
// upserted on save so re-submitting a day replaces the previous entry.
type Mood struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Date       string    `json:"date"` // "YYYY-MM-DD"
	Mood       string    `json:"mood"`
	FocusLevel int       `json:"focusLevel"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
