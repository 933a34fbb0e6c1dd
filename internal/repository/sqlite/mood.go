package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/habit-tracker/internal/apperror"
	"github.com/sakif/habit-tracker/internal/model"
	"github.com/sakif/habit-tracker/internal/repository"
)

// compile-time check that *MoodRepo implements repository.MoodRepository
var _ repository.MoodRepository = (*MoodRepo)(nil)

// MoodRepo implements repository.MoodRepository on the shared connection.
type MoodRepo struct {
	db *DB
}

// NewMoodRepo creates a MoodRepo backed by db.
func NewMoodRepo(db *DB) *MoodRepo {
	return &MoodRepo{db: db}
}

// Upsert saves a day's mood/focus entry, replacing any existing entry for
// the same (user, date).
func (r *MoodRepo) Upsert(ctx context.Context, mood *model.Mood) error {
	mood.ID = xid.New().String()

	now := time.Now()
	mood.CreatedAt = now
	mood.UpdatedAt = now

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO moods (id, user_id, date, mood, focus_level, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, date) DO UPDATE SET
		   mood = excluded.mood,
		   focus_level = excluded.focus_level,
		   updated_at = excluded.updated_at`,
		mood.ID,
		mood.UserID,
		mood.Date,
		mood.Mood,
		mood.FocusLevel,
		mood.CreatedAt,
		mood.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting mood: %w", err)
	}

	return nil
}

// Get returns the entry for one (user, date), or NotFound.
func (r *MoodRepo) Get(ctx context.Context, userID, date string) (*model.Mood, error) {
	var m model.Mood
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, date, mood, focus_level, created_at, updated_at
		 FROM moods WHERE user_id = ? AND date = ?`,
		userID, date,
	).Scan(&m.ID, &m.UserID, &m.Date, &m.Mood, &m.FocusLevel, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("mood", date)
		}
		return nil, fmt.Errorf("sqlite: getting mood: %w", err)
	}

	return &m, nil
}

// ListSince returns the user's entries on or after since, oldest first.
func (r *MoodRepo) ListSince(ctx context.Context, userID, since string) ([]model.Mood, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, user_id, date, mood, focus_level, created_at, updated_at
		 FROM moods WHERE user_id = ? AND date >= ? ORDER BY date ASC`,
		userID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing moods: %w", err)
	}
	defer rows.Close()

	moods := []model.Mood{}
	for rows.Next() {
		var m model.Mood
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.Date, &m.Mood, &m.FocusLevel, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning mood row: %w", err)
		}
		moods = append(moods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating moods: %w", err)
	}

	return moods, nil
}

// DeleteByUser removes all of a user's mood entries (account deletion).
func (r *MoodRepo) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.conn.ExecContext(ctx,
		`DELETE FROM moods WHERE user_id = ?`, userID,
	); err != nil {
		return fmt.Errorf("sqlite: deleting moods for user %s: %w", userID, err)
	}
	return nil
}
