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

// compile-time check that *HabitRepo implements repository.HabitRepository
var _ repository.HabitRepository = (*HabitRepo)(nil)

// HabitRepo implements repository.HabitRepository on the shared connection.
// Each entity gets its own repo type so the interface method names stay
// clean — one DB struct implementing four interfaces would need
// GetHabitByID/GetMoodByID style disambiguation everywhere.
type HabitRepo struct {
	db *DB
}

// NewHabitRepo creates a HabitRepo backed by db.
func NewHabitRepo(db *DB) *HabitRepo {
	return &HabitRepo{db: db}
}

const habitColumns = `id, user_id, name, icon, icon_color, frequency, daily_goal, unit,
	description, reminder_enabled, reminder_time,
	current_streak, best_streak, total_completions, created_at, updated_at`

// Create inserts a new habit, generating its ID and timestamps in place so
// the caller's struct is complete after the call.
func (r *HabitRepo) Create(ctx context.Context, habit *model.Habit) error {
	habit.ID = xid.New().String()

	now := time.Now()
	habit.CreatedAt = now
	habit.UpdatedAt = now

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO habits (id, user_id, name, icon, icon_color, frequency, daily_goal,
		   unit, description, reminder_enabled, reminder_time, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		habit.ID,
		habit.UserID,
		habit.Name,
		habit.Icon,
		habit.IconColor,
		habit.Frequency,
		habit.DailyGoal,
		habit.Unit,
		habit.Description,
		habit.ReminderEnabled,
		habit.ReminderTime,
		habit.CreatedAt,
		habit.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating habit: %w", err)
	}

	return nil
}

// GetByID retrieves a habit scoped to its owner. A habit belonging to another
// user is indistinguishable from a missing one — both return NotFound.
func (r *HabitRepo) GetByID(ctx context.Context, id, userID string) (*model.Habit, error) {
	var h model.Habit
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT `+habitColumns+` FROM habits WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(
		&h.ID, &h.UserID, &h.Name, &h.Icon, &h.IconColor, &h.Frequency,
		&h.DailyGoal, &h.Unit, &h.Description, &h.ReminderEnabled, &h.ReminderTime,
		&h.CurrentStreak, &h.BestStreak, &h.TotalCompletions,
		&h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("habit", id)
		}
		return nil, fmt.Errorf("sqlite: getting habit %s: %w", id, err)
	}

	return &h, nil
}

// ListByUser returns all of a user's habits, newest first.
func (r *HabitRepo) ListByUser(ctx context.Context, userID string) ([]model.Habit, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT `+habitColumns+` FROM habits WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing habits: %w", err)
	}
	defer rows.Close()

	habits := []model.Habit{}
	for rows.Next() {
		var h model.Habit
		if err := rows.Scan(
			&h.ID, &h.UserID, &h.Name, &h.Icon, &h.IconColor, &h.Frequency,
			&h.DailyGoal, &h.Unit, &h.Description, &h.ReminderEnabled, &h.ReminderTime,
			&h.CurrentStreak, &h.BestStreak, &h.TotalCompletions,
			&h.CreatedAt, &h.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning habit row: %w", err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating habits: %w", err)
	}

	return habits, nil
}

// Update rewrites a habit's editable fields. The derived streak fields are
// untouched here — they go through UpdateStats only.
func (r *HabitRepo) Update(ctx context.Context, habit *model.Habit) error {
	habit.UpdatedAt = time.Now()

	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE habits
		 SET name = ?, icon = ?, icon_color = ?, frequency = ?, daily_goal = ?,
		     unit = ?, description = ?, reminder_enabled = ?, reminder_time = ?,
		     updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		habit.Name,
		habit.Icon,
		habit.IconColor,
		habit.Frequency,
		habit.DailyGoal,
		habit.Unit,
		habit.Description,
		habit.ReminderEnabled,
		habit.ReminderTime,
		habit.UpdatedAt,
		habit.ID,
		habit.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating habit %s: %w", habit.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("habit", habit.ID)
	}

	return nil
}

// UpdateStats persists the derived fields the engine computed.
func (r *HabitRepo) UpdateStats(ctx context.Context, id string, stats model.HabitStats) error {
	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE habits
		 SET current_streak = ?, best_streak = ?, total_completions = ?, updated_at = ?
		 WHERE id = ?`,
		stats.CurrentStreak,
		stats.BestStreak,
		stats.TotalCompletions,
		time.Now(),
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating habit stats %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("habit", id)
	}

	return nil
}

// Delete removes a habit. Completions cascade via the foreign key.
func (r *HabitRepo) Delete(ctx context.Context, id, userID string) error {
	result, err := r.db.conn.ExecContext(ctx,
		`DELETE FROM habits WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting habit %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("habit", id)
	}

	return nil
}

// CountByUser reports how many habits a user has. The seeder uses this to
// decide whether an account is brand new.
func (r *HabitRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM habits WHERE user_id = ?`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting habits: %w", err)
	}
	return count, nil
}

// DeleteByUser removes all of a user's habits (account deletion).
func (r *HabitRepo) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.conn.ExecContext(ctx,
		`DELETE FROM habits WHERE user_id = ?`, userID,
	); err != nil {
		return fmt.Errorf("sqlite: deleting habits for user %s: %w", userID, err)
	}
	return nil
}
