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

// compile-time check that *CompletionRepo implements repository.CompletionRepository
var _ repository.CompletionRepository = (*CompletionRepo)(nil)

// CompletionRepo implements repository.CompletionRepository on the shared
// connection.
type CompletionRepo struct {
	db *DB
}

// NewCompletionRepo creates a CompletionRepo backed by db.
func NewCompletionRepo(db *DB) *CompletionRepo {
	return &CompletionRepo{db: db}
}

// Upsert inserts a completion, replacing the existing row on a
// (habit_id, user_id, date) conflict.
//
// The upsert — rather than read-then-write — is what makes concurrent
// "toggle completion" requests safe: whichever write lands last simply
// replaces the amount, and the table can never hold two rows for the same
// habit and day.
func (r *CompletionRepo) Upsert(ctx context.Context, completion *model.Completion) error {
	completion.ID = xid.New().String()
	completion.CreatedAt = time.Now()
	if completion.Amount <= 0 {
		completion.Amount = 1
	}

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO completions (id, habit_id, user_id, date, amount, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(habit_id, user_id, date) DO UPDATE SET amount = excluded.amount`,
		completion.ID,
		completion.HabitID,
		completion.UserID,
		completion.Date,
		completion.Amount,
		completion.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting completion: %w", err)
	}

	return nil
}

// Remove deletes the completion for one (habit, user, date). Removing a
// day that was never completed is not an error — the toggle is idempotent.
func (r *CompletionRepo) Remove(ctx context.Context, habitID, userID, date string) error {
	if _, err := r.db.conn.ExecContext(ctx,
		`DELETE FROM completions WHERE habit_id = ? AND user_id = ? AND date = ?`,
		habitID, userID, date,
	); err != nil {
		return fmt.Errorf("sqlite: removing completion: %w", err)
	}
	return nil
}

// Get returns the completion for one (habit, user, date), or NotFound.
func (r *CompletionRepo) Get(ctx context.Context, habitID, userID, date string) (*model.Completion, error) {
	var c model.Completion
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT id, habit_id, user_id, date, amount, created_at
		 FROM completions
		 WHERE habit_id = ? AND user_id = ? AND date = ?`,
		habitID, userID, date,
	).Scan(&c.ID, &c.HabitID, &c.UserID, &c.Date, &c.Amount, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("completion", habitID+"/"+date)
		}
		return nil, fmt.Errorf("sqlite: getting completion: %w", err)
	}

	return &c, nil
}

// ListDates returns the distinct completion dates for a habit, newest first.
// The UNIQUE constraint already guarantees distinctness; DISTINCT in the
// query keeps the contract honest even against hand-edited databases.
func (r *CompletionRepo) ListDates(ctx context.Context, habitID, userID, since string) ([]string, error) {
	query := `SELECT DISTINCT date FROM completions WHERE habit_id = ? AND user_id = ?`
	args := []any{habitID, userID}
	if since != "" {
		query += ` AND date >= ?`
		args = append(args, since)
	}
	query += ` ORDER BY date DESC`

	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing completion dates: %w", err)
	}
	defer rows.Close()

	dates := []string{}
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("sqlite: scanning completion date: %w", err)
		}
		dates = append(dates, date)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating completion dates: %w", err)
	}

	return dates, nil
}

// DeleteByUser removes all of a user's completions (account deletion).
func (r *CompletionRepo) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.conn.ExecContext(ctx,
		`DELETE FROM completions WHERE user_id = ?`, userID,
	); err != nil {
		return fmt.Errorf("sqlite: deleting completions for user %s: %w", userID, err)
	}
	return nil
}
