package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/habit-tracker/internal/apperror"
	"github.com/sakif/habit-tracker/internal/model"
	"github.com/sakif/habit-tracker/internal/repository"
	"github.com/sakif/habit-tracker/internal/stats"
)

// TrackerService marks habits complete or not-complete for a calendar day and
// keeps the derived streak fields in sync.
//
// Every toggle runs the same sequence: verify ownership, write the completion
// row, reload the habit's recent completion dates, recompute streaks and the
// completion count, and persist those back onto the habit. The derived fields
// are a cache; if the recompute write is ever lost, the next toggle restores
// it.
type TrackerService struct {
	habits      repository.HabitRepository
	completions repository.CompletionRepository
	logger      *slog.Logger

	// now is the clock; injected so tests can pin the reference day.
	now func() time.Time
}

func NewTrackerService(habits repository.HabitRepository, completions repository.CompletionRepository, logger *slog.Logger) *TrackerService {
	return &TrackerService{
		habits:      habits,
		completions: completions,
		logger:      logger,
		now:         time.Now,
	}
}

// Complete marks habitID as done on date ("YYYY-MM-DD", empty means today).
// Completing an already-completed day is a no-op that still succeeds.
// Returns the resolved date.
func (s *TrackerService) Complete(ctx context.Context, userID, habitID, date string) (string, error) {
	day, err := s.resolveDate(date)
	if err != nil {
		return "", err
	}

	if _, err := s.habits.GetByID(ctx, habitID, userID); err != nil {
		return "", err
	}

	if _, err := s.completions.Get(ctx, habitID, userID, day); err == nil {
		return day, nil // already completed for this date
	} else if !isNotFound(err) {
		return "", fmt.Errorf("checking completion: %w", err)
	}

	completion := &model.Completion{
		HabitID: habitID,
		UserID:  userID,
		Date:    day,
		Amount:  1,
	}
	if err := s.completions.Upsert(ctx, completion); err != nil {
		s.logger.Error("failed to record completion",
			slog.String("habitId", habitID),
			slog.String("date", day),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("recording completion: %w", err)
	}

	if err := s.recompute(ctx, habitID, userID); err != nil {
		return "", err
	}

	s.logger.Info("habit completed",
		slog.String("habitId", habitID),
		slog.String("userId", userID),
		slog.String("date", day),
	)
	return day, nil
}

// Uncomplete removes the completion for date (empty means today). Removing a
// day that was never completed is a no-op that still succeeds.
func (s *TrackerService) Uncomplete(ctx context.Context, userID, habitID, date string) (string, error) {
	day, err := s.resolveDate(date)
	if err != nil {
		return "", err
	}

	if _, err := s.habits.GetByID(ctx, habitID, userID); err != nil {
		return "", err
	}

	if _, err := s.completions.Get(ctx, habitID, userID, day); err != nil {
		if isNotFound(err) {
			return day, nil // nothing to remove
		}
		return "", fmt.Errorf("checking completion: %w", err)
	}

	if err := s.completions.Remove(ctx, habitID, userID, day); err != nil {
		return "", fmt.Errorf("removing completion: %w", err)
	}

	if err := s.recompute(ctx, habitID, userID); err != nil {
		return "", err
	}

	s.logger.Info("habit uncompleted",
		slog.String("habitId", habitID),
		slog.String("userId", userID),
		slog.String("date", day),
	)
	return day, nil
}

// History returns the habit's completed/not-completed status for the last
// days calendar days, oldest first. days <= 0 falls back to the default.
func (s *TrackerService) History(ctx context.Context, userID, habitID string, days int) ([]stats.DayStatus, error) {
	if days <= 0 {
		days = stats.DefaultHistoryDays
	}
	if days > stats.MaxLookbackDays {
		days = stats.MaxLookbackDays
	}

	if _, err := s.habits.GetByID(ctx, habitID, userID); err != nil {
		return nil, err
	}

	ref := s.now()
	since := stats.FormatDay(ref.AddDate(0, 0, -(days - 1)))
	raw, err := s.completions.ListDates(ctx, habitID, userID, since)
	if err != nil {
		return nil, fmt.Errorf("loading completions: %w", err)
	}

	return stats.History(completionDays(raw), days, ref), nil
}

// CompletionsForDate reports, for every habit the user has, whether it was
// completed on date (empty means today).
func (s *TrackerService) CompletionsForDate(ctx context.Context, userID, date string) ([]model.DayCompletion, error) {
	day, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}

	habits, err := s.habits.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing habits: %w", err)
	}

	out := make([]model.DayCompletion, 0, len(habits))
	for _, h := range habits {
		_, err := s.completions.Get(ctx, h.ID, userID, day)
		if err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("checking completion: %w", err)
		}
		out = append(out, model.DayCompletion{HabitID: h.ID, Completed: err == nil})
	}
	return out, nil
}

// recompute reloads the habit's recent completion dates and writes the
// derived streak fields back onto the habit row.
func (s *TrackerService) recompute(ctx context.Context, habitID, userID string) error {
	ref := s.now()
	since := stats.FormatDay(ref.AddDate(0, 0, -(stats.MaxLookbackDays - 1)))

	raw, err := s.completions.ListDates(ctx, habitID, userID, since)
	if err != nil {
		return fmt.Errorf("loading completions: %w", err)
	}

	days := completionDays(raw)
	streaks := stats.ComputeStreaks(days, ref)

	err = s.habits.UpdateStats(ctx, habitID, model.HabitStats{
		CurrentStreak:    streaks.Current,
		BestStreak:       streaks.Best,
		TotalCompletions: len(days),
	})
	if err != nil {
		return fmt.Errorf("persisting habit stats: %w", err)
	}
	return nil
}

// resolveDate validates an incoming "YYYY-MM-DD" string, substituting today
// for the empty string.
func (s *TrackerService) resolveDate(date string) (string, error) {
	if date == "" {
		return stats.FormatDay(s.now()), nil
	}
	d, err := stats.ParseDay(date)
	if err != nil {
		return "", apperror.ValidationFailed("date", "date must be in YYYY-MM-DD format")
	}
	return stats.FormatDay(d), nil
}
