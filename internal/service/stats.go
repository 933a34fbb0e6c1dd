package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/habit-tracker/internal/model"
	"github.com/sakif/habit-tracker/internal/repository"
	"github.com/sakif/habit-tracker/internal/stats"
)

// BestHabit identifies the habit with the highest trailing success rate for
// the dashboard highlight card.
type BestHabit struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	SuccessRate int    `json:"successRate"`
}

// DashboardStats is the engine's aggregate plus the extras the dashboard
// shows: the all-habit completion count and the best-performing habit.
// BestHabit is nil until some habit has a rate above zero.
type DashboardStats struct {
	stats.UserStats
	HabitsCompleted int        `json:"habitsCompleted"`
	BestHabit       *BestHabit `json:"bestHabit"`
}

// StatsService computes the cross-habit dashboard aggregates.
type StatsService struct {
	habits      repository.HabitRepository
	completions repository.CompletionRepository
	logger      *slog.Logger
	now         func() time.Time
}

func NewStatsService(habits repository.HabitRepository, completions repository.CompletionRepository, logger *slog.Logger) *StatsService {
	return &StatsService{
		habits:      habits,
		completions: completions,
		logger:      logger,
		now:         time.Now,
	}
}

// UserStats aggregates streaks, success rate, and active-day counts across
// all of the user's habits.
func (s *StatsService) UserStats(ctx context.Context, userID string) (*DashboardStats, error) {
	habits, err := s.habits.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing habits: %w", err)
	}

	ref := s.now()
	activity, completions, err := s.loadActivity(ctx, userID, habits, ref)
	if err != nil {
		return nil, err
	}

	out := &DashboardStats{
		UserStats: stats.AggregateUserStats(activity, completions, ref),
	}

	bestRate := 0
	for _, h := range habits {
		out.HabitsCompleted += h.TotalCompletions
		rate := stats.SuccessRate(completions[h.ID], stats.SuccessRateWindowDays, ref)
		if rate > bestRate {
			bestRate = rate
			out.BestHabit = &BestHabit{ID: h.ID, Name: h.Name, Icon: h.Icon, SuccessRate: rate}
		}
	}

	return out, nil
}

// Trend returns the day-by-day aggregate success-rate series for the last
// days calendar days, oldest first. days <= 0 falls back to the default.
func (s *StatsService) Trend(ctx context.Context, userID string, days int) ([]stats.TrendPoint, error) {
	if days <= 0 {
		days = stats.DefaultTrendDays
	}
	if days > stats.MaxLookbackDays {
		days = stats.MaxLookbackDays
	}

	habits, err := s.habits.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing habits: %w", err)
	}

	ref := s.now()
	activity, completions, err := s.loadActivity(ctx, userID, habits, ref)
	if err != nil {
		return nil, err
	}

	return stats.Trend(activity, completions, days, ref), nil
}

// loadActivity fetches each habit's recent completion dates and shapes the
// inputs the aggregate engine functions take.
func (s *StatsService) loadActivity(ctx context.Context, userID string, habits []model.Habit, ref time.Time) ([]stats.HabitActivity, map[string][]time.Time, error) {
	since := stats.FormatDay(ref.AddDate(0, 0, -(stats.MaxLookbackDays - 1)))

	activity := make([]stats.HabitActivity, 0, len(habits))
	completions := make(map[string][]time.Time, len(habits))
	for _, h := range habits {
		raw, err := s.completions.ListDates(ctx, h.ID, userID, since)
		if err != nil {
			return nil, nil, fmt.Errorf("loading completions for habit %s: %w", h.ID, err)
		}
		activity = append(activity, stats.HabitActivity{ID: h.ID, CreatedAt: h.CreatedAt})
		completions[h.ID] = completionDays(raw)
	}
	return activity, completions, nil
}
