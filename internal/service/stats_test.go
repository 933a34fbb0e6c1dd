package service

import (
	"context"
	"testing"
	"time"

	"github.com/sakif/habit-tracker/internal/model"
)

func newTestStatsService() (*StatsService, *mockHabitRepo, *mockCompletionRepo) {
	habits := newMockHabitRepo()
	completions := newMockCompletionRepo()
	svc := NewStatsService(habits, completions, newTestLogger())
	svc.now = fixedClock
	return svc, habits, completions
}

func TestUserStats_NoHabits(t *testing.T) {
	svc, _, _ := newTestStatsService()

	got, err := svc.UserStats(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("UserStats() error = %v", err)
	}
	if got.ActiveHabits != 0 || got.SuccessRate != 0 || got.TotalDays != 0 {
		t.Errorf("UserStats() for empty user = %+v, want all zeros", got)
	}
	if got.BestHabit != nil {
		t.Errorf("BestHabit = %+v, want nil with no habits", got.BestHabit)
	}
}

func TestUserStats_Aggregates(t *testing.T) {
	svc, habits, completions := newTestStatsService()

	walk := &model.Habit{UserID: "user-1", Name: "Walk", CreatedAt: fixedNow.AddDate(0, 0, -5)}
	read := &model.Habit{UserID: "user-1", Name: "Read", CreatedAt: fixedNow.AddDate(0, 0, -5)}
	habits.Create(context.Background(), walk)
	habits.Create(context.Background(), read)

	// Walk done today and yesterday; Read done only today. Both share today,
	// so the distinct-day union is 2, not 3.
	for _, day := range []string{dayOffset(0), dayOffset(-1)} {
		completions.Upsert(context.Background(), &model.Completion{
			HabitID: walk.ID, UserID: "user-1", Date: day, Amount: 1,
		})
	}
	completions.Upsert(context.Background(), &model.Completion{
		HabitID: read.ID, UserID: "user-1", Date: dayOffset(0), Amount: 1,
	})
	habits.UpdateStats(context.Background(), walk.ID, model.HabitStats{CurrentStreak: 2, BestStreak: 2, TotalCompletions: 2})
	habits.UpdateStats(context.Background(), read.ID, model.HabitStats{CurrentStreak: 1, BestStreak: 1, TotalCompletions: 1})

	got, err := svc.UserStats(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("UserStats() error = %v", err)
	}
	if got.ActiveHabits != 2 {
		t.Errorf("ActiveHabits = %d, want 2", got.ActiveHabits)
	}
	if got.TotalDays != 2 {
		t.Errorf("TotalDays = %d, want 2 (union, not sum)", got.TotalDays)
	}
	// Best/current streak come from the engine, not the cached columns:
	// walk's run of 2 is the maximum either way.
	if got.BestStreak != 2 || got.CurrentStreak != 2 {
		t.Errorf("streaks = best %d current %d, want 2/2", got.BestStreak, got.CurrentStreak)
	}
	// HabitsCompleted sums the cached completion counts.
	if got.HabitsCompleted != 3 {
		t.Errorf("HabitsCompleted = %d, want 3", got.HabitsCompleted)
	}
	if got.BestHabit == nil || got.BestHabit.ID != walk.ID {
		t.Errorf("BestHabit = %+v, want walk (higher rate)", got.BestHabit)
	}
}

func TestUserStats_BestHabitNilWhenAllRatesZero(t *testing.T) {
	svc, habits, _ := newTestStatsService()

	habits.Create(context.Background(), &model.Habit{UserID: "user-1", Name: "Walk"})

	got, err := svc.UserStats(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("UserStats() error = %v", err)
	}
	if got.BestHabit != nil {
		t.Errorf("BestHabit = %+v, want nil when no habit has a rate above zero", got.BestHabit)
	}
}

func TestTrend_LengthAndOrdering(t *testing.T) {
	svc, habits, completions := newTestStatsService()

	habit := &model.Habit{UserID: "user-1", Name: "Walk", CreatedAt: fixedNow.AddDate(0, 0, -10)}
	habits.Create(context.Background(), habit)
	completions.Upsert(context.Background(), &model.Completion{
		HabitID: habit.ID, UserID: "user-1", Date: dayOffset(0), Amount: 1,
	})

	trend, err := svc.Trend(context.Background(), "user-1", 3)
	if err != nil {
		t.Fatalf("Trend() error = %v", err)
	}
	if len(trend) != 3 {
		t.Fatalf("Trend() = %d points, want exactly 3", len(trend))
	}
	if trend[0].Date != dayOffset(-2) || trend[2].Date != dayOffset(0) {
		t.Errorf("trend dates = %s..%s, want %s..%s (oldest first)",
			trend[0].Date, trend[2].Date, dayOffset(-2), dayOffset(0))
	}
	if trend[2].SuccessRate != 100 {
		t.Errorf("today's rate = %d, want 100", trend[2].SuccessRate)
	}
}

func TestTrend_ExcludesHabitsBeforeCreation(t *testing.T) {
	svc, habits, completions := newTestStatsService()

	// Created today: only today's point should count it in the denominator.
	habit := &model.Habit{UserID: "user-1", Name: "Walk", CreatedAt: fixedNow}
	habits.Create(context.Background(), habit)
	completions.Upsert(context.Background(), &model.Completion{
		HabitID: habit.ID, UserID: "user-1", Date: dayOffset(0), Amount: 1,
	})

	trend, err := svc.Trend(context.Background(), "user-1", 3)
	if err != nil {
		t.Fatalf("Trend() error = %v", err)
	}
	if trend[0].SuccessRate != 0 || trend[1].SuccessRate != 0 {
		t.Errorf("days before creation read %d/%d, want 0/0",
			trend[0].SuccessRate, trend[1].SuccessRate)
	}
	if trend[2].SuccessRate != 100 {
		t.Errorf("creation day rate = %d, want 100", trend[2].SuccessRate)
	}
}

func TestTrend_DefaultDays(t *testing.T) {
	svc, habits, _ := newTestStatsService()
	habits.Create(context.Background(), &model.Habit{
		UserID: "user-1", Name: "Walk", CreatedAt: fixedNow.Add(-time.Hour),
	})

	trend, err := svc.Trend(context.Background(), "user-1", 0)
	if err != nil {
		t.Fatalf("Trend() error = %v", err)
	}
	if len(trend) != 30 {
		t.Errorf("Trend(0) = %d points, want the 30-day default", len(trend))
	}
}
