// Package service contains the business logic layer.
//
// Handlers parse HTTP and write responses; services validate, enforce rules,
// and orchestrate; repositories talk to the database. Services depend on the
// repository interfaces, never on the sqlite package, so tests inject mocks
// and call business logic as plain functions.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/habit-tracker/internal/apperror"
	"github.com/sakif/habit-tracker/internal/model"
	"github.com/sakif/habit-tracker/internal/repository"
	"github.com/sakif/habit-tracker/internal/stats"
)

const (
	MaxHabitNameLength = 100
	DefaultDailyGoal   = 1
	DefaultReminder    = "09:00"
)

// starterHabits are seeded for a user the first time their (empty) habit list
// is requested, so a fresh account has something to tick off immediately.
var starterHabits = []model.Habit{
	{Name: "Drink water", Icon: "Droplets", IconColor: "text-blue-500", Frequency: model.FrequencyDaily, DailyGoal: 1, Unit: "glass", Description: "Stay hydrated"},
	{Name: "Read book", Icon: "Book", IconColor: "text-purple-500", Frequency: model.FrequencyDaily, DailyGoal: 1, Unit: "chapter", Description: "Read every day"},
	{Name: "Exercise", Icon: "Dumbbell", IconColor: "text-red-500", Frequency: model.FrequencyWeekly, DailyGoal: 3, Unit: "times", Description: "Move your body"},
	{Name: "Meditate", Icon: "Brain", IconColor: "text-green-500", Frequency: model.FrequencyDaily, DailyGoal: 1, Unit: "session", Description: "Mindfulness"},
	{Name: "Journal", Icon: "PenTool", IconColor: "text-orange-500", Frequency: model.FrequencyDaily, DailyGoal: 1, Unit: "entry", Description: "Write your day"},
	{Name: "Eat fruit", Icon: "Apple", IconColor: "text-pink-500", Frequency: model.FrequencyDaily, DailyGoal: 1, Unit: "piece", Description: "Get your vitamins"},
}

// HabitInput carries the user-editable habit fields into Create and Update.
type HabitInput struct {
	Name            string `json:"name"`
	Icon            string `json:"icon"`
	IconColor       string `json:"iconColor"`
	Frequency       string `json:"frequency"`
	DailyGoal       int    `json:"dailyGoal"`
	Unit            string `json:"unit"`
	Description     string `json:"description"`
	ReminderEnabled bool   `json:"reminderEnabled"`
	ReminderTime    string `json:"reminderTime"`
}

// HabitWithRate is a habit plus its trailing success rate, computed at read
// time. The rate is the one derived field not cached on the row, because it
// changes as days pass even when no completion is written.
type HabitWithRate struct {
	model.Habit
	SuccessRate int `json:"successRate"`
}

// HabitService handles habit CRUD and starter seeding.
type HabitService struct {
	habits      repository.HabitRepository
	completions repository.CompletionRepository
	logger      *slog.Logger
	now         func() time.Time
}

func NewHabitService(habits repository.HabitRepository, completions repository.CompletionRepository, logger *slog.Logger) *HabitService {
	return &HabitService{
		habits:      habits,
		completions: completions,
		logger:      logger,
		now:         time.Now,
	}
}

// Create validates and saves a new habit for userID.
func (s *HabitService) Create(ctx context.Context, userID string, in HabitInput) (*model.Habit, error) {
	habit, err := buildHabit(userID, in)
	if err != nil {
		return nil, err
	}

	if err := s.habits.Create(ctx, habit); err != nil {
		s.logger.Error("failed to create habit",
			slog.String("userId", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating habit: %w", err)
	}

	s.logger.Info("habit created",
		slog.String("id", habit.ID),
		slog.String("userId", userID),
		slog.String("name", habit.Name),
	)
	return habit, nil
}

// List returns the user's habits, newest first, each with its trailing
// success rate. A brand-new user gets the starter set seeded first.
func (s *HabitService) List(ctx context.Context, userID string) ([]HabitWithRate, error) {
	count, err := s.habits.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("counting habits: %w", err)
	}
	if count == 0 {
		if err := s.seedStarterHabits(ctx, userID); err != nil {
			return nil, err
		}
	}

	habits, err := s.habits.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing habits: %w", err)
	}

	ref := s.now()
	since := stats.FormatDay(ref.AddDate(0, 0, -(stats.MaxLookbackDays - 1)))

	out := make([]HabitWithRate, 0, len(habits))
	for _, h := range habits {
		raw, err := s.completions.ListDates(ctx, h.ID, userID, since)
		if err != nil {
			return nil, fmt.Errorf("loading completions for habit %s: %w", h.ID, err)
		}
		out = append(out, HabitWithRate{
			Habit:       h,
			SuccessRate: stats.SuccessRate(completionDays(raw), stats.SuccessRateWindowDays, ref),
		})
	}
	return out, nil
}

// Update applies the provided fields to an existing habit. Empty strings and
// a zero daily goal mean "keep the current value".
func (s *HabitService) Update(ctx context.Context, userID, id string, in HabitInput) (*model.Habit, error) {
	habit, err := s.habits.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		if len(name) > MaxHabitNameLength {
			return nil, apperror.ValidationFailed("name",
				fmt.Sprintf("habit name must be %d characters or less", MaxHabitNameLength))
		}
		habit.Name = name
	}
	if in.Icon != "" {
		habit.Icon = in.Icon
	}
	if in.IconColor != "" {
		habit.IconColor = in.IconColor
	}
	if in.Frequency != "" {
		if !model.ValidFrequency(in.Frequency) {
			return nil, apperror.ValidationFailed("frequency", "frequency must be daily, weekly, or custom")
		}
		habit.Frequency = in.Frequency
	}
	if in.DailyGoal != 0 {
		if in.DailyGoal < 1 {
			return nil, apperror.ValidationFailed("dailyGoal", "daily goal must be at least 1")
		}
		habit.DailyGoal = in.DailyGoal
	}
	if in.Unit != "" {
		habit.Unit = in.Unit
	}
	if in.Description != "" {
		habit.Description = strings.TrimSpace(in.Description)
	}
	habit.ReminderEnabled = in.ReminderEnabled
	if in.ReminderTime != "" {
		habit.ReminderTime = in.ReminderTime
	}

	if err := s.habits.Update(ctx, habit); err != nil {
		s.logger.Error("failed to update habit",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return habit, nil
}

// Delete removes a habit; its completions cascade away in the database.
func (s *HabitService) Delete(ctx context.Context, userID, id string) error {
	if err := s.habits.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.logger.Info("habit deleted", slog.String("id", id), slog.String("userId", userID))
	return nil
}

func (s *HabitService) seedStarterHabits(ctx context.Context, userID string) error {
	for _, starter := range starterHabits {
		h := starter
		h.UserID = userID
		h.ReminderTime = DefaultReminder
		if err := s.habits.Create(ctx, &h); err != nil {
			return fmt.Errorf("seeding starter habits: %w", err)
		}
	}
	s.logger.Info("seeded starter habits", slog.String("userId", userID))
	return nil
}

// buildHabit validates a HabitInput and assembles the model for Create.
func buildHabit(userID string, in HabitInput) (*model.Habit, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "habit name is required")
	}
	if len(name) > MaxHabitNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("habit name must be %d characters or less", MaxHabitNameLength))
	}

	frequency := in.Frequency
	if frequency == "" {
		frequency = model.FrequencyDaily
	}
	if !model.ValidFrequency(frequency) {
		return nil, apperror.ValidationFailed("frequency", "frequency must be daily, weekly, or custom")
	}

	goal := in.DailyGoal
	if goal == 0 {
		goal = DefaultDailyGoal
	}
	if goal < 1 {
		return nil, apperror.ValidationFailed("dailyGoal", "daily goal must be at least 1")
	}

	reminder := in.ReminderTime
	if reminder == "" {
		reminder = DefaultReminder
	}

	return &model.Habit{
		UserID:          userID,
		Name:            name,
		Icon:            in.Icon,
		IconColor:       in.IconColor,
		Frequency:       frequency,
		DailyGoal:       goal,
		Unit:            in.Unit,
		Description:     strings.TrimSpace(in.Description),
		ReminderEnabled: in.ReminderEnabled,
		ReminderTime:    reminder,
	}, nil
}

// completionDays converts stored "YYYY-MM-DD" strings into calendar days for
// the stats engine, dropping anything malformed rather than poisoning the
// whole computation.
func completionDays(raw []string) []time.Time {
	days := make([]time.Time, 0, len(raw))
	for _, r := range raw {
		d, err := stats.ParseDay(r)
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	return days
}

// isNotFound reports whether err is (or wraps) a not-found error.
func isNotFound(err error) bool {
	return errors.Is(err, apperror.ErrNotFound)
}
