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

// moodValues are the accepted mood labels, matching what the frontend's
// check-in widget offers.
var moodValues = map[string]bool{
	"great": true,
	"good":  true,
	"okay":  true,
	"bad":   true,
	"awful": true,
}

const (
	MinFocusLevel = 1
	MaxFocusLevel = 10
)

// MoodService stores one mood/focus entry per user per calendar day.
type MoodService struct {
	moods  repository.MoodRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewMoodService(moods repository.MoodRepository, logger *slog.Logger) *MoodService {
	return &MoodService{
		moods:  moods,
		logger: logger,
		now:    time.Now,
	}
}

// Save records the mood/focus entry for date (empty means today), replacing
// any earlier entry for the same day.
func (s *MoodService) Save(ctx context.Context, userID, date, mood string, focusLevel int) (*model.Mood, error) {
	day, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	if !moodValues[mood] {
		return nil, apperror.ValidationFailed("mood", "mood must be one of great, good, okay, bad, awful")
	}
	if focusLevel < MinFocusLevel || focusLevel > MaxFocusLevel {
		return nil, apperror.ValidationFailed("focusLevel",
			fmt.Sprintf("focus level must be between %d and %d", MinFocusLevel, MaxFocusLevel))
	}

	entry := &model.Mood{
		UserID:     userID,
		Date:       day,
		Mood:       mood,
		FocusLevel: focusLevel,
	}
	if err := s.moods.Upsert(ctx, entry); err != nil {
		s.logger.Error("failed to save mood",
			slog.String("userId", userID),
			slog.String("date", day),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("saving mood: %w", err)
	}

	return entry, nil
}

// Get returns the entry for date (empty means today), or a not-found error
// when the user hasn't checked in that day.
func (s *MoodService) Get(ctx context.Context, userID, date string) (*model.Mood, error) {
	day, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}
	return s.moods.Get(ctx, userID, day)
}

// History returns the user's entries from the last days calendar days,
// oldest first. days <= 0 falls back to the default window.
func (s *MoodService) History(ctx context.Context, userID string, days int) ([]model.Mood, error) {
	if days <= 0 {
		days = stats.DefaultHistoryDays
	}
	if days > stats.MaxLookbackDays {
		days = stats.MaxLookbackDays
	}

	since := stats.FormatDay(s.now().AddDate(0, 0, -(days - 1)))
	entries, err := s.moods.ListSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("loading mood history: %w", err)
	}
	return entries, nil
}

func (s *MoodService) resolveDate(date string) (string, error) {
	if date == "" {
		return stats.FormatDay(s.now()), nil
	}
	d, err := stats.ParseDay(date)
	if err != nil {
		return "", apperror.ValidationFailed("date", "date must be in YYYY-MM-DD format")
	}
	return stats.FormatDay(d), nil
}
