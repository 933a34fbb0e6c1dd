package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/sakif/habit-tracker/internal/apperror"
	"github.com/sakif/habit-tracker/internal/model"
)

// =========================================================================
// MOCK REPOSITORIES
// =========================================================================
//
// Hand-written in-memory implementations of the repository interfaces.
// Services get these injected instead of the sqlite types, so these tests
// exercise business logic alone with no database.

type mockHabitRepo struct {
	habits map[string]*model.Habit
	order  []string // insertion order, so listings are deterministic
	nextID int
}

func newMockHabitRepo() *mockHabitRepo {
	return &mockHabitRepo{habits: make(map[string]*model.Habit)}
}

func (m *mockHabitRepo) Create(_ context.Context, habit *model.Habit) error {
	m.nextID++
	habit.ID = fmt.Sprintf("habit-%d", m.nextID)
	if habit.CreatedAt.IsZero() {
		habit.CreatedAt = time.Now()
	}
	habit.UpdatedAt = habit.CreatedAt
	stored := *habit
	m.habits[habit.ID] = &stored
	m.order = append(m.order, habit.ID)
	return nil
}

func (m *mockHabitRepo) GetByID(_ context.Context, id, userID string) (*model.Habit, error) {
	habit, ok := m.habits[id]
	if !ok || habit.UserID != userID {
		return nil, apperror.NotFound("habit", id)
	}
	result := *habit
	return &result, nil
}

func (m *mockHabitRepo) ListByUser(_ context.Context, userID string) ([]model.Habit, error) {
	result := make([]model.Habit, 0)
	for _, id := range m.order {
		if h, ok := m.habits[id]; ok && h.UserID == userID {
			result = append(result, *h)
		}
	}
	return result, nil
}

func (m *mockHabitRepo) Update(_ context.Context, habit *model.Habit) error {
	existing, ok := m.habits[habit.ID]
	if !ok || existing.UserID != habit.UserID {
		return apperror.NotFound("habit", habit.ID)
	}
	stored := *habit
	stored.UpdatedAt = time.Now()
	m.habits[habit.ID] = &stored
	return nil
}

func (m *mockHabitRepo) UpdateStats(_ context.Context, id string, stats model.HabitStats) error {
	habit, ok := m.habits[id]
	if !ok {
		return apperror.NotFound("habit", id)
	}
	habit.CurrentStreak = stats.CurrentStreak
	habit.BestStreak = stats.BestStreak
	habit.TotalCompletions = stats.TotalCompletions
	return nil
}

func (m *mockHabitRepo) Delete(_ context.Context, id, userID string) error {
	habit, ok := m.habits[id]
	if !ok || habit.UserID != userID {
		return apperror.NotFound("habit", id)
	}
	delete(m.habits, id)
	return nil
}

func (m *mockHabitRepo) CountByUser(_ context.Context, userID string) (int, error) {
	count := 0
	for _, h := range m.habits {
		if h.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *mockHabitRepo) DeleteByUser(_ context.Context, userID string) error {
	for id, h := range m.habits {
		if h.UserID == userID {
			delete(m.habits, id)
		}
	}
	return nil
}

type mockCompletionRepo struct {
	completions map[string]*model.Completion // keyed by habitID|userID|date
	nextID      int
}

func newMockCompletionRepo() *mockCompletionRepo {
	return &mockCompletionRepo{completions: make(map[string]*model.Completion)}
}

func completionKey(habitID, userID, date string) string {
	return habitID + "|" + userID + "|" + date
}

func (m *mockCompletionRepo) Upsert(_ context.Context, c *model.Completion) error {
	key := completionKey(c.HabitID, c.UserID, c.Date)
	if existing, ok := m.completions[key]; ok {
		existing.Amount = c.Amount
		c.ID = existing.ID
		return nil
	}
	m.nextID++
	c.ID = fmt.Sprintf("completion-%d", m.nextID)
	c.CreatedAt = time.Now()
	stored := *c
	m.completions[key] = &stored
	return nil
}

func (m *mockCompletionRepo) Remove(_ context.Context, habitID, userID, date string) error {
	delete(m.completions, completionKey(habitID, userID, date))
	return nil
}

func (m *mockCompletionRepo) Get(_ context.Context, habitID, userID, date string) (*model.Completion, error) {
	c, ok := m.completions[completionKey(habitID, userID, date)]
	if !ok {
		return nil, apperror.NotFound("completion", habitID+"/"+date)
	}
	result := *c
	return &result, nil
}

func (m *mockCompletionRepo) ListDates(_ context.Context, habitID, userID, since string) ([]string, error) {
	dates := make([]string, 0)
	for _, c := range m.completions {
		if c.HabitID != habitID || c.UserID != userID {
			continue
		}
		if since != "" && c.Date < since {
			continue
		}
		dates = append(dates, c.Date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates))) // newest first, like the real repo
	return dates, nil
}

func (m *mockCompletionRepo) DeleteByUser(_ context.Context, userID string) error {
	for key, c := range m.completions {
		if c.UserID == userID {
			delete(m.completions, key)
		}
	}
	return nil
}

type mockUserRepo struct {
	users  map[string]*model.User
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if user.Email != "" && u.Email == user.Email {
			return apperror.Conflict("user", "email already registered")
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *user
	return &result, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockUserRepo) UpsertGitHub(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.GitHubID == user.GitHubID {
			u.Email = user.Email
			u.ProfileImage = user.ProfileImage
			u.UpdatedAt = time.Now()
			*user = *u
			return nil
		}
	}
	return m.Create(context.Background(), user)
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return apperror.NotFound("user", user.ID)
	}
	stored := *user
	stored.UpdatedAt = time.Now()
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(m.users, id)
	return nil
}

type mockMoodRepo struct {
	moods  map[string]*model.Mood // keyed by userID|date
	nextID int
}

func newMockMoodRepo() *mockMoodRepo {
	return &mockMoodRepo{moods: make(map[string]*model.Mood)}
}

func (m *mockMoodRepo) Upsert(_ context.Context, mood *model.Mood) error {
	key := mood.UserID + "|" + mood.Date
	if existing, ok := m.moods[key]; ok {
		existing.Mood = mood.Mood
		existing.FocusLevel = mood.FocusLevel
		existing.UpdatedAt = time.Now()
		mood.ID = existing.ID
		return nil
	}
	m.nextID++
	mood.ID = fmt.Sprintf("mood-%d", m.nextID)
	mood.CreatedAt = time.Now()
	mood.UpdatedAt = mood.CreatedAt
	stored := *mood
	m.moods[key] = &stored
	return nil
}

func (m *mockMoodRepo) Get(_ context.Context, userID, date string) (*model.Mood, error) {
	mood, ok := m.moods[userID+"|"+date]
	if !ok {
		return nil, apperror.NotFound("mood", date)
	}
	result := *mood
	return &result, nil
}

func (m *mockMoodRepo) ListSince(_ context.Context, userID, since string) ([]model.Mood, error) {
	result := make([]model.Mood, 0)
	for _, mood := range m.moods {
		if mood.UserID != userID {
			continue
		}
		if since != "" && mood.Date < since {
			continue
		}
		result = append(result, *mood)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result, nil
}

func (m *mockMoodRepo) DeleteByUser(_ context.Context, userID string) error {
	for key, mood := range m.moods {
		if mood.UserID == userID {
			delete(m.moods, key)
		}
	}
	return nil
}

// =========================================================================
// SHARED HELPERS
// =========================================================================

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fixedNow is the pinned test clock. Using one reference day everywhere
// keeps date arithmetic in the tests easy to eyeball.
var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// dayOffset returns the "YYYY-MM-DD" string n days after the pinned clock
// (negative n for days before).
func dayOffset(n int) string {
	return fixedNow.AddDate(0, 0, n).Format("2006-01-02")
}
