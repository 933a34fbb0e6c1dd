package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/habit-tracker/internal/apperror"
	"github.com/sakif/habit-tracker/internal/model"
)

func newTestProfileService(t *testing.T) (*ProfileService, *mockUserRepo, *mockHabitRepo, *mockCompletionRepo, *mockMoodRepo) {
	t.Helper()
	users := newMockUserRepo()
	habits := newMockHabitRepo()
	completions := newMockCompletionRepo()
	moods := newMockMoodRepo()
	svc := NewProfileService(users, habits, completions, moods, newTestLogger())
	return svc, users, habits, completions, moods
}

func seedUser(t *testing.T, users *mockUserRepo) *model.User {
	t.Helper()
	user := &model.User{
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Timezone:  "Europe/Stockholm",
		Language:  "English",
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return user
}

func TestProfileGet(t *testing.T) {
	svc, users, _, _, _ := newTestProfileService(t)
	user := seedUser(t, users)

	profile, err := svc.Get(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if profile.FirstName != "Ada" || profile.Email != "ada@example.com" {
		t.Errorf("Get() = %+v, want seeded values", profile)
	}
	if !profile.MemberSince.Equal(user.CreatedAt) {
		t.Errorf("MemberSince = %v, want CreatedAt %v", profile.MemberSince, user.CreatedAt)
	}
}

func TestProfileGet_UnknownUser(t *testing.T) {
	svc, _, _, _, _ := newTestProfileService(t)

	if _, err := svc.Get(context.Background(), "no-such-user"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() = %v, want not found", err)
	}
}

func TestProfileUpdate(t *testing.T) {
	svc, users, _, _, _ := newTestProfileService(t)
	user := seedUser(t, users)

	profile, err := svc.Update(context.Background(), user.ID, ProfileInput{
		FirstName: "Augusta",
		Timezone:  "Europe/London",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if profile.FirstName != "Augusta" {
		t.Errorf("FirstName = %q, want Augusta", profile.FirstName)
	}
	if profile.Timezone != "Europe/London" {
		t.Errorf("Timezone = %q, want Europe/London", profile.Timezone)
	}
	// Fields not in the input keep their values.
	if profile.LastName != "Lovelace" {
		t.Errorf("LastName = %q, want unchanged Lovelace", profile.LastName)
	}
}

func TestProfileUpdate_BadEmail(t *testing.T) {
	svc, users, _, _, _ := newTestProfileService(t)
	user := seedUser(t, users)

	_, err := svc.Update(context.Background(), user.ID, ProfileInput{Email: "not-an-email"})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Update() with bad email = %v, want validation error", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	svc, users, habits, completions, moods := newTestProfileService(t)
	user := seedUser(t, users)

	habit := &model.Habit{UserID: user.ID, Name: "Walk"}
	habits.Create(context.Background(), habit)
	completions.Upsert(context.Background(), &model.Completion{
		HabitID: habit.ID, UserID: user.ID, Date: "2024-03-10", Amount: 1,
	})
	moods.Upsert(context.Background(), &model.Mood{
		UserID: user.ID, Date: "2024-03-10", Mood: "good", FocusLevel: 7,
	})

	if err := svc.DeleteAccount(context.Background(), user.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}

	if _, err := users.GetByID(context.Background(), user.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Error("user should be gone")
	}
	if count, _ := habits.CountByUser(context.Background(), user.ID); count != 0 {
		t.Errorf("habits remaining = %d, want 0", count)
	}
	if dates, _ := completions.ListDates(context.Background(), habit.ID, user.ID, ""); len(dates) != 0 {
		t.Errorf("completions remaining = %d, want 0", len(dates))
	}
	if entries, _ := moods.ListSince(context.Background(), user.ID, ""); len(entries) != 0 {
		t.Errorf("moods remaining = %d, want 0", len(entries))
	}
}
