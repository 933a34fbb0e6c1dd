package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/habit-tracker/internal/apperror"
	"github.com/sakif/habit-tracker/internal/model"
	"github.com/sakif/habit-tracker/internal/repository"
)

// ProfileInput carries the user-editable profile fields into Update.
type ProfileInput struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Timezone     string `json:"timezone"`
	Language     string `json:"language"`
	ProfileImage string `json:"profileImage"`
}

// ProfileService reads and edits account profiles, and handles full account
// deletion.
type ProfileService struct {
	users       repository.UserRepository
	habits      repository.HabitRepository
	completions repository.CompletionRepository
	moods       repository.MoodRepository
	logger      *slog.Logger
}

func NewProfileService(
	users repository.UserRepository,
	habits repository.HabitRepository,
	completions repository.CompletionRepository,
	moods repository.MoodRepository,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		users:       users,
		habits:      habits,
		completions: completions,
		moods:       moods,
		logger:      logger,
	}
}

// Get returns the profile view of the account.
func (s *ProfileService) Get(ctx context.Context, userID string) (*model.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profileOf(user), nil
}

// Update applies the provided profile fields. Empty strings mean "keep the
// current value", except ProfileImage, which may be cleared.
func (s *ProfileService) Update(ctx context.Context, userID string, in ProfileInput) (*model.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(in.FirstName); v != "" {
		user.FirstName = v
	}
	if v := strings.TrimSpace(in.LastName); v != "" {
		user.LastName = v
	}
	if v := strings.ToLower(strings.TrimSpace(in.Email)); v != "" {
		if !strings.Contains(v, "@") {
			return nil, apperror.ValidationFailed("email", "a valid email address is required")
		}
		user.Email = v
	}
	if v := strings.TrimSpace(in.Timezone); v != "" {
		user.Timezone = v
	}
	if v := strings.TrimSpace(in.Language); v != "" {
		user.Language = v
	}
	user.ProfileImage = in.ProfileImage

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		s.logger.Error("failed to update profile",
			slog.String("userId", userID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("profile updated", slog.String("userId", userID))
	return profileOf(user), nil
}

// DeleteAccount removes the user and everything they own. The order runs
// leaf-first so a failure partway leaves no orphan rows pointing at a
// deleted account.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.moods.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("deleting moods: %w", err)
	}
	if err := s.completions.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("deleting completions: %w", err)
	}
	if err := s.habits.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("deleting habits: %w", err)
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("account deleted", slog.String("userId", userID))
	return nil
}

func profileOf(user *model.User) *model.Profile {
	return &model.Profile{
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        user.Email,
		Timezone:     user.Timezone,
		Language:     user.Language,
		ProfileImage: user.ProfileImage,
		MemberSince:  user.CreatedAt,
	}
}
