package service

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/sakif/jamstand/internal/apperror"
	"github.com/sakif/jamstand/internal/auth"
	"github.com/sakif/jamstand/internal/model"
	"github.com/sakif/jamstand/internal/repository"
)

var birthdayPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// UserService covers profile reads and the small mutations a user can
// make to their own record.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// Profile returns the user's record, assigning a referral code on first
// read. Lazy assignment means old accounts pick one up the next time
// they open their profile, with no backfill job.
func (s *UserService) Profile(ctx context.Context, user *model.User) (*model.User, error) {
	if user.ReferralCode != "" {
		return user, nil
	}

	code := auth.NewReferralCode(func(candidate string) bool {
		taken, err := s.users.ReferralCodeTaken(ctx, candidate)
		if err != nil {
			// Treat a failed check as taken; the generator moves on to
			// another candidate rather than risking a duplicate.
			s.logger.Warn("referral code check failed", "error", err)
			return true
		}
		return taken
	})

	updated, err := s.users.SetReferralCode(ctx, user.ID, code)
	if err != nil {
		return nil, apperror.Upstream("assigning referral code", err)
	}
	s.logger.Info("referral code assigned", "user_id", user.ID)
	return updated, nil
}

// UpdateProfile patches the caller's own record. The update type only
// carries user-editable fields, so token, email, and referral code can
// never ride along in a request body.
func (s *UserService) UpdateProfile(ctx context.Context, user *model.User, update model.ProfileUpdate) (*model.User, error) {
	if update.Birthday != nil && *update.Birthday != "" && !birthdayPattern.MatchString(*update.Birthday) {
		// Malformed dates are dropped, not rejected, so the rest of the
		// form still saves.
		s.logger.Warn("dropping malformed birthday", "user_id", user.ID)
		update.Birthday = nil
	}
	if update.Empty() {
		return nil, apperror.ValidationFailed("profile", "No editable fields in request")
	}
	updated, err := s.users.UpdateProfile(ctx, user.ID, update)
	if err != nil {
		return nil, apperror.Upstream("updating profile", err)
	}
	return updated, nil
}

// CompleteOnboarding flips the onboarding flag. Idempotent.
func (s *UserService) CompleteOnboarding(ctx context.Context, user *model.User) (*model.User, error) {
	if user.HasOnboarded {
		return user, nil
	}
	updated, err := s.users.SetOnboarded(ctx, user.ID)
	if err != nil {
		return nil, apperror.Upstream("completing onboarding", err)
	}
	s.logger.Info("onboarding completed", "user_id", user.ID)
	return updated, nil
}

// ConnectSlack stores the member id resolved by the OAuth callback.
func (s *UserService) ConnectSlack(ctx context.Context, userID, slackID string) error {
	if _, err := s.users.SetSlackID(ctx, userID, slackID); err != nil {
		return apperror.Upstream("saving slack id", err)
	}
	s.logger.Info("slack account connected", "user_id", userID, "slack_id", slackID)
	return nil
}
