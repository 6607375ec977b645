// Package service contains the business logic layer: validation,
// permission checks, and orchestration between repositories and outside
// services. Handlers above it speak HTTP; repositories below it speak
// the record store.
package service

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/sakif/jamstand/internal/apperror"
	"github.com/sakif/jamstand/internal/auth"
	"github.com/sakif/jamstand/internal/email"
	"github.com/sakif/jamstand/internal/model"
	"github.com/sakif/jamstand/internal/ratelimit"
	"github.com/sakif/jamstand/internal/repository"
)

const (
	// otpWindowMinutes is how long a code stays valid.
	otpWindowMinutes = 5

	// otpRequestLimit / otpRequestWindow cap code requests per email.
	otpRequestLimit  = 5
	otpRequestWindow = time.Minute

	// otpVerifyLimit / otpVerifyWindow cap guesses per email.
	otpVerifyLimit  = 10
	otpVerifyWindow = 5 * time.Minute

	// otpCooldown is the minimum gap between consecutive code requests.
	otpCooldown = 10 * time.Second

	// findOrCreateAttempts bounds the retry loop around the signup race.
	findOrCreateAttempts = 3
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail lowercases and strips all whitespace. Every email
// comparison in the system goes through this, matching the normalized
// lookup the repository does on the store side.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// AuthService runs the email one-time-code login flow.
type AuthService struct {
	users   repository.UserRepository
	otps    repository.OTPRepository
	sender  email.Sender
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

func NewAuthService(users repository.UserRepository, otps repository.OTPRepository, sender email.Sender, limiter *ratelimit.Limiter, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:   users,
		otps:    otps,
		sender:  sender,
		limiter: limiter,
		logger:  logger,
	}
}

// RequestCode generates a login code for the email, rotates the user's
// session token, and sends the code. Delivery happens in the
// background; the caller gets a success as soon as the code is stored,
// so the response never reveals whether the email service is slow or
// the address unknown.
func (s *AuthService) RequestCode(ctx context.Context, rawEmail string) error {
	addr := NormalizeEmail(rawEmail)
	if !emailPattern.MatchString(addr) {
		return apperror.ValidationFailed("email", "A valid email is required")
	}

	// The cooldown is measured from the last code actually issued, not
	// from the last attempt, so a denied request can't extend it.
	if last := s.limiter.LastEvent("otp-issued:" + addr); !last.IsZero() && time.Since(last) < otpCooldown {
		return apperror.RateLimited("Please wait a few seconds before requesting another code")
	}
	if !s.limiter.Allow("otp-request:"+addr, otpRequestLimit, otpRequestWindow) {
		return apperror.RateLimited("Too many codes requested. Try again in a minute.")
	}

	user, err := s.findOrCreateUser(ctx, addr)
	if err != nil {
		return err
	}

	code := auth.NewOTPCode()
	token := auth.NewSessionToken()
	if err := s.otps.Create(ctx, addr, code, token); err != nil {
		return apperror.Upstream("storing login code", err)
	}
	// Each login request mints a fresh token; verify hands back whatever
	// the user record holds at that point.
	if _, err := s.users.SetToken(ctx, user.ID, token); err != nil {
		return apperror.Upstream("rotating session token", err)
	}
	s.limiter.Record("otp-issued:" + addr)

	// Fire and forget. The request context ends when the handler
	// returns, so delivery gets its own deadline.
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.sender.SendOTP(sendCtx, addr, code); err != nil {
			s.logger.Error("sending login code failed", "email", addr, "error", err)
		}
	}()

	s.logger.Info("login code issued", "email", addr)
	return nil
}

// VerifyCode checks a submitted code and returns the user's current
// session token, which RequestCode rotated when the code was issued. A
// wrong or stale code gets the same generic 400 either way.
func (s *AuthService) VerifyCode(ctx context.Context, rawEmail, code string) (string, error) {
	addr := NormalizeEmail(rawEmail)
	if !emailPattern.MatchString(addr) {
		return "", apperror.ValidationFailed("email", "A valid email is required")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return "", apperror.ValidationFailed("otp", "A code is required")
	}

	if !s.limiter.Allow("otp-verify:"+addr, otpVerifyLimit, otpVerifyWindow) {
		return "", apperror.RateLimited("Too many attempts. Try again later.")
	}

	stored, err := s.otps.LatestValid(ctx, addr, otpWindowMinutes)
	if err != nil {
		return "", apperror.Upstream("reading login code", err)
	}
	if stored == nil || stored.Code != code {
		return "", apperror.ValidationFailed("otp", "Invalid or expired code")
	}

	user, err := s.users.FindByEmail(ctx, addr)
	if err != nil {
		return "", apperror.Upstream("finding user", err)
	}
	if user == nil {
		// The code outlived its user record; the login has to start over.
		return "", apperror.ValidationFailed("email", "User not found")
	}

	token := user.Token
	if token == "" {
		// A dedup pass can leave a winner without the freshly rotated
		// token; fall back to the one minted with this code.
		token = stored.Token
		if token == "" {
			return "", apperror.ValidationFailed("otp", "No active token for user")
		}
		if _, err := s.users.SetToken(ctx, user.ID, token); err != nil {
			return "", apperror.Upstream("saving session token", err)
		}
	}
	s.logger.Info("login verified", "email", addr, "user_id", user.ID)
	return token, nil
}

// ResolveToken implements auth.UserResolver for the middleware.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*model.User, error) {
	user, err := s.users.FindByToken(ctx, token)
	if err != nil {
		return nil, apperror.Upstream("resolving token", err)
	}
	if user == nil {
		return nil, apperror.Unauthorized("Invalid token")
	}
	return user, nil
}

// findOrCreateUser looks the user up and creates the record on a miss.
// The store has no unique constraint on email, so a concurrent signup
// can slip a duplicate in between our read and write; retries plus a
// dedup pass keep the table converging on one record per address.
func (s *AuthService) findOrCreateUser(ctx context.Context, addr string) (*model.User, error) {
	var lastErr error
	for attempt := 1; attempt <= findOrCreateAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt-1) * 200 * time.Millisecond):
			}
		}

		user, err := s.users.FindByEmail(ctx, addr)
		if err != nil {
			lastErr = err
			continue
		}
		if user != nil {
			return user, nil
		}

		created, err := s.users.Create(ctx, addr)
		if err != nil {
			lastErr = err
			continue
		}
		return s.resolveDuplicates(ctx, addr, created)
	}
	return nil, apperror.Upstream("finding or creating user", lastErr)
}

// resolveDuplicates re-reads all records for the address after a create.
// If the race produced more than one, the most complete record wins
// (oldest on ties) and empty losers are removed.
func (s *AuthService) resolveDuplicates(ctx context.Context, addr string, fallback *model.User) (*model.User, error) {
	all, err := s.users.FindAllByEmail(ctx, addr)
	if err != nil || len(all) == 0 {
		// The create succeeded; a failed re-read shouldn't fail login.
		return fallback, nil
	}
	if len(all) == 1 {
		return &all[0], nil
	}

	winner := &all[0]
	for i := 1; i < len(all); i++ {
		if userScore(&all[i]) > userScore(winner) {
			winner = &all[i]
		}
	}
	for i := range all {
		loser := &all[i]
		if loser.ID == winner.ID {
			continue
		}
		if userScore(loser) > 0 {
			s.logger.Warn("duplicate user with data left in place", "email", addr, "user_id", loser.ID)
			continue
		}
		if err := s.users.Delete(ctx, loser.ID); err != nil {
			s.logger.Warn("removing duplicate user failed", "email", addr, "user_id", loser.ID, "error", err)
		}
	}
	s.logger.Info("deduplicated user records", "email", addr, "kept", winner.ID, "total", len(all))
	return winner, nil
}

// userScore counts how much non-derivable state a record carries.
func userScore(u *model.User) int {
	score := 0
	for _, v := range []string{
		u.Token, u.SlackID, u.GithubUsername, u.FirstName, u.LastName,
		u.Birthday, u.ReferralCode,
		u.Address.Street1, u.Address.City, u.Address.Country,
	} {
		if v != "" {
			score++
		}
	}
	if u.HasOnboarded {
		score++
	}
	return score
}
