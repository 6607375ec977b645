package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/jamstand/internal/apperror"
	"github.com/sakif/jamstand/internal/auth"
	"github.com/sakif/jamstand/internal/model"
	"github.com/sakif/jamstand/internal/repository"
)

// RSVPService handles event signups.
type RSVPService struct {
	rsvps  repository.RSVPRepository
	logger *slog.Logger
}

func NewRSVPService(rsvps repository.RSVPRepository, logger *slog.Logger) *RSVPService {
	return &RSVPService{rsvps: rsvps, logger: logger}
}

// Create signs the caller up for an event. The duplicate check is
// read-then-write; two simultaneous requests can both pass it, which we
// accept rather than serializing every signup through one goroutine.
func (s *RSVPService) Create(ctx context.Context, user *model.User, event string) (*model.RSVP, error) {
	event = strings.TrimSpace(event)
	if event == "" {
		return nil, apperror.ValidationFailed("event", "An event is required")
	}

	existing, err := s.rsvps.FindByUserAndEvent(ctx, user.ID, event)
	if err != nil {
		return nil, apperror.Upstream("checking rsvp", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("Already RSVPed for this event")
	}

	rsvp, err := s.rsvps.Create(ctx, &model.RSVP{
		RSVPID: auth.NewPublicID(),
		UserID: user.ID,
		Event:  event,
	})
	if err != nil {
		return nil, apperror.Upstream("creating rsvp", err)
	}
	s.logger.Info("rsvp created", "rsvp_id", rsvp.RSVPID, "event", event, "user_id", user.ID)
	return rsvp, nil
}

// List returns the caller's RSVPs.
func (s *RSVPService) List(ctx context.Context, user *model.User) ([]model.RSVP, error) {
	rsvps, err := s.rsvps.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, apperror.Upstream("listing rsvps", err)
	}
	return rsvps, nil
}
