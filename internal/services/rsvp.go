package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventos/internal/domain"
)

type rsvpService struct {
	rsvpRepo       domain.RSVPRepository
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
	now            func() time.Time
}

// NewRSVPService returns an RSVPService backed by the given repositories.
func NewRSVPService(rsvpRepo domain.RSVPRepository, eventRepo domain.EventRepository, timeout time.Duration) domain.RSVPService {
	return &rsvpService{
		rsvpRepo:       rsvpRepo,
		eventRepo:      eventRepo,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *rsvpService) SubmitRSVP(ctx context.Context, eventID string, in domain.RSVPInput) (*domain.RSVP, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	name, err := validateName(in.Name)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = domain.RSVPConfirmed
	}
	if !status.Valid() {
		return nil, domain.Invalidf("status must be one of PENDING, CONFIRMED, DECLINED")
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	_, err = s.rsvpRepo.GetByEventAndEmail(ctx, eventID, email)
	switch {
	case err == nil:
		return nil, domain.ErrAlreadyRegistered
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("check existing rsvp: %w", err)
	}

	if event.Capacity != nil && status == domain.RSVPConfirmed {
		confirmed, err := s.rsvpRepo.CountByEventAndStatus(ctx, eventID, domain.RSVPConfirmed)
		if err != nil {
			return nil, fmt.Errorf("count confirmed rsvps: %w", err)
		}
		if confirmed >= *event.Capacity {
			return nil, domain.ErrEventFull
		}
	}

	rsvp := domain.NewRSVP(eventID, name, email, status, s.now())
	if err := s.rsvpRepo.Create(ctx, rsvp); err != nil {
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			return nil, domain.ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("create rsvp: %w", err)
	}
	return rsvp, nil
}

func (s *rsvpService) ListAttendees(ctx context.Context, eventID, ownerID, search string, params domain.PaginationParams) ([]*domain.RSVP, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, domain.ErrNotFound
		}
		return nil, 0, fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != ownerID {
		return nil, 0, domain.ErrForbidden
	}

	rsvps, total, err := s.rsvpRepo.ListByEventID(ctx, eventID, search, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list rsvps: %w", err)
	}
	if rsvps == nil {
		rsvps = []*domain.RSVP{}
	}
	return rsvps, total, nil
}
