package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventos/internal/domain"
	"eventos/internal/slug"
)

// slugWriteAttempts bounds how often a write is retried after losing a slug race.
const slugWriteAttempts = 2

type eventService struct {
	eventRepo      domain.EventRepository
	slugs          *slug.Resolver
	contextTimeout time.Duration
	now            func() time.Time
}

// NewEventService returns an EventService that allocates slugs through resolver.
func NewEventService(eventRepo domain.EventRepository, resolver *slug.Resolver, timeout time.Duration) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		slugs:          resolver,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, ownerID string, in domain.EventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if ownerID == "" {
		return nil, fmt.Errorf("event owner is required")
	}
	in, err := normalizeEventInput(in)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		eventSlug, err := s.slugs.ForTitle(ctx, in.Title, "")
		if err != nil {
			return nil, fmt.Errorf("resolve slug: %w", err)
		}
		now := s.now()
		event := domain.NewEvent(ownerID, eventSlug, in, now, now)
		err = s.eventRepo.Create(ctx, event)
		if err == nil {
			return event, nil
		}
		if errors.Is(err, domain.ErrSlugTaken) && attempt < slugWriteAttempts {
			continue
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
}

// getOwned loads eventID and checks that ownerID owns it.
func (s *eventService) getOwned(ctx context.Context, eventID, ownerID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID, ownerID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.getOwned(ctx, eventID, ownerID)
}

func (s *eventService) ListEvents(ctx context.Context, ownerID string) ([]*domain.EventWithCount, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.EventWithCount{}
	}
	return events, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, eventID, ownerID string, in domain.EventInput) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.getOwned(ctx, eventID, ownerID)
	if err != nil {
		return nil, err
	}
	in, err = normalizeEventInput(in)
	if err != nil {
		return nil, err
	}
	titleChanged := in.Title != event.Title

	for attempt := 1; ; attempt++ {
		if titleChanged {
			event.Slug, err = s.slugs.ForTitle(ctx, in.Title, event.ID)
			if err != nil {
				return nil, fmt.Errorf("resolve slug: %w", err)
			}
		}
		event.Apply(in)
		event.UpdatedAt = s.now()

		err = s.eventRepo.Update(ctx, event)
		if err == nil {
			return event, nil
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		if errors.Is(err, domain.ErrSlugTaken) && titleChanged && attempt < slugWriteAttempts {
			continue
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.getOwned(ctx, eventID, ownerID); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) GetPublicEvent(ctx context.Context, eventSlug string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetBySlug(ctx, eventSlug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event by slug: %w", err)
	}
	return event, nil
}
