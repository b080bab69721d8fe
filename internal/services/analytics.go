package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"eventos/internal/domain"
)

const (
	recentEventsLimit   = 5
	recentActivityLimit = 5
	growthDays          = 7
)

type analyticsService struct {
	eventRepo      domain.EventRepository
	rsvpRepo       domain.RSVPRepository
	contextTimeout time.Duration
}

// NewAnalyticsService returns an AnalyticsService aggregating over the organizer's events and RSVPs.
func NewAnalyticsService(eventRepo domain.EventRepository, rsvpRepo domain.RSVPRepository, timeout time.Duration) domain.AnalyticsService {
	return &analyticsService{
		eventRepo:      eventRepo,
		rsvpRepo:       rsvpRepo,
		contextTimeout: timeout,
	}
}

func (s *analyticsService) Dashboard(ctx context.Context, ownerID string) (*domain.Dashboard, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	totalEvents, err := s.eventRepo.CountByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	totalRSVPs, err := s.rsvpRepo.CountByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("count rsvps: %w", err)
	}
	recent, err := s.eventRepo.ListRecentByOwnerID(ctx, ownerID, recentEventsLimit)
	if err != nil {
		return nil, fmt.Errorf("list recent events: %w", err)
	}
	if recent == nil {
		recent = []*domain.EventWithCount{}
	}
	return &domain.Dashboard{
		TotalEvents:  totalEvents,
		TotalRSVPs:   totalRSVPs,
		RecentEvents: recent,
	}, nil
}

func (s *analyticsService) Analytics(ctx context.Context, ownerID string) (*domain.Analytics, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	activity, err := s.rsvpRepo.ListByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}

	recent := make([]*domain.RSVPActivity, len(activity))
	copy(recent, activity)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentActivityLimit {
		recent = recent[:recentActivityLimit]
	}

	return &domain.Analytics{
		Overview:       statusBreakdown(activity),
		Growth:         dailyGrowth(activity, growthDays),
		RecentActivity: recent,
	}, nil
}

// statusBreakdown counts RSVPs per status, always listing Confirmed, Pending and Declined.
func statusBreakdown(activity []*domain.RSVPActivity) []domain.StatusCount {
	counts := make(map[domain.RSVPStatus]int, 3)
	for _, a := range activity {
		counts[a.Status]++
	}
	return []domain.StatusCount{
		{Name: "Confirmed", Status: domain.RSVPConfirmed, Value: counts[domain.RSVPConfirmed]},
		{Name: "Pending", Status: domain.RSVPPending, Value: counts[domain.RSVPPending]},
		{Name: "Declined", Status: domain.RSVPDeclined, Value: counts[domain.RSVPDeclined]},
	}
}

// dailyGrowth groups RSVPs by UTC day and returns the last `days` days that had
// any activity, oldest first.
func dailyGrowth(activity []*domain.RSVPActivity, days int) []domain.DailyCount {
	byDay := make(map[string]int)
	for _, a := range activity {
		byDay[a.CreatedAt.UTC().Format(time.DateOnly)]++
	}
	keys := make([]string, 0, len(byDay))
	for k := range byDay {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > days {
		keys = keys[len(keys)-days:]
	}
	out := make([]domain.DailyCount, 0, len(keys))
	for _, k := range keys {
		out = append(out, domain.DailyCount{Date: k, RSVPs: byDay[k]})
	}
	return out
}
