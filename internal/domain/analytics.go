package domain

import "context"

// StatusCount is one slice of the RSVP status breakdown chart.
type StatusCount struct {
	Name   string     `json:"name"`
	Status RSVPStatus `json:"status"`
	Value  int        `json:"value"`
}

// DailyCount is the number of RSVPs received on one UTC day (YYYY-MM-DD).
type DailyCount struct {
	Date  string `json:"date"`
	RSVPs int    `json:"rsvps"`
}

// Analytics is the organizer's analytics page payload.
// swagger:model Analytics
type Analytics struct {
	Overview       []StatusCount   `json:"overview"`
	Growth         []DailyCount    `json:"growth"`
	RecentActivity []*RSVPActivity `json:"recent_activity"`
}

// Dashboard is the organizer's landing page payload.
// swagger:model Dashboard
type Dashboard struct {
	TotalEvents  int               `json:"total_events"`
	TotalRSVPs   int               `json:"total_rsvps"`
	RecentEvents []*EventWithCount `json:"recent_events"`
}

// AnalyticsService aggregates RSVP data for an organizer.
type AnalyticsService interface {
	Dashboard(ctx context.Context, ownerID string) (*Dashboard, error)
	Analytics(ctx context.Context, ownerID string) (*Analytics, error)
}
