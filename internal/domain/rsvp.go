package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrAlreadyRegistered = errors.New("already registered for this event")
	ErrEventFull         = errors.New("event is at capacity")
)

// RSVPStatus is the attendee's response to an event.
type RSVPStatus string

const (
	RSVPPending   RSVPStatus = "PENDING"
	RSVPConfirmed RSVPStatus = "CONFIRMED"
	RSVPDeclined  RSVPStatus = "DECLINED"
)

// Valid reports whether s is one of the known statuses.
func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPPending, RSVPConfirmed, RSVPDeclined:
		return true
	}
	return false
}

// RSVP is a response submitted from an event's public page.
// swagger:model RSVP
type RSVP struct {
	ID        string     `json:"id"`
	EventID   string     `json:"event_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Status    RSVPStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewRSVP returns a new RSVP. ID is typically set by the repository on create.
func NewRSVP(eventID, name, email string, status RSVPStatus, createdAt time.Time) *RSVP {
	return &RSVP{
		EventID:   eventID,
		Name:      name,
		Email:     email,
		Status:    status,
		CreatedAt: createdAt,
	}
}

// RSVPActivity is an RSVP joined with the title and slug of its event.
// swagger:model RSVPActivity
type RSVPActivity struct {
	*RSVP
	EventTitle string `json:"event_title"`
	EventSlug  string `json:"event_slug"`
}

// RSVPInput is the body of a public RSVP submission.
type RSVPInput struct {
	Name   string
	Email  string
	Status RSVPStatus
}

// RSVPRepository defines storage for RSVPs.
type RSVPRepository interface {
	Create(ctx context.Context, rsvp *RSVP) error
	GetByEventAndEmail(ctx context.Context, eventID, email string) (*RSVP, error)
	CountByEventAndStatus(ctx context.Context, eventID string, status RSVPStatus) (int, error)
	ListByEventID(ctx context.Context, eventID, search string, params PaginationParams) ([]*RSVP, int, error)
	// ListByOwnerID returns every RSVP across the owner's events, newest first.
	ListByOwnerID(ctx context.Context, ownerID string) ([]*RSVPActivity, error)
	CountByOwnerID(ctx context.Context, ownerID string) (int, error)
}

// RSVPService defines public RSVP submission and the organizer's attendee list.
type RSVPService interface {
	SubmitRSVP(ctx context.Context, eventID string, in RSVPInput) (*RSVP, error)
	ListAttendees(ctx context.Context, eventID, ownerID, search string, params PaginationParams) ([]*RSVP, int, error)
}
