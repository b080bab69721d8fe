package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrSlugTaken is returned by the repository when a write hits the unique slug index.
	ErrSlugTaken = errors.New("slug already in use")
	// ErrSlugExhausted is returned when no free suffixed slug was found within the attempt budget.
	ErrSlugExhausted = errors.New("could not allocate a unique slug")
)

// Event represents an event created by an organizer and published at /events/{slug}.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	Date        time.Time `json:"date"`
	Location    *string   `json:"location"`
	Capacity    *int      `json:"capacity"`
	ImageURL    *string   `json:"image_url"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewEvent returns a new Event built from the input. ID is typically set by the repository on create.
func NewEvent(ownerID, slug string, in EventInput, createdAt, updatedAt time.Time) *Event {
	e := &Event{
		OwnerID:   ownerID,
		Slug:      slug,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	e.Apply(in)
	return e
}

// Apply copies the editable fields from in onto the event. Slug is not touched.
func (e *Event) Apply(in EventInput) {
	e.Title = in.Title
	e.Description = in.Description
	e.Date = in.Date
	e.Location = in.Location
	e.Capacity = in.Capacity
	e.ImageURL = in.ImageURL
}

// EventInput holds the organizer-editable fields of an event.
type EventInput struct {
	Title       string
	Description *string
	Date        time.Time
	Location    *string
	Capacity    *int
	ImageURL    *string
}

// EventWithCount is an event together with its number of RSVPs.
// swagger:model EventWithCount
type EventWithCount struct {
	*Event
	RSVPCount int `json:"rsvp_count"`
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	// SlugExists reports whether an event other than excludeID already uses slug.
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	ListByOwnerID(ctx context.Context, ownerID string) ([]*EventWithCount, error)
	ListRecentByOwnerID(ctx context.Context, ownerID string, limit int) ([]*EventWithCount, error)
	CountByOwnerID(ctx context.Context, ownerID string) (int, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id string) error
}

// EventService defines the organizer-facing event operations and the public lookup.
type EventService interface {
	CreateEvent(ctx context.Context, ownerID string, in EventInput) (*Event, error)
	GetEvent(ctx context.Context, eventID, ownerID string) (*Event, error)
	ListEvents(ctx context.Context, ownerID string) ([]*EventWithCount, error)
	UpdateEvent(ctx context.Context, eventID, ownerID string, in EventInput) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, ownerID string) error
	GetPublicEvent(ctx context.Context, slug string) (*Event, error)
}
