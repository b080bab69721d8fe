package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventos/internal/domain"
)

const eventColumns = `e.id, e.title, e.slug, e.description, e.date, e.location, e.capacity, e.image_url, e.owner_id, e.created_at, e.updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func scanEvent(s rowScanner, extra ...any) (*domain.Event, error) {
	e := &domain.Event{}
	var descNull, locNull, imageNull sql.NullString
	var capNull sql.NullInt64
	dest := []any{
		&e.ID, &e.Title, &e.Slug, &descNull, &e.Date, &locNull, &capNull, &imageNull,
		&e.OwnerID, &e.CreatedAt, &e.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if descNull.Valid {
		e.Description = &descNull.String
	}
	if locNull.Valid {
		e.Location = &locNull.String
	}
	if capNull.Valid {
		c := int(capNull.Int64)
		e.Capacity = &c
	}
	if imageNull.Valid {
		e.ImageURL = &imageNull.String
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, slug, description, date, location, capacity, image_url, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Title, e.Slug, e.Description, e.Date, e.Location, e.Capacity, e.ImageURL,
		e.OwnerID, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSlugTaken
		}
		return err
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.slug = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM events
			WHERE slug = $1 AND ($2 = '' OR id::text <> $2)
		)
	`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *eventRepository) listWithCounts(ctx context.Context, query string, args ...any) ([]*domain.EventWithCount, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.EventWithCount, 0)
	for rows.Next() {
		var count int
		e, err := scanEvent(rows, &count)
		if err != nil {
			return nil, err
		}
		events = append(events, &domain.EventWithCount{Event: e, RSVPCount: count})
	}
	return events, rows.Err()
}

func (r *eventRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.EventWithCount, error) {
	query := `
		SELECT ` + eventColumns + `, COUNT(r.id)
		FROM events e
		LEFT JOIN rsvps r ON r.event_id = e.id
		WHERE e.owner_id = $1
		GROUP BY e.id
		ORDER BY e.date ASC
	`
	return r.listWithCounts(ctx, query, ownerID)
}

func (r *eventRepository) ListRecentByOwnerID(ctx context.Context, ownerID string, limit int) ([]*domain.EventWithCount, error) {
	query := `
		SELECT ` + eventColumns + `, COUNT(r.id)
		FROM events e
		LEFT JOIN rsvps r ON r.event_id = e.id
		WHERE e.owner_id = $1
		GROUP BY e.id
		ORDER BY e.created_at DESC
		LIMIT $2
	`
	return r.listWithCounts(ctx, query, ownerID, limit)
}

func (r *eventRepository) CountByOwnerID(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE owner_id = $1`, ownerID).Scan(&n)
	return n, err
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $1, slug = $2, description = $3, date = $4, location = $5,
			capacity = $6, image_url = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.Title, e.Slug, e.Description, e.Date, e.Location, e.Capacity, e.ImageURL, e.UpdatedAt, e.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSlugTaken
		}
		if isMalformedID(err) {
			return domain.ErrNotFound
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		if isMalformedID(err) {
			return domain.ErrNotFound
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
