package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"eventos/internal/domain"
)

type rsvpRepository struct {
	DB *sql.DB
}

// NewRSVPRepository returns a domain.RSVPRepository implemented with Postgres.
func NewRSVPRepository(db *sql.DB) domain.RSVPRepository {
	return &rsvpRepository{DB: db}
}

func (r *rsvpRepository) Create(ctx context.Context, rsvp *domain.RSVP) error {
	query := `
		INSERT INTO rsvps (event_id, name, email, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, rsvp.EventID, rsvp.Name, rsvp.Email, string(rsvp.Status), rsvp.CreatedAt).
		Scan(&rsvp.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyRegistered
		}
		return err
	}
	return nil
}

func scanRSVP(s rowScanner) (*domain.RSVP, error) {
	rsvp := &domain.RSVP{}
	var status string
	if err := s.Scan(&rsvp.ID, &rsvp.EventID, &rsvp.Name, &rsvp.Email, &status, &rsvp.CreatedAt); err != nil {
		return nil, err
	}
	rsvp.Status = domain.RSVPStatus(status)
	return rsvp, nil
}

func (r *rsvpRepository) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.RSVP, error) {
	query := `
		SELECT id, event_id, name, email, status, created_at
		FROM rsvps
		WHERE event_id = $1 AND email = $2
	`
	rsvp, err := scanRSVP(r.DB.QueryRowContext(ctx, query, eventID, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rsvp, nil
}

func (r *rsvpRepository) CountByEventAndStatus(ctx context.Context, eventID string, status domain.RSVPStatus) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM rsvps WHERE event_id = $1 AND status = $2`, eventID, string(status)).Scan(&n)
	return n, err
}

// likePattern escapes LIKE metacharacters in s and wraps it for a substring match.
func likePattern(s string) string {
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}

func (r *rsvpRepository) ListByEventID(ctx context.Context, eventID, search string, params domain.PaginationParams) ([]*domain.RSVP, int, error) {
	search = strings.TrimSpace(search)
	pattern := likePattern(search)
	filter := `event_id = $1 AND ($2 = '' OR name ILIKE $3 OR email ILIKE $3)`

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM rsvps WHERE `+filter, eventID, search, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, event_id, name, email, status, created_at
		FROM rsvps
		WHERE ` + filter + `
		ORDER BY created_at DESC
		LIMIT NULLIF($4, 0) OFFSET $5
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID, search, pattern, params.Limit(), params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	rsvps := make([]*domain.RSVP, 0)
	for rows.Next() {
		rsvp, err := scanRSVP(rows)
		if err != nil {
			return nil, 0, err
		}
		rsvps = append(rsvps, rsvp)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return rsvps, total, nil
}

func (r *rsvpRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.RSVPActivity, error) {
	query := `
		SELECT r.id, r.event_id, r.name, r.email, r.status, r.created_at, e.title, e.slug
		FROM rsvps r
		JOIN events e ON e.id = r.event_id
		WHERE e.owner_id = $1
		ORDER BY r.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activity := make([]*domain.RSVPActivity, 0)
	for rows.Next() {
		rsvp := &domain.RSVP{}
		a := &domain.RSVPActivity{RSVP: rsvp}
		var status string
		if err := rows.Scan(&rsvp.ID, &rsvp.EventID, &rsvp.Name, &rsvp.Email, &status, &rsvp.CreatedAt, &a.EventTitle, &a.EventSlug); err != nil {
			return nil, err
		}
		rsvp.Status = domain.RSVPStatus(status)
		activity = append(activity, a)
	}
	return activity, rows.Err()
}

func (r *rsvpRepository) CountByOwnerID(ctx context.Context, ownerID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM rsvps r
		JOIN events e ON e.id = r.event_id
		WHERE e.owner_id = $1
	`
	var n int
	err := r.DB.QueryRowContext(ctx, query, ownerID).Scan(&n)
	return n, err
}
