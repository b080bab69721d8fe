package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"eventos/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID   map[string]*domain.Event
	nextID int
	err    error // if set, Create returns this error
	// stolen lists slugs that a concurrent writer grabs just before our insert.
	stolen map[string]bool
	counts map[string]int
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[string]*domain.Event),
		nextID: 1,
		stolen: make(map[string]bool),
		counts: make(map[string]int),
	}
}

func (f *fakeEventRepo) slugOwner(slug string) (string, bool) {
	for id, e := range f.byID {
		if e.Slug == slug {
			return id, true
		}
	}
	return "", false
}

func (f *fakeEventRepo) steal(slug string) bool {
	if !f.stolen[slug] {
		return false
	}
	delete(f.stolen, slug)
	f.byID["rival"] = &domain.Event{ID: "rival", Slug: slug, OwnerID: "someone-else"}
	return true
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.err != nil {
		return f.err
	}
	if f.steal(e.Slug) {
		return domain.ErrSlugTaken
	}
	if _, taken := f.slugOwner(e.Slug); taken {
		return domain.ErrSlugTaken
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	if id, ok := f.slugOwner(slug); ok {
		return f.byID[id], nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	id, ok := f.slugOwner(slug)
	return ok && id != excludeID, nil
}

func (f *fakeEventRepo) owned(ownerID string) []*domain.EventWithCount {
	var out []*domain.EventWithCount
	for _, e := range f.byID {
		if e.OwnerID == ownerID {
			out = append(out, &domain.EventWithCount{Event: e, RSVPCount: f.counts[e.ID]})
		}
	}
	return out
}

func (f *fakeEventRepo) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.EventWithCount, error) {
	out := f.owned(ownerID)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeEventRepo) ListRecentByOwnerID(ctx context.Context, ownerID string, limit int) ([]*domain.EventWithCount, error) {
	out := f.owned(ownerID)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeEventRepo) CountByOwnerID(ctx context.Context, ownerID string) (int, error) {
	return len(f.owned(ownerID)), nil
}

func (f *fakeEventRepo) Update(ctx context.Context, e *domain.Event) error {
	if _, ok := f.byID[e.ID]; !ok {
		return domain.ErrNotFound
	}
	if f.steal(e.Slug) {
		return domain.ErrSlugTaken
	}
	if id, taken := f.slugOwner(e.Slug); taken && id != e.ID {
		return domain.ErrSlugTaken
	}
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeUserRepo is an in-memory UserRepository keyed by email.
type fakeUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
	nextID  int
	err     error
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{byEmail: make(map[string]*domain.User), nextID: 1}
	for _, u := range users {
		if u.ID == "" {
			u.ID = fmt.Sprintf("user-%d", f.nextID)
			f.nextID++
		}
		f.byEmail[u.Email] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeUserRepo) UpdateName(ctx context.Context, id, name string, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byEmail {
		if u.ID == id {
			u.Name = name
			u.UpdatedAt = updatedAt
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, email, passwordHash string, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = updatedAt
	return nil
}

func (f *fakeUserRepo) hashFor(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byEmail[email]; ok {
		return u.PasswordHash
	}
	return ""
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct {
	err error
}

func (f *fakePasswordHasher) Hash(password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "hash-" + password, nil
}

func (f *fakePasswordHasher) Compare(hash, password string) error {
	if hash != "hash-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	token string
	err   error
}

func (f *fakeTokenIssuer) Issue(userID, email string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.token != "" {
		return f.token, nil
	}
	return "token-" + userID, nil
}

// fakeRSVPRepo is an in-memory RSVPRepository for tests.
type fakeRSVPRepo struct {
	rsvps  []*domain.RSVP
	events *fakeEventRepo
	nextID int
}

func newFakeRSVPRepo(events *fakeEventRepo) *fakeRSVPRepo {
	return &fakeRSVPRepo{events: events, nextID: 1}
}

func (f *fakeRSVPRepo) Create(ctx context.Context, r *domain.RSVP) error {
	for _, existing := range f.rsvps {
		if existing.EventID == r.EventID && existing.Email == r.Email {
			return domain.ErrAlreadyRegistered
		}
	}
	r.ID = fmt.Sprintf("rsvp-%d", f.nextID)
	f.nextID++
	f.rsvps = append(f.rsvps, r)
	return nil
}

func (f *fakeRSVPRepo) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.RSVP, error) {
	for _, r := range f.rsvps {
		if r.EventID == eventID && r.Email == email {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRSVPRepo) CountByEventAndStatus(ctx context.Context, eventID string, status domain.RSVPStatus) (int, error) {
	n := 0
	for _, r := range f.rsvps {
		if r.EventID == eventID && r.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeRSVPRepo) ListByEventID(ctx context.Context, eventID, search string, params domain.PaginationParams) ([]*domain.RSVP, int, error) {
	search = strings.ToLower(search)
	var matched []*domain.RSVP
	for _, r := range f.rsvps {
		if r.EventID != eventID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.Name), search) && !strings.Contains(strings.ToLower(r.Email), search) {
			continue
		}
		matched = append(matched, r)
	}
	total := len(matched)
	start := params.Offset()
	if start > total {
		start = total
	}
	end := total
	if params.Limit() > 0 && start+params.Limit() < total {
		end = start + params.Limit()
	}
	return matched[start:end], total, nil
}

func (f *fakeRSVPRepo) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.RSVPActivity, error) {
	var out []*domain.RSVPActivity
	for _, r := range f.rsvps {
		e, ok := f.events.byID[r.EventID]
		if !ok || e.OwnerID != ownerID {
			continue
		}
		out = append(out, &domain.RSVPActivity{RSVP: r, EventTitle: e.Title, EventSlug: e.Slug})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeRSVPRepo) CountByOwnerID(ctx context.Context, ownerID string) (int, error) {
	out, _ := f.ListByOwnerID(ctx, ownerID)
	return len(out), nil
}

// fakeTokenRepo is an in-memory PasswordResetTokenRepository.
type fakeTokenRepo struct {
	mu   sync.Mutex
	rows map[string]*domain.PasswordResetToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{rows: make(map[string]*domain.PasswordResetToken)}
}

func (f *fakeTokenRepo) Rotate(ctx context.Context, t *domain.PasswordResetToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for tok, row := range f.rows {
		if row.Identifier == t.Identifier {
			delete(f.rows, tok)
		}
	}
	cp := *t
	f.rows[t.Token] = &cp
	return nil
}

func (f *fakeTokenRepo) FindByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if row, ok := f.rows[token]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, domain.ErrTokenNotFound
}

func (f *fakeTokenRepo) DeleteByToken(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[token]; !ok {
		return domain.ErrTokenNotFound
	}
	delete(f.rows, token)
	return nil
}

func (f *fakeTokenRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for tok, row := range f.rows {
		if row.Expires.Before(before) {
			delete(f.rows, tok)
			n++
		}
	}
	return n, nil
}

func (f *fakeTokenRepo) tokenFor(identifier string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for tok, row := range f.rows {
		if row.Identifier == identifier {
			return tok
		}
	}
	return ""
}

func (f *fakeTokenRepo) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// fakeEmailService records password reset sends.
type fakeEmailService struct {
	mu    sync.Mutex
	sent  []string // "email|token"
	err   error
	calls int
}

func (f *fakeEmailService) SendPasswordReset(ctx context.Context, email, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, email+"|"+token)
	return nil
}

func (f *fakeEmailService) snapshot() ([]string, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...), f.calls
}

// fakeMailer records the last Send call.
type fakeMailer struct {
	to, subject, html, text string
	err                     error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html, text string) error {
	if f.err != nil {
		return f.err
	}
	f.to, f.subject, f.html, f.text = to, subject, html, text
	return nil
}

// fakeRenderer echoes the data it was given.
type fakeRenderer struct {
	name string
	data any
	err  error
}

func (f *fakeRenderer) Render(name string, data any) (string, string, string, error) {
	if f.err != nil {
		return "", "", "", f.err
	}
	f.name, f.data = name, data
	return "subject", "<p>html</p>", "text", nil
}
