package resettoken

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"eventos/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTokenRepo is an in-memory PasswordResetTokenRepository keyed by token.
type fakeTokenRepo struct {
	rows      map[string]*domain.PasswordResetToken
	rotateErr error
	findErr   error
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{rows: make(map[string]*domain.PasswordResetToken)}
}

func (f *fakeTokenRepo) Rotate(ctx context.Context, t *domain.PasswordResetToken) error {
	if f.rotateErr != nil {
		return f.rotateErr
	}
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
	if f.findErr != nil {
		return nil, f.findErr
	}
	row, ok := f.rows[token]
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	cp := *row
	return &cp, nil
}

func (f *fakeTokenRepo) DeleteByToken(ctx context.Context, token string) error {
	if _, ok := f.rows[token]; !ok {
		return domain.ErrTokenNotFound
	}
	delete(f.rows, token)
	return nil
}

func (f *fakeTokenRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	for tok, row := range f.rows {
		if row.Expires.Before(before) {
			delete(f.rows, tok)
			n++
		}
	}
	return n, nil
}

func (f *fakeTokenRepo) countFor(identifier string) int {
	n := 0
	for _, row := range f.rows {
		if row.Identifier == identifier {
			n++
		}
	}
	return n
}

// clock is a settable time source.
type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func TestManager_Issue(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	repo := newFakeTokenRepo()
	m := NewManager(repo, WithClock(c.Now))

	tok, err := m.Issue(ctx, "  User@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", tok.Identifier)
	assert.Equal(t, c.t.Add(time.Hour), tok.Expires)
	_, err = uuid.Parse(tok.Token)
	require.NoError(t, err, "token should be a UUID")
	assert.Equal(t, 1, repo.countFor("user@example.com"))
}

func TestManager_Issue_EmptyIdentifier(t *testing.T) {
	m := NewManager(newFakeTokenRepo())
	_, err := m.Issue(context.Background(), "   ")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestManager_Issue_RepoError(t *testing.T) {
	repo := newFakeTokenRepo()
	repo.rotateErr = errors.New("db down")
	m := NewManager(repo)
	_, err := m.Issue(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestManager_Issue_GeneratorError(t *testing.T) {
	m := NewManager(newFakeTokenRepo(), WithGenerator(func() (string, error) {
		return "", errors.New("entropy unavailable")
	}))
	_, err := m.Issue(context.Background(), "a@x.com")
	require.Error(t, err)
}

func TestManager_IssueTwiceKeepsSingleLiveToken(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTokenRepo()
	m := NewManager(repo)

	first, err := m.Issue(ctx, "a@x.com")
	require.NoError(t, err)
	second, err := m.Issue(ctx, "a@x.com")
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
	assert.Equal(t, 1, repo.countFor("a@x.com"))

	_, err = m.Validate(ctx, first.Token)
	require.ErrorIs(t, err, domain.ErrTokenNotFound)

	id, err := m.Validate(ctx, second.Token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", id)
}

func TestManager_Validate(t *testing.T) {
	ctx := context.Background()
	issuedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		advance  time.Duration
		token    func(issued string) string
		wantID   string
		wantErr  error
		keepsRow bool
	}{
		{
			name:    "valid within ttl",
			advance: 30 * time.Minute,
			token:   func(s string) string { return s },
			wantID:  "user@example.com",
		},
		{
			name:     "expired after 61 minutes",
			advance:  61 * time.Minute,
			token:    func(s string) string { return s },
			wantErr:  domain.ErrTokenExpired,
			keepsRow: true,
		},
		{
			name:    "upper case form",
			advance: time.Minute,
			token:   strings.ToUpper,
			wantID:  "user@example.com",
		},
		{
			name:    "braced with surrounding space",
			advance: time.Minute,
			token:   func(s string) string { return " {" + s + "}\n" },
			wantID:  "user@example.com",
		},
		{
			name:    "unknown token",
			advance: time.Minute,
			token:   func(string) string { return uuid.NewString() },
			wantErr: domain.ErrTokenNotFound,
		},
		{
			name:    "malformed token",
			advance: time.Minute,
			token:   func(string) string { return "not-a-token" },
			wantErr: domain.ErrMalformedToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &clock{t: issuedAt}
			repo := newFakeTokenRepo()
			m := NewManager(repo, WithClock(c.Now))
			tok, err := m.Issue(ctx, "user@example.com")
			require.NoError(t, err)

			c.t = issuedAt.Add(tt.advance)
			id, err := m.Validate(ctx, tt.token(tok.Token))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, id)
				if tt.keepsRow {
					assert.Equal(t, 1, repo.countFor("user@example.com"), "expired row stays in storage")
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestManager_Validate_RepoError(t *testing.T) {
	repo := newFakeTokenRepo()
	repo.findErr = errors.New("timeout")
	m := NewManager(repo)
	_, err := m.Validate(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrTokenNotFound))
}

func TestManager_ConsumeIsFinal(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTokenRepo()
	m := NewManager(repo)

	tok, err := m.Issue(ctx, "a@x.com")
	require.NoError(t, err)

	require.NoError(t, m.Consume(ctx, tok.Token))
	_, err = m.Validate(ctx, tok.Token)
	require.ErrorIs(t, err, domain.ErrTokenNotFound)

	err = m.Consume(ctx, tok.Token)
	require.ErrorIs(t, err, domain.ErrTokenNotFound)
}

func TestManager_ConsumeCanonicalizesToken(t *testing.T) {
	ctx := context.Background()
	repo := newFakeTokenRepo()
	m := NewManager(repo)

	tok, err := m.Issue(ctx, "a@x.com")
	require.NoError(t, err)

	require.NoError(t, m.Consume(ctx, "urn:uuid:"+strings.ToUpper(tok.Token)))
	assert.Zero(t, repo.countFor("a@x.com"))

	require.ErrorIs(t, m.Consume(ctx, "not-a-token"), domain.ErrMalformedToken)
}

func TestManager_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	c := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	repo := newFakeTokenRepo()
	m := NewManager(repo, WithClock(c.Now))

	_, err := m.Issue(ctx, "old@x.com")
	require.NoError(t, err)
	c.t = c.t.Add(2 * time.Hour)
	_, err = m.Issue(ctx, "new@x.com")
	require.NoError(t, err)

	n, err := m.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 0, repo.countFor("old@x.com"))
	assert.Equal(t, 1, repo.countFor("new@x.com"))
}
