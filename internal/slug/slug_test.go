package slug

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"eventos/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store keyed by slug -> event ID.
type fakeStore struct {
	slugs map[string]string
	calls []string
	err   error
}

func newFakeStore(pairs ...string) *fakeStore {
	f := &fakeStore{slugs: make(map[string]string)}
	for i := 0; i+1 < len(pairs); i += 2 {
		f.slugs[pairs[i]] = pairs[i+1]
	}
	return f
}

func (f *fakeStore) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	f.calls = append(f.calls, slug)
	if f.err != nil {
		return false, f.err
	}
	id, ok := f.slugs[slug]
	return ok && id != excludeID, nil
}

func TestDerive(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Annual Tech Conference 2024!", "annual-tech-conference-2024"},
		{"  Hello   World  ", "hello-world"},
		{"My App 2.0!", "my-app-2-0"},
		{"--Already-Slugged--", "already-slugged"},
		{"Café Crème & Friends", "cafe-creme-friends"},
		{"Rock'n'Roll Night", "rock-n-roll-night"},
		{"UPPER_case\tTabs\nNewlines", "upper-case-tabs-newlines"},
		{"Straße Fest", "strasse-fest"},
		{"STRASSE vs STRAẞE", "strasse-vs-strasse"},
		{"Łódź Meetup", "lodz-meetup"},
		{"Smørrebrød Tasting", "smorrebrod-tasting"},
		{"Æther Œuvre", "aether-oeuvre"},
		{"Þórsmörk Hike", "thorsmork-hike"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Derive(tt.title))
		})
	}
}

func TestDerive_Deterministic(t *testing.T) {
	title := "Summer Meetup @ The Park (2025)"
	first := Derive(title)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Derive(title))
	}
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	fixed := time.UnixMilli(1714564800123)
	clock := func() time.Time { return fixed }

	tests := []struct {
		name      string
		store     *fakeStore
		base      string
		excludeID string
		want      string
		wantErr   error
	}{
		{
			name:  "no collision returns base",
			store: newFakeStore(),
			base:  "annual-tech-conference-2024",
			want:  "annual-tech-conference-2024",
		},
		{
			name:  "collision appends millisecond timestamp",
			store: newFakeStore("my-event", "ev-1"),
			base:  "my-event",
			want:  "my-event-1714564800123",
		},
		{
			name:      "own slug is not a collision",
			store:     newFakeStore("my-event", "ev-1"),
			base:      "my-event",
			excludeID: "ev-1",
			want:      "my-event",
		},
		{
			name:  "taken composite advances the suffix",
			store: newFakeStore("my-event", "ev-1", "my-event-1714564800123", "ev-2"),
			base:  "my-event",
			want:  "my-event-1714564800124",
		},
		{
			name: "exhausted attempts",
			store: newFakeStore(
				"my-event", "ev-1",
				"my-event-1714564800123", "ev-2",
				"my-event-1714564800124", "ev-3",
			),
			base:    "my-event",
			wantErr: domain.ErrSlugExhausted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.store, WithClock(clock), WithMaxAttempts(2))
			got, err := r.Resolve(ctx, tt.base, tt.excludeID)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_CollisionSuffixShape(t *testing.T) {
	store := newFakeStore("my-event", "ev-1")
	r := NewResolver(store)

	got, err := r.Resolve(context.Background(), "my-event", "")
	require.NoError(t, err)
	assert.NotEqual(t, "my-event", got)
	assert.Regexp(t, regexp.MustCompile(`^my-event-\d+$`), got)
}

func TestResolver_StoreError(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection refused")
	r := NewResolver(store)

	_, err := r.Resolve(context.Background(), "my-event", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestResolver_ForTitle(t *testing.T) {
	ctx := context.Background()

	store := newFakeStore()
	r := NewResolver(store)
	got, err := r.ForTitle(ctx, "Annual Tech Conference 2024!", "")
	require.NoError(t, err)
	assert.Equal(t, "annual-tech-conference-2024", got)
	assert.Equal(t, []string{"annual-tech-conference-2024"}, store.calls)

	got, err = r.ForTitle(ctx, "???", "")
	require.NoError(t, err)
	assert.Equal(t, Fallback, got)
}
