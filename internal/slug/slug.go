// Package slug derives URL-safe event identifiers from titles and keeps them unique.
package slug

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"eventos/internal/domain"
)

// Fallback is the base used when a title normalizes to nothing (e.g. "!!!").
const Fallback = "event"

const defaultMaxAttempts = 5

// transliterations covers lowercase letters that carry no combining mark under
// NFD and would otherwise be dropped.
var transliterations = strings.NewReplacer(
	"ß", "ss",
	"æ", "ae",
	"œ", "oe",
	"ø", "o",
	"ł", "l",
	"đ", "d",
	"ð", "d",
	"þ", "th",
	"ı", "i",
	"ħ", "h",
)

// Derive normalizes title into a lowercase, hyphen-separated ASCII slug.
// Diacritics are folded ("Café" -> "cafe") and letters without a decomposition
// are transliterated ("Straße" -> "strasse"). Every other run of non-alphanumerics
// becomes a single hyphen; leading and trailing hyphens are trimmed.
// Letters outside Latin scripts are treated as separators.
// The result may be empty.
func Derive(title string) string {
	lower := transliterations.Replace(strings.ToLower(title))
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), lower)
	if err != nil {
		folded = lower
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingSep := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// Store is the read side of the event store the resolver needs.
type Store interface {
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

// Resolver turns a base slug into one no other event uses.
type Resolver struct {
	store       Store
	now         func() time.Time
	maxAttempts int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock overrides the time source used for collision suffixes.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithMaxAttempts bounds how many suffixed candidates are checked after a collision.
func WithMaxAttempts(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// NewResolver returns a Resolver backed by store.
func NewResolver(store Store, opts ...Option) *Resolver {
	r := &Resolver{store: store, now: time.Now, maxAttempts: defaultMaxAttempts}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns base if no event other than excludeID uses it. On collision it
// returns "{base}-{unix millis}", re-checking the composite and advancing the
// suffix by one millisecond while it is also taken.
func (r *Resolver) Resolve(ctx context.Context, base, excludeID string) (string, error) {
	taken, err := r.store.SlugExists(ctx, base, excludeID)
	if err != nil {
		return "", fmt.Errorf("check slug %q: %w", base, err)
	}
	if !taken {
		return base, nil
	}

	stamp := r.now().UnixMilli()
	for i := 0; i < r.maxAttempts; i++ {
		candidate := fmt.Sprintf("%s-%d", base, stamp+int64(i))
		taken, err := r.store.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", domain.ErrSlugExhausted
}

// ForTitle derives the slug for title and resolves it, substituting Fallback for
// titles with no usable characters.
func (r *Resolver) ForTitle(ctx context.Context, title, excludeID string) (string, error) {
	base := Derive(title)
	if base == "" {
		base = Fallback
	}
	return r.Resolve(ctx, base, excludeID)
}
