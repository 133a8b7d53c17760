package pattern

import (
	"slices"

	"github.com/poiesic/motif/core"
)

// ChordEqual reports whether two events hold the same notes under policy.
// Both note lists are put in canonical order, by pitch and then by every
// attribute the policy compares, and zipped. Sizes must match exactly.
func ChordEqual(a, b []core.Note, policy Policy) bool {
	if len(a) != len(b) {
		return false
	}

	sa := canonical(a, policy)
	sb := canonical(b, policy)
	for i := range sa {
		for _, c := range policy {
			if !c.Equal(sa[i], sb[i]) {
				return false
			}
		}
	}
	return true
}

// canonical returns a sorted copy of notes.
func canonical(notes []core.Note, policy Policy) []core.Note {
	out := slices.Clone(notes)
	slices.SortStableFunc(out, func(x, y core.Note) int {
		if c := compareAttr(x, y, AttrPitch); c != 0 {
			return c
		}
		for _, comp := range policy {
			if c := compareAttr(x, y, comp.Attribute()); c != 0 {
				return c
			}
		}
		return 0
	})
	return out
}

// Matcher searches event sequences for contiguous occurrences of a pattern.
// A Matcher is immutable and safe for concurrent use.
type Matcher struct {
	policy Policy
}

// Option configures a Matcher.
type Option func(*Matcher) error

// WithPolicy sets the note comparison policy.
func WithPolicy(policy Policy) Option {
	return func(m *Matcher) error {
		if len(policy) == 0 {
			return ErrEmptyPolicy
		}
		for _, c := range policy {
			if tc, ok := c.(toleranceComparator); ok && tc.tolerance < 0 {
				return ErrNegativeTolerance
			}
		}
		m.policy = slices.Clone(policy)
		return nil
	}
}

// NewMatcher creates a Matcher using the pitch-only policy unless
// overridden.
func NewMatcher(opts ...Option) (*Matcher, error) {
	m := &Matcher{policy: PitchOnly}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Policy returns a copy of the matcher's comparison policy.
func (m *Matcher) Policy() Policy {
	return slices.Clone(m.policy)
}

// Index returns the first offset in song at which pattern occurs, or -1.
// An empty pattern occurs at offset 0.
func (m *Matcher) Index(song, pattern []core.Event) int {
	n, k := len(song), len(pattern)
	if k > n {
		return -1
	}
	for i := 0; i <= n-k; i++ {
		matched := true
		for j := 0; j < k; j++ {
			if !ChordEqual(song[i+j].Notes, pattern[j].Notes, m.policy) {
				matched = false
				break
			}
		}
		if matched {
			return i
		}
	}
	return -1
}

// Occurs reports whether pattern occurs contiguously in song.
func (m *Matcher) Occurs(song, pattern []core.Event) bool {
	return m.Index(song, pattern) >= 0
}

var defaultMatcher = &Matcher{policy: PitchOnly}

// PatternOccurs reports whether pattern occurs in song comparing pitch only.
func PatternOccurs(song, pattern []core.Event) bool {
	return defaultMatcher.Occurs(song, pattern)
}
