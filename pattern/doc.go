// Package pattern finds melodic fragments inside songs.
//
// A track's flat note list is first grouped into Events, one per distinct
// start tick, ordered by time. A pattern is a short event sequence; it
// occurs in a song when some contiguous window of the song's events equals
// the pattern event by event.
//
// Two events are equal when they hold the same number of notes and the notes
// agree, pairwise, under a Policy. A Policy is an ordered list of per-attribute
// Comparators, so exact matching and tolerance-banded matching share the
// same sliding-window search:
//
//	m, err := pattern.NewMatcher(pattern.WithPolicy(pattern.Policy{
//	    pattern.Exact(pattern.AttrPitch),
//	    pattern.Within(pattern.AttrDuration, 10),
//	}))
//	found := m.Occurs(pattern.BuildEvents(track.Notes), query)
//
// PatternOccurs uses the default pitch-only policy.
//
// MergeTracks flattens the voices of a song into one chronologically
// sorted track for export and analysis.
package pattern
