package pattern

import (
	"cmp"
	"slices"

	"github.com/poiesic/motif/core"
)

// CombinedTrackName names the track produced by MergeTracks.
const CombinedTrackName = "Combined Track"

// MergeTracks concatenates the notes, chords and lyrics of tracks and sorts
// each list by time. Ties keep concatenation order, so lower-indexed tracks
// come first. The inputs are not modified.
func MergeTracks(tracks []core.Track) core.Track {
	merged := core.Track{
		Name:   CombinedTrackName,
		Notes:  make([]core.Note, 0),
		Chords: make([]core.Chord, 0),
		Lyrics: make([]core.Lyric, 0),
	}
	for _, t := range tracks {
		merged.Notes = append(merged.Notes, t.Notes...)
		merged.Chords = append(merged.Chords, t.Chords...)
		merged.Lyrics = append(merged.Lyrics, t.Lyrics...)
	}

	slices.SortStableFunc(merged.Notes, func(a, b core.Note) int {
		return cmp.Compare(a.Time, b.Time)
	})
	slices.SortStableFunc(merged.Chords, func(a, b core.Chord) int {
		return cmp.Compare(a.Time, b.Time)
	})
	slices.SortStableFunc(merged.Lyrics, func(a, b core.Lyric) int {
		return cmp.Compare(a.Time, b.Time)
	})
	return merged
}
