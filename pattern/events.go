package pattern

import (
	"cmp"
	"slices"

	"github.com/poiesic/motif/core"
)

// BuildEvents groups notes that start on the same tick into events sorted by
// time. Notes keep their input order inside an event and duplicates are kept.
// The input slice is not modified.
func BuildEvents(notes []core.Note) []core.Event {
	events := make([]core.Event, 0)
	if len(notes) == 0 {
		return events
	}

	byTime := make(map[int]int)
	for _, note := range notes {
		idx, ok := byTime[note.Time]
		if !ok {
			idx = len(events)
			byTime[note.Time] = idx
			events = append(events, core.Event{Time: note.Time})
		}
		events[idx].Notes = append(events[idx].Notes, note)
	}

	slices.SortFunc(events, func(a, b core.Event) int {
		return cmp.Compare(a.Time, b.Time)
	})
	return events
}

// BuildTrackEvents builds the event sequence of every track in a song.
func BuildTrackEvents(song *core.Song) [][]core.Event {
	out := make([][]core.Event, len(song.Tracks))
	for i, track := range song.Tracks {
		out[i] = BuildEvents(track.Notes)
	}
	return out
}
