package midi

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/poiesic/motif/core"
	"gitlab.com/gomidi/midi/v2/smf"
)

type openNote struct {
	start    int64
	velocity uint8
}

// ReadPattern decodes a Standard MIDI File into notes with absolute tick
// times, ordered by time then pitch. Every track and channel contributes.
// Notes still sounding at the end of a track are closed there.
func ReadPattern(r io.Reader) (notes []core.Note, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	// smf.ReadFrom can panic on malformed input
	defer func() {
		if rec := recover(); rec != nil {
			notes = nil
			err = fmt.Errorf("%w: %v", ErrInvalidMIDI, rec)
		}
	}()

	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMIDI, err)
	}

	for _, track := range s.Tracks {
		var abs int64
		open := make(map[[2]uint8][]openNote)
		for _, ev := range track {
			abs += int64(ev.Delta)
			var ch, key, vel uint8
			switch {
			case ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0:
				k := [2]uint8{ch, key}
				open[k] = append(open[k], openNote{start: abs, velocity: vel})
			case ev.Message.GetNoteOff(&ch, &key, &vel), ev.Message.GetNoteOn(&ch, &key, &vel):
				k := [2]uint8{ch, key}
				started := open[k]
				if len(started) == 0 {
					continue
				}
				on := started[0]
				open[k] = started[1:]
				notes = append(notes, core.Note{
					Time:     int(on.start),
					Pitch:    int(key),
					Duration: int(abs - on.start),
					Velocity: int(on.velocity),
				})
			}
		}
		for k, started := range open {
			for _, on := range started {
				notes = append(notes, core.Note{
					Time:     int(on.start),
					Pitch:    int(k[1]),
					Duration: int(abs - on.start),
					Velocity: int(on.velocity),
				})
			}
		}
	}

	slices.SortStableFunc(notes, func(a, b core.Note) int {
		if c := cmp.Compare(a.Time, b.Time); c != 0 {
			return c
		}
		return cmp.Compare(a.Pitch, b.Pitch)
	})
	return notes, nil
}
