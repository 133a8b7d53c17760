package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/motif/core"
	"github.com/poiesic/motif/midi"
	"github.com/poiesic/motif/pattern"
)

// LoadPattern reads a search pattern from a file. MIDI files (.mid, .midi)
// are decoded note by note; anything else is read as JSON.
func LoadPattern(path string) ([]core.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid", ".midi":
		notes, err := midi.ReadPattern(f)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPattern, err)
		}
		return pattern.BuildEvents(notes), nil
	}
	return DecodePattern(f)
}

// DecodePattern decodes a JSON pattern. Three shapes are accepted: a list
// of notes, a list of events ({"time", "notes"}), or an object with a
// "notes" list such as a corpus track.
func DecodePattern(r io.Reader) ([]core.Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedPattern)
	}

	if data[0] == '{' {
		var track core.Track
		if err := json.Unmarshal(data, &track); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPattern, err)
		}
		return pattern.BuildEvents(track.Notes), nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPattern, err)
	}
	if len(raw) > 0 && isEventList(raw[0]) {
		var events []core.Event
		if err := json.Unmarshal(data, &events); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPattern, err)
		}
		var notes []core.Note
		for _, e := range events {
			for _, n := range e.Notes {
				n.Time = e.Time
				notes = append(notes, n)
			}
		}
		return pattern.BuildEvents(notes), nil
	}

	var notes []core.Note
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPattern, err)
	}
	return pattern.BuildEvents(notes), nil
}

func isEventList(first json.RawMessage) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(first, &probe); err != nil {
		return false
	}
	_, ok := probe["notes"]
	return ok
}
