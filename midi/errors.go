package midi

import "errors"

var (
	// ErrNoNotes is returned when there is nothing to export.
	ErrNoNotes = errors.New("no notes to export")

	// ErrInvalidMIDI indicates an unreadable Standard MIDI File.
	ErrInvalidMIDI = errors.New("invalid midi file")
)
