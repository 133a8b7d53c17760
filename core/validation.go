// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
)

const (
	MinPitch = 0
	MaxPitch = 127
)

// ValidateSong validates a Song as it crosses the load boundary.
//
// Validation rules:
//   - every note of every track passes ValidateNote
//   - chord and lyric times must not be negative
//
// NOT validated (defaulted by accessors):
//   - Metadata.Title (Title() reports UnknownTitle)
//   - Metadata.Creators (Creators() reports an empty list)
func ValidateSong(song *Song) error {
	if song == nil {
		return fmt.Errorf("%w: song is nil", ErrInvalidSong)
	}

	for ti, track := range song.Tracks {
		for ni, note := range track.Notes {
			if err := ValidateNote(note); err != nil {
				return fmt.Errorf("%w: track %d note %d: %w", ErrInvalidSong, ti, ni, err)
			}
		}
		for ci, chord := range track.Chords {
			if chord.Time < 0 {
				return fmt.Errorf("%w: track %d chord %d: %w", ErrInvalidSong, ti, ci, ErrNegativeTime)
			}
		}
		for li, lyric := range track.Lyrics {
			if lyric.Time < 0 {
				return fmt.Errorf("%w: track %d lyric %d: %w", ErrInvalidSong, ti, li, ErrNegativeTime)
			}
		}
	}

	return nil
}

// ValidateNote validates a single Note.
//
// Validation rules:
//   - Pitch must be a MIDI pitch (0-127)
//   - Duration must not be negative
//   - Time must not be negative
func ValidateNote(note Note) error {
	if note.Pitch < MinPitch || note.Pitch > MaxPitch {
		return fmt.Errorf("%w: %w: %d", ErrInvalidNote, ErrPitchOutOfRange, note.Pitch)
	}
	if note.Duration < 0 {
		return fmt.Errorf("%w: %w: %d", ErrInvalidNote, ErrNegativeDuration, note.Duration)
	}
	if note.Time < 0 {
		return fmt.Errorf("%w: %w: %d", ErrInvalidNote, ErrNegativeTime, note.Time)
	}
	return nil
}

// ValidateSongRecord validates a SongRecord before it is persisted.
//
// Validation rules:
//   - Path must not be empty
//
// NOT validated (populated by processors):
//   - TitleVector (can be empty until the title is embedded)
//   - FeatureVector (can be empty for songs without tracks)
func ValidateSongRecord(record *SongRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidSongRecord)
	}
	if record.Path == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSongRecord, ErrEmptyPath)
	}
	return nil
}
