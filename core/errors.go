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

import "errors"

// Domain validation errors
var (
	// ErrInvalidSong indicates a Song failed validation.
	ErrInvalidSong = errors.New("invalid song")

	// ErrInvalidNote indicates a Note failed validation.
	ErrInvalidNote = errors.New("invalid note")

	// ErrInvalidSongRecord indicates a SongRecord failed validation.
	ErrInvalidSongRecord = errors.New("invalid song record")

	// ErrPitchOutOfRange indicates a pitch outside the MIDI range 0-127.
	ErrPitchOutOfRange = errors.New("pitch out of range")

	// ErrNegativeDuration indicates a note with a negative duration.
	ErrNegativeDuration = errors.New("duration cannot be negative")

	// ErrNegativeTime indicates an event placed before tick zero.
	ErrNegativeTime = errors.New("time cannot be negative")

	// ErrEmptyPath indicates the Path field is empty.
	ErrEmptyPath = errors.New("path cannot be empty")

	// ErrTruncatedRecord indicates a stored record ended before all fields were read.
	ErrTruncatedRecord = errors.New("truncated record")
)
