package core

import (
	"errors"
	"testing"
)

func TestValidateNote(t *testing.T) {
	tests := []struct {
		name    string
		note    Note
		wantErr error
	}{
		{
			name:    "valid note",
			note:    Note{Time: 0, Pitch: 60, Duration: 480, Velocity: 64},
			wantErr: nil,
		},
		{
			name:    "zero duration is allowed",
			note:    Note{Time: 10, Pitch: 0},
			wantErr: nil,
		},
		{
			name:    "pitch too high",
			note:    Note{Pitch: 128},
			wantErr: ErrPitchOutOfRange,
		},
		{
			name:    "negative pitch",
			note:    Note{Pitch: -1},
			wantErr: ErrPitchOutOfRange,
		},
		{
			name:    "negative duration",
			note:    Note{Pitch: 60, Duration: -5},
			wantErr: ErrNegativeDuration,
		},
		{
			name:    "negative time",
			note:    Note{Pitch: 60, Time: -1},
			wantErr: ErrNegativeTime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNote(tt.note)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateNote() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateNote() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidNote) {
				t.Errorf("ValidateNote() error should wrap ErrInvalidNote, got %v", err)
			}
		})
	}
}

func TestValidateSong(t *testing.T) {
	tests := []struct {
		name    string
		song    *Song
		wantErr error
	}{
		{
			name:    "nil song",
			song:    nil,
			wantErr: ErrInvalidSong,
		},
		{
			name:    "song without tracks",
			song:    &Song{},
			wantErr: nil,
		},
		{
			name: "valid song",
			song: &Song{Tracks: []Track{{Notes: []Note{{Pitch: 60}, {Time: 10, Pitch: 62}}}}},
		},
		{
			name:    "bad note in second track",
			song:    &Song{Tracks: []Track{{}, {Notes: []Note{{Pitch: 200}}}}},
			wantErr: ErrPitchOutOfRange,
		},
		{
			name:    "negative chord time",
			song:    &Song{Tracks: []Track{{Chords: []Chord{{Time: -3}}}}},
			wantErr: ErrNegativeTime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSong(tt.song)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateSong() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSong() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSongRecord(t *testing.T) {
	if err := ValidateSongRecord(nil); !errors.Is(err, ErrInvalidSongRecord) {
		t.Errorf("ValidateSongRecord(nil) error = %v", err)
	}
	if err := ValidateSongRecord(&SongRecord{}); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("ValidateSongRecord(empty) error = %v", err)
	}
	if err := ValidateSongRecord(&SongRecord{Path: "./a.json"}); err != nil {
		t.Errorf("ValidateSongRecord(valid) error = %v", err)
	}
}
