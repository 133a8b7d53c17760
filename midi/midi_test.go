package midi

import (
	"bytes"
	"testing"

	"github.com/poiesic/motif/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteName(t *testing.T) {
	tests := []struct {
		pitch int
		want  string
	}{
		{60, "C4"},
		{61, "C#4"},
		{69, "A4"},
		{0, "C-1"},
		{127, "G9"},
		{59, "B3"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, NoteName(tt.pitch))
		})
	}
}

func TestPitchClassName(t *testing.T) {
	assert.Equal(t, "C", PitchClassName(0))
	assert.Equal(t, "B", PitchClassName(11))
	assert.Equal(t, "C#", PitchClassName(13))
}

func TestWriteTrack_RoundTrip(t *testing.T) {
	track := core.Track{
		Name:    "Lead",
		Program: 0,
		Notes: []core.Note{
			{Time: 0, Pitch: 60, Duration: 480, Velocity: 90},
			{Time: 0, Pitch: 64, Duration: 480, Velocity: 90},
			{Time: 480, Pitch: 67, Duration: 240, Velocity: 70},
			{Time: 720, Pitch: 67, Duration: 240, Velocity: 70},
		},
		Lyrics: []core.Lyric{{Time: 0, Lyric: "hey"}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTrack(&buf, track, WithResolution(480), WithTempo(100)))
	require.NotZero(t, buf.Len())

	notes, err := ReadPattern(&buf)
	require.NoError(t, err)
	assert.Equal(t, track.Notes, notes)
}

func TestWriteTrack_NoNotes(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTrack(&buf, core.Track{})
	assert.ErrorIs(t, err, ErrNoNotes)
}

func TestWriteSong(t *testing.T) {
	title := "Two Voices"
	song := &core.Song{
		Metadata:       core.Metadata{Title: &title},
		Resolution:     96,
		Tempos:         []core.Tempo{{QPM: 90}},
		TimeSignatures: []core.TimeSignature{{Numerator: 3, Denominator: 4}},
		Tracks: []core.Track{
			{Notes: []core.Note{{Time: 96, Pitch: 72, Duration: 96, Velocity: 80}}},
			{Notes: []core.Note{{Time: 0, Pitch: 48, Duration: 192, Velocity: 80}}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSong(&buf, song))

	notes, err := ReadPattern(&buf)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, 48, notes[0].Pitch)
	assert.Equal(t, 192, notes[0].Duration)
	assert.Equal(t, 72, notes[1].Pitch)
	assert.Equal(t, 96, notes[1].Time)
}

func TestReadPattern_Invalid(t *testing.T) {
	_, err := ReadPattern(bytes.NewReader([]byte("not a midi file")))
	assert.ErrorIs(t, err, ErrInvalidMIDI)
}
