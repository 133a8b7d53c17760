package pattern

import (
	"testing"

	"github.com/poiesic/motif/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeTracks(t *testing.T) {
	melody := core.Track{
		Name:    "Melody",
		Program: 73,
		Notes:   []core.Note{{Time: 0, Pitch: 72}, {Time: 240, Pitch: 74}},
		Lyrics:  []core.Lyric{{Time: 240, Lyric: "la"}},
	}
	bass := core.Track{
		Name:    "Bass",
		Program: 32,
		Notes:   []core.Note{{Time: 0, Pitch: 36}, {Time: 120, Pitch: 38}},
		Chords:  []core.Chord{{Time: 0, PitchesStr: []string{"C", "E", "G"}}},
		Lyrics:  []core.Lyric{{Time: 0, Lyric: "ah"}},
	}

	merged := MergeTracks([]core.Track{melody, bass})

	assert.Equal(t, CombinedTrackName, merged.Name)
	assert.Equal(t, 0, merged.Program)
	require.Len(t, merged.Notes, 4)
	assert.Equal(t, []int{72, 36, 38, 74}, []int{
		merged.Notes[0].Pitch, merged.Notes[1].Pitch, merged.Notes[2].Pitch, merged.Notes[3].Pitch,
	})
	assert.Len(t, merged.Chords, 1)
	require.Len(t, merged.Lyrics, 2)
	assert.Equal(t, "ah", merged.Lyrics[0].Lyric)

	t.Run("inputs untouched", func(t *testing.T) {
		assert.Equal(t, 240, melody.Notes[1].Time)
		assert.Equal(t, 36, bass.Notes[0].Pitch)
	})
}

func TestMergeTracks_SingleTrackIsSort(t *testing.T) {
	track := core.Track{Notes: []core.Note{
		{Time: 300, Pitch: 1},
		{Time: 100, Pitch: 2},
		{Time: 300, Pitch: 3},
		{Time: 0, Pitch: 4},
	}}

	merged := MergeTracks([]core.Track{track})

	assert.Equal(t, []core.Note{
		{Time: 0, Pitch: 4},
		{Time: 100, Pitch: 2},
		{Time: 300, Pitch: 1},
		{Time: 300, Pitch: 3},
	}, merged.Notes)
	assert.Equal(t, 300, track.Notes[0].Time)
}

func TestMergeTracks_Empty(t *testing.T) {
	merged := MergeTracks(nil)
	assert.NotNil(t, merged.Notes)
	assert.Empty(t, merged.Notes)
	assert.Empty(t, merged.Chords)
	assert.Empty(t, merged.Lyrics)
}
