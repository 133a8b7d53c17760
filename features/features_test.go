package features

import (
	"testing"

	"github.com/poiesic/motif/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSong() *core.Song {
	title := "Ode to Joy"
	return &core.Song{
		Metadata:      core.Metadata{Title: &title},
		Resolution:    480,
		Tempos:        []core.Tempo{{QPM: 120}},
		KeySignatures: []core.KeySignature{{RootStr: "D", Mode: "major"}},
		TimeSignatures: []core.TimeSignature{
			{Numerator: 4, Denominator: 4},
		},
		Barlines: []core.Barline{{Time: 0, Measure: 1}, {Time: 1920, Measure: 2}},
		Tracks: []core.Track{{
			Notes: []core.Note{
				{Time: 0, Pitch: 64, Duration: 100},
				{Time: 100, Pitch: 64, Duration: 100},
				{Time: 200, Pitch: 65, Duration: 100},
				{Time: 300, Pitch: 67, Duration: 1200},
				{Time: 1500, Pitch: 62, Duration: 0},
			},
			Chords: []core.Chord{
				{PitchesStr: []string{"C", "E", "G"}},
				{PitchesStr: []string{"C#", "E", "G#"}},
			},
		}},
	}
}

func TestExtract(t *testing.T) {
	f := Extract(testSong())

	assert.Equal(t, []int{4, 4, 5, 7, 2}, f.PitchClasses)
	assert.Equal(t, []int{0, 1, 2, 7}, f.Intervals)
	assert.Equal(t, []Contour{ContourSame, ContourUp, ContourUp, ContourDown}, f.Contour)
	assert.Equal(t, []string{"C-E-G", "C#-E-G#"}, f.ChordProgressions)
	assert.Equal(t, "D", f.Key)
	assert.Equal(t, "major", f.Mode)
	assert.Equal(t, 120.0, f.Tempo)
	assert.Equal(t, 2, f.Measures)
	assert.Equal(t, []string{"4/4"}, f.TimeSignatures)
	assert.InDelta(t, 300.0, f.AverageDuration, 1e-9)
}

func TestExtract_Empty(t *testing.T) {
	for _, song := range []*core.Song{nil, {}} {
		f := Extract(song)
		assert.Equal(t, UnknownKey, f.Key)
		assert.Empty(t, f.PitchClasses)
		assert.NotNil(t, f.ChordProgressions)
		assert.Zero(t, f.AverageDuration)

		vec := Encode(f)
		require.Len(t, vec, VectorSize)
	}
}

func TestEncode(t *testing.T) {
	vec, summary := EncodeSong(testSong())
	require.Len(t, vec, VectorSize)
	assert.Equal(t, "D", summary.Key)

	// pitch class histogram
	assert.InDelta(t, 0.4, vec[4], 1e-6)
	assert.InDelta(t, 0.2, vec[7], 1e-6)

	// contour fractions start after two 12-bin histograms
	assert.InDelta(t, 0.5, vec[24], 1e-6)  // up
	assert.InDelta(t, 0.25, vec[25], 1e-6) // down
	assert.InDelta(t, 0.25, vec[26], 1e-6) // same

	// chord roots: C and C# once each
	assert.InDelta(t, 0.5, vec[27], 1e-6)
	assert.InDelta(t, 0.5, vec[28], 1e-6)

	// key one-hot (D) and major flag
	keyStart := 27 + 12 + 8
	assert.Equal(t, float32(1), vec[keyStart+2])
	assert.Equal(t, float32(1), vec[keyStart+12])

	// durations: three in (0,100], one above 1000, one zero not counted
	durStart := keyStart + 13
	assert.InDelta(t, 0.6, vec[durStart], 1e-6)
	assert.InDelta(t, 0.2, vec[durStart+10], 1e-6)
	assert.InDelta(t, 0.3, vec[durStart+11], 1e-6)   // average / 1000
	assert.InDelta(t, 0.4, vec[durStart+12], 1e-6)   // tempo / 300
	assert.InDelta(t, 0.02, vec[durStart+13], 1e-6)  // measures
	assert.Equal(t, float32(1), vec[durStart+14])    // 4/4
	assert.Equal(t, float32(0), vec[durStart+15])    // 3/4

	for _, v := range vec[durStart+20:] {
		assert.Zero(t, v)
	}
}

func TestChordRootAndType(t *testing.T) {
	assert.Equal(t, 0, ChordRoot("C-E-G"))
	assert.Equal(t, 1, ChordRoot("C#-E-G#"))
	assert.Equal(t, -1, ChordRoot("x"))
	assert.Equal(t, 5, ChordType("Cmaj7"))
	assert.Equal(t, 0, ChordType("C-E-G"))
	assert.Equal(t, -1, ChordType(""))
}
