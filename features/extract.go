package features

import (
	"fmt"
	"strings"

	"github.com/poiesic/motif/core"
)

// Contour classifies the direction between two consecutive notes.
type Contour int

const (
	ContourSame Contour = iota
	ContourUp
	ContourDown
)

// Features holds the raw measurements taken from a song before encoding.
type Features struct {
	PitchClasses      []int     // pitch % 12 for each note of the first track
	Intervals         []int     // (next-prev) mod 12 over PitchClasses
	Contour           []Contour // direction of each step between consecutive pitches
	ChordProgressions []string  // pitches_str of each chord joined with "-"
	Key               string
	Mode              string
	Durations         []int
	AverageDuration   float64
	Tempo             float64
	Measures          int
	TimeSignatures    []string
}

// Extract measures song. A song without tracks yields empty note
// measurements; missing key and tempo information fall back to UnknownKey
// and zero.
func Extract(song *core.Song) Features {
	f := Features{
		PitchClasses:      []int{},
		Intervals:         []int{},
		Contour:           []Contour{},
		ChordProgressions: []string{},
		Key:               UnknownKey,
		Mode:              UnknownKey,
		Durations:         []int{},
		TimeSignatures:    []string{},
	}
	if song == nil {
		return f
	}

	if len(song.Tracks) > 0 {
		track := song.Tracks[0]
		for i, n := range track.Notes {
			f.PitchClasses = append(f.PitchClasses, mod12(n.Pitch))
			f.Durations = append(f.Durations, n.Duration)
			if i == 0 {
				continue
			}
			prev := track.Notes[i-1]
			f.Intervals = append(f.Intervals, mod12(mod12(n.Pitch)-mod12(prev.Pitch)))
			switch {
			case n.Pitch > prev.Pitch:
				f.Contour = append(f.Contour, ContourUp)
			case n.Pitch < prev.Pitch:
				f.Contour = append(f.Contour, ContourDown)
			default:
				f.Contour = append(f.Contour, ContourSame)
			}
		}
		for _, c := range track.Chords {
			f.ChordProgressions = append(f.ChordProgressions, strings.Join(c.PitchesStr, "-"))
		}
	}

	if len(f.Durations) > 0 {
		total := 0
		for _, d := range f.Durations {
			total += d
		}
		f.AverageDuration = float64(total) / float64(len(f.Durations))
	}

	if len(song.KeySignatures) > 0 {
		ks := song.KeySignatures[0]
		if ks.RootStr != "" {
			f.Key = ks.RootStr
		}
		if ks.Mode != "" {
			f.Mode = ks.Mode
		}
	}
	if len(song.Tempos) > 0 {
		f.Tempo = song.Tempos[0].QPM
	}
	f.Measures = len(song.Barlines)
	for _, ts := range song.TimeSignatures {
		f.TimeSignatures = append(f.TimeSignatures, fmt.Sprintf("%d/%d", ts.Numerator, ts.Denominator))
	}
	return f
}

// Summary returns the human-readable part of f stored alongside the vector.
func (f Features) Summary() core.FeatureSummary {
	return core.FeatureSummary{
		Key:               f.Key,
		Mode:              f.Mode,
		Tempo:             f.Tempo,
		AverageDuration:   f.AverageDuration,
		Measures:          f.Measures,
		TimeSignatures:    f.TimeSignatures,
		ChordProgressions: f.ChordProgressions,
	}
}

func mod12(v int) int {
	return ((v % 12) + 12) % 12
}
