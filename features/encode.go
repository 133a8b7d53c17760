package features

import (
	"slices"
	"strings"

	"github.com/poiesic/motif/core"
)

// Encode turns f into a vector of VectorSize components.
func Encode(f Features) []float32 {
	vec := make([]float32, 0, VectorSize)

	// melodic
	vec = append(vec, histogram(f.PitchClasses, 12)...)
	vec = append(vec, histogram(f.Intervals, 12)...)
	vec = append(vec, contourFractions(f.Contour)...)

	// harmonic
	roots := make([]int, 0, len(f.ChordProgressions))
	types := make([]int, 0, len(f.ChordProgressions))
	for _, chord := range f.ChordProgressions {
		if r := ChordRoot(chord); r >= 0 {
			roots = append(roots, r)
		}
		if t := ChordType(chord); t >= 0 {
			types = append(types, t)
		}
	}
	vec = append(vec, histogram(roots, len(ChordRoots))...)
	vec = append(vec, histogram(types, len(ChordTypes))...)

	// key and mode
	for _, root := range ChordRoots {
		vec = append(vec, flag(f.Key == root))
	}
	vec = append(vec, flag(f.Mode == "major"))

	// rhythm
	vec = append(vec, durationHistogram(f.Durations)...)
	vec = append(vec, float32(f.AverageDuration/durScale), float32(f.Tempo/tempoScale))

	// structure
	vec = append(vec, float32(min(f.Measures, maxMeasures))/maxMeasures)
	for _, ts := range TimeSignatures {
		vec = append(vec, flag(slices.Contains(f.TimeSignatures, ts)))
	}

	if len(vec) > VectorSize {
		return vec[:VectorSize]
	}
	return append(vec, make([]float32, VectorSize-len(vec))...)
}

// EncodeSong extracts and encodes song in one step.
func EncodeSong(song *core.Song) ([]float32, core.FeatureSummary) {
	f := Extract(song)
	return Encode(f), f.Summary()
}

// ChordRoot returns the index in ChordRoots of the longest root that
// prefixes chord, or -1.
func ChordRoot(chord string) int {
	best, bestLen := -1, 0
	for i, root := range ChordRoots {
		if strings.HasPrefix(chord, root) && len(root) > bestLen {
			best, bestLen = i, len(root)
		}
	}
	return best
}

// ChordType returns the index in ChordTypes of the longest type that
// suffixes chord. Every non-empty chord has at least the empty type.
func ChordType(chord string) int {
	if chord == "" {
		return -1
	}
	best, bestLen := -1, -1
	for i, t := range ChordTypes {
		if strings.HasSuffix(chord, t) && len(t) > bestLen {
			best, bestLen = i, len(t)
		}
	}
	return best
}

// histogram counts values in [0, bins) and normalizes by the number counted.
func histogram(values []int, bins int) []float32 {
	out := make([]float32, bins)
	total := 0
	for _, v := range values {
		if v >= 0 && v < bins {
			out[v]++
			total++
		}
	}
	if total == 0 {
		return out
	}
	for i := range out {
		out[i] /= float32(total)
	}
	return out
}

func contourFractions(contour []Contour) []float32 {
	out := make([]float32, 3)
	if len(contour) == 0 {
		return out
	}
	for _, c := range contour {
		switch c {
		case ContourUp:
			out[0]++
		case ContourDown:
			out[1]++
		default:
			out[2]++
		}
	}
	for i := range out {
		out[i] /= float32(len(contour))
	}
	return out
}

// durationHistogram bins durations by DurationEdges and normalizes by the
// total number of durations, including the uncounted zeros.
func durationHistogram(durations []int) []float32 {
	out := make([]float32, len(DurationEdges))
	if len(durations) == 0 {
		return out
	}
	for _, d := range durations {
		bin, ok := durationBin(d)
		if ok {
			out[bin]++
		}
	}
	for i := range out {
		out[i] /= float32(len(durations))
	}
	return out
}

func durationBin(d int) (int, bool) {
	if d <= DurationEdges[0] {
		return 0, false
	}
	for i := 1; i < len(DurationEdges); i++ {
		if d <= DurationEdges[i] {
			return i - 1, true
		}
	}
	return len(DurationEdges) - 1, true
}

func flag(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
