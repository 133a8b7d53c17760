package features

// VectorSize is the length of every encoded feature vector.
const VectorSize = 128

var (
	ChordRoots     = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	ChordTypes     = []string{"", "m", "dim", "aug", "7", "maj7", "min7", "dim7"}
	TimeSignatures = []string{"4/4", "3/4", "6/8", "9/8", "2/4", "12/8"}
)

// DurationEdges are the upper bounds, in ticks, of the duration bins. A
// duration d falls in bin i when DurationEdges[i-1] < d <= DurationEdges[i];
// the last bin collects everything above the final edge. Durations of zero
// are not counted.
var DurationEdges = []int{0, 100, 200, 300, 400, 500, 600, 700, 800, 900, 1000}

const (
	maxMeasures = 100
	tempoScale  = 300.0
	durScale    = 1000.0

	// UnknownKey is reported when the song has no key signature.
	UnknownKey = "Unknown"
)
