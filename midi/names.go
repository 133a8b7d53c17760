package midi

import "strconv"

var pitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteName returns the scientific pitch name of a MIDI pitch; 60 is "C4".
func NoteName(pitch int) string {
	pc := ((pitch % 12) + 12) % 12
	octave := pitch/12 - 1
	if pitch < 0 && pitch%12 != 0 {
		octave--
	}
	return pitchClassNames[pc] + strconv.Itoa(octave)
}

// PitchClassName returns the name of a pitch class, 0 is "C".
func PitchClassName(pc int) string {
	return pitchClassNames[((pc%12)+12)%12]
}
