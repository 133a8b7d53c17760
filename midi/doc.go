// Package midi converts between corpus tracks and Standard MIDI Files.
//
// WriteSong flattens a song's voices into one track and renders it as an SMF
// type 1 file with a conductor track. ReadPattern turns the notes of a MIDI
// file into corpus notes so that a short recorded phrase can be used as a
// search pattern.
package midi
