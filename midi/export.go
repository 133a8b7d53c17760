package midi

import (
	"fmt"
	"io"
	"sort"

	"github.com/poiesic/motif/core"
	"github.com/poiesic/motif/pattern"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	defaultResolution = 480
	defaultTempo      = 120.0
	drumChannel       = 9
)

type exportConfig struct {
	resolution int
	tempo      float64
	numerator  uint8
	denom      uint8
	channel    uint8
}

// ExportOption configures WriteTrack.
type ExportOption func(*exportConfig)

// WithResolution sets ticks per quarter note. Corpus note times are written
// unchanged, so this should match the source song's resolution.
func WithResolution(ticks int) ExportOption {
	return func(c *exportConfig) {
		if ticks > 0 {
			c.resolution = ticks
		}
	}
}

// WithTempo sets the tempo in quarter notes per minute.
func WithTempo(qpm float64) ExportOption {
	return func(c *exportConfig) {
		if qpm > 0 {
			c.tempo = qpm
		}
	}
}

// WithTimeSignature sets the time signature of the conductor track.
func WithTimeSignature(numerator, denominator int) ExportOption {
	return func(c *exportConfig) {
		if numerator > 0 && denominator > 0 {
			c.numerator = uint8(numerator)
			c.denom = uint8(denominator)
		}
	}
}

// WithChannel sets the MIDI channel for notes.
func WithChannel(ch uint8) ExportOption {
	return func(c *exportConfig) {
		c.channel = ch & 0x0f
	}
}

// timedMessage is a message at an absolute tick.
type timedMessage struct {
	tick    uint32
	order   int // lyrics, then note-offs, then note-ons
	message smf.Message
}

// WriteSong merges every track of song and writes the result to w using the
// song's resolution, first tempo and first time signature.
func WriteSong(w io.Writer, song *core.Song) error {
	opts := []ExportOption{WithResolution(song.Resolution)}
	if len(song.Tempos) > 0 {
		opts = append(opts, WithTempo(song.Tempos[0].QPM))
	}
	if len(song.TimeSignatures) > 0 {
		ts := song.TimeSignatures[0]
		opts = append(opts, WithTimeSignature(ts.Numerator, ts.Denominator))
	}
	merged := pattern.MergeTracks(song.Tracks)
	merged.Name = song.Title()
	return WriteTrack(w, merged, opts...)
}

// WriteTrack writes one track as an SMF type 1 file with a conductor track.
func WriteTrack(w io.Writer, track core.Track, opts ...ExportOption) error {
	if len(track.Notes) == 0 {
		return ErrNoNotes
	}
	cfg := exportConfig{
		resolution: defaultResolution,
		tempo:      defaultTempo,
		numerator:  4,
		denom:      4,
	}
	if track.IsDrum {
		cfg.channel = drumChannel
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(cfg.resolution)

	conductor := smf.Track{}
	conductor = append(conductor, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTrackSequenceName("Tempo"))})
	conductor = append(conductor, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTempo(cfg.tempo))})
	conductor = append(conductor, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTimeSig(cfg.numerator, cfg.denom, 24, 8))})
	conductor = append(conductor, smf.Event{Delta: 0, Message: smf.EOT})
	if err := s.Add(conductor); err != nil {
		return fmt.Errorf("adding conductor track: %w", err)
	}

	if err := s.Add(buildNoteTrack(track, cfg)); err != nil {
		return fmt.Errorf("adding note track: %w", err)
	}

	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}

func buildNoteTrack(track core.Track, cfg exportConfig) smf.Track {
	out := smf.Track{}
	name := track.Name
	if name == "" {
		name = pattern.CombinedTrackName
	}
	out = append(out, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTrackSequenceName(name))})
	if cfg.channel != drumChannel {
		program := uint8(track.Program & 0x7f)
		out = append(out, smf.Event{Delta: 0, Message: smf.Message(midi.ProgramChange(cfg.channel, program))})
	}

	var events []timedMessage
	for _, l := range track.Lyrics {
		if l.Lyric == "" {
			continue
		}
		events = append(events, timedMessage{tick: uint32(l.Time), order: 0, message: smf.Message(smf.MetaLyric(l.Lyric))})
	}
	for _, n := range track.Notes {
		key := uint8(n.Pitch & 0x7f)
		vel := uint8(n.Velocity & 0x7f)
		if vel == 0 {
			vel = 64
		}
		start := uint32(n.Time)
		events = append(events,
			timedMessage{tick: start, order: 2, message: smf.Message(midi.NoteOn(cfg.channel, key, vel))},
			timedMessage{tick: start + uint32(n.Duration), order: 1, message: smf.Message(midi.NoteOff(cfg.channel, key))},
		)
	}
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].order < events[j].order
	})

	var last uint32
	for _, e := range events {
		out = append(out, smf.Event{Delta: e.tick - last, Message: e.message})
		last = e.tick
	}
	out = append(out, smf.Event{Delta: 0, Message: smf.EOT})
	return out
}
