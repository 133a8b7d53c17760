package core

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// UnknownTitle is reported for songs whose metadata carries no title.
const UnknownTitle = "Unknown Title"

// ID is a unique identifier for stored songs.
// It is derived from the song's corpus-relative path.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// String formats the ID as 16 hex digits.
func (id ID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// Note is a single sounding pitch. Optional attributes are nil when the
// source record omits them.
type Note struct {
	Time     int     `json:"time"`
	Pitch    int     `json:"pitch"`
	Duration int     `json:"duration"`
	Velocity int     `json:"velocity"`
	PitchStr *string `json:"pitch_str,omitempty"`
	Measure  *int    `json:"measure,omitempty"`
	IsGrace  *bool   `json:"is_grace,omitempty"`
}

// Event groups every note of a track that starts on the same tick.
type Event struct {
	Time  int    `json:"time"`
	Notes []Note `json:"notes"`
}

// Chord is a chord symbol annotation attached to a track.
type Chord struct {
	Time       int      `json:"time"`
	Pitches    []int    `json:"pitches"`
	PitchesStr []string `json:"pitches_str"`
	Duration   int      `json:"duration"`
	Velocity   int      `json:"velocity"`
	Measure    *int     `json:"measure,omitempty"`
	IsGrace    *bool    `json:"is_grace,omitempty"`
}

// Lyric is a syllable or word sung at a tick.
type Lyric struct {
	Time    int    `json:"time"`
	Lyric   string `json:"lyric"`
	Measure *int   `json:"measure,omitempty"`
}

// Track is one instrumental voice of a song.
type Track struct {
	Program int     `json:"program"`
	IsDrum  bool    `json:"is_drum"`
	Name    string  `json:"name"`
	Notes   []Note  `json:"notes"`
	Chords  []Chord `json:"chords"`
	Lyrics  []Lyric `json:"lyrics"`
}

type KeySignature struct {
	Time    int    `json:"time"`
	Root    int    `json:"root"`
	Mode    string `json:"mode"`
	RootStr string `json:"root_str"`
}

type TimeSignature struct {
	Time        int `json:"time"`
	Numerator   int `json:"numerator"`
	Denominator int `json:"denominator"`
}

type Tempo struct {
	Time int     `json:"time"`
	QPM  float64 `json:"qpm"`
}

type Barline struct {
	Time    int `json:"time"`
	Measure int `json:"measure"`
}

// Metadata describes a song. Both fields may be missing in the corpus.
type Metadata struct {
	Title    *string  `json:"title,omitempty"`
	Creators []string `json:"creators,omitempty"`
}

// Song is a complete score loaded from one corpus file.
type Song struct {
	Metadata       Metadata        `json:"metadata"`
	Resolution     int             `json:"resolution"`
	Tempos         []Tempo         `json:"tempos"`
	KeySignatures  []KeySignature  `json:"key_signatures"`
	TimeSignatures []TimeSignature `json:"time_signatures"`
	Barlines       []Barline       `json:"barlines"`
	Tracks         []Track         `json:"tracks"`
}

// Title returns the song title, or UnknownTitle when the document has none.
// An empty title is kept as is.
func (s *Song) Title() string {
	if s.Metadata.Title == nil {
		return UnknownTitle
	}
	return *s.Metadata.Title
}

// Creators returns the song's creators, never nil.
func (s *Song) Creators() []string {
	if s.Metadata.Creators == nil {
		return []string{}
	}
	return s.Metadata.Creators
}

// Match records a song in which a pattern was found.
type Match struct {
	Path  string `json:"path"`
	Title string `json:"title"`
}

// SkippedFile records a corpus file that could not be scanned.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// MatchResult accumulates the outcome of a corpus scan. Matches and Skipped
// follow the order of the scanned path list.
type MatchResult struct {
	RunID   string
	Matches []Match
	Skipped []SkippedFile
}

// Titles returns the matches as a path to title mapping.
func (r *MatchResult) Titles() map[string]string {
	out := make(map[string]string, len(r.Matches))
	for _, m := range r.Matches {
		out[m.Path] = m.Title
	}
	return out
}

// Paths returns the matched paths in result order.
func (r *MatchResult) Paths() []string {
	out := make([]string, len(r.Matches))
	for i, m := range r.Matches {
		out[i] = m.Path
	}
	return out
}

// FeatureSummary holds the human-readable features of an indexed song.
type FeatureSummary struct {
	Key               string
	Mode              string
	Tempo             float64
	AverageDuration   float64
	Measures          int
	TimeSignatures    []string
	ChordProgressions []string
}

// SongRecord is the persisted index entry for one corpus song.
type SongRecord struct {
	Id            ID
	Path          string
	Title         string
	Creators      []string
	Summary       FeatureSummary
	FeatureVector []float32 // encoded musical features
	TitleVector   []float32 // title embedding, populated by the indexer
	InsertedAt    time.Time
	UpdatedAt     time.Time
}

// Checkpoint tracks the progress of a resumable batch job.
type Checkpoint struct {
	ProcessorType string
	LastID        ID
	Processed     int
	UpdatedAt     time.Time
}

// SimilarityMatch represents a song match from vector similarity search.
type SimilarityMatch struct {
	RecordId ID
	Score    float32
}

// SearchResult represents a search result with the full record and relevance score.
type SearchResult struct {
	Record *SongRecord
	Score  float32
}
