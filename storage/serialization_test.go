package storage

import (
	"testing"
	"time"

	"github.com/poiesic/motif/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("./a/b/song.json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalSongRecord(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	record := &core.SongRecord{
		Id:            core.IDFromContent("./q/r/ballade.json"),
		Path:          "./q/r/ballade.json",
		Title:         "Ballade No. 1",
		Creators:      []string{"Frédéric Chopin"},
		Summary:       core.FeatureSummary{Key: "G", Mode: "minor", TimeSignatures: []string{"6/4"}, ChordProgressions: []string{}},
		FeatureVector: []float32{0.1, 0.2},
		TitleVector:   []float32{0.3},
		InsertedAt:    now,
		UpdatedAt:     now,
	}

	decoded, err := UnmarshalSongRecord(MarshalSongRecord(record))
	require.NoError(t, err)
	assert.Equal(t, record, decoded)

	_, err = UnmarshalSongRecord([]byte{0xff})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalCheckpoint(t *testing.T) {
	cp := &core.Checkpoint{
		ProcessorType: "ingest",
		LastID:        99,
		Processed:     3,
		UpdatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
	decoded, err := UnmarshalCheckpoint(MarshalCheckpoint(cp))
	require.NoError(t, err)
	assert.Equal(t, cp, decoded)
}
