package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Binary codecs for stored records, built on mus-go primitive serializers.
// Every codec exposes Size, Marshal and Unmarshal with the mus-go
// serializer signatures.

var (
	IDMUS         = idMUS{}
	CheckpointMUS = checkpointMUS{}
	SongRecordMUS = songRecordMUS{}
)

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

// Timestamps are stored as unix microseconds.

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(us).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func marshalStrings(v []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func unmarshalStrings(bs []byte) (v []string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 || length > len(bs)-n {
		return nil, n, ErrTruncatedRecord
	}
	v = make([]string, length)
	for i := range v {
		s, m, err := ord.String.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return nil, n, err
		}
		v[i] = s
	}
	return v, n, nil
}

func sizeStrings(v []string) (size int) {
	size = varint.Int.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return size
}

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 || length*4 > len(bs)-n {
		return nil, n, ErrTruncatedRecord
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]float32, length)
	for i := range v {
		f, m, err := raw.Float32.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return nil, n, err
		}
		v[i] = f
	}
	return v, n, nil
}

func sizeVector(v []float32) int {
	size := varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

type checkpointMUS struct{}

func (checkpointMUS) Marshal(v Checkpoint, bs []byte) (n int) {
	n = ord.String.Marshal(v.ProcessorType, bs)
	n += IDMUS.Marshal(v.LastID, bs[n:])
	n += varint.Int.Marshal(v.Processed, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return n
}

func (checkpointMUS) Unmarshal(bs []byte) (v Checkpoint, n int, err error) {
	var m int
	v.ProcessorType, m, err = ord.String.Unmarshal(bs)
	n += m
	if err != nil {
		return
	}
	v.LastID, m, err = IDMUS.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.Processed, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.UpdatedAt, m, err = unmarshalTime(bs[n:])
	n += m
	return
}

func (checkpointMUS) Size(v Checkpoint) (size int) {
	return ord.String.Size(v.ProcessorType) +
		IDMUS.Size(v.LastID) +
		varint.Int.Size(v.Processed) +
		sizeTime(v.UpdatedAt)
}

type songRecordMUS struct{}

func (songRecordMUS) Marshal(v SongRecord, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Path, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += marshalStrings(v.Creators, bs[n:])
	n += ord.String.Marshal(v.Summary.Key, bs[n:])
	n += ord.String.Marshal(v.Summary.Mode, bs[n:])
	n += raw.Float64.Marshal(v.Summary.Tempo, bs[n:])
	n += raw.Float64.Marshal(v.Summary.AverageDuration, bs[n:])
	n += varint.Int.Marshal(v.Summary.Measures, bs[n:])
	n += marshalStrings(v.Summary.TimeSignatures, bs[n:])
	n += marshalStrings(v.Summary.ChordProgressions, bs[n:])
	n += marshalVector(v.FeatureVector, bs[n:])
	n += marshalVector(v.TitleVector, bs[n:])
	n += marshalTime(v.InsertedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return n
}

func (songRecordMUS) Unmarshal(bs []byte) (v SongRecord, n int, err error) {
	var m int
	v.Id, m, err = IDMUS.Unmarshal(bs)
	n += m
	if err != nil {
		return
	}
	v.Path, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.Title, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.Creators, m, err = unmarshalStrings(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.Summary.Key, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.Summary.Mode, m, err = ord.String.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.Summary.Tempo, m, err = raw.Float64.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.Summary.AverageDuration, m, err = raw.Float64.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.Summary.Measures, m, err = varint.Int.Unmarshal(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.Summary.TimeSignatures, m, err = unmarshalStrings(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.Summary.ChordProgressions, m, err = unmarshalStrings(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.FeatureVector, m, err = unmarshalVector(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.TitleVector, m, err = unmarshalVector(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.InsertedAt, m, err = unmarshalTime(bs[n:])
	n += m
	if err != nil {
		return
	}
	v.UpdatedAt, m, err = unmarshalTime(bs[n:])
	n += m
	return
}

func (songRecordMUS) Size(v SongRecord) (size int) {
	return IDMUS.Size(v.Id) +
		ord.String.Size(v.Path) +
		ord.String.Size(v.Title) +
		sizeStrings(v.Creators) +
		ord.String.Size(v.Summary.Key) +
		ord.String.Size(v.Summary.Mode) +
		raw.Float64.Size(v.Summary.Tempo) +
		raw.Float64.Size(v.Summary.AverageDuration) +
		varint.Int.Size(v.Summary.Measures) +
		sizeStrings(v.Summary.TimeSignatures) +
		sizeStrings(v.Summary.ChordProgressions) +
		sizeVector(v.FeatureVector) +
		sizeVector(v.TitleVector) +
		sizeTime(v.InsertedAt) +
		sizeTime(v.UpdatedAt)
}
