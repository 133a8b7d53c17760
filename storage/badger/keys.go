package badger

import (
	"encoding/binary"
	"strings"

	"github.com/poiesic/motif/core"
)

// Key prefixes for different data types
const (
	songRecordPrefix = "songrec:"
	songTitlePrefix  = "songttl:"
	checkpointPrefix = "chkpt:"
)

// makeSongKey generates a key for a song record by ID.
// Format: prefix + 8 byte big endian ID, so iteration follows ID order.
func makeSongKey(id core.ID) []byte {
	buf := make([]byte, len(songRecordPrefix)+8)
	offset := copy(buf, songRecordPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// songIDFromKey extracts the ID from a song record key.
func songIDFromKey(key []byte) (core.ID, bool) {
	if len(key) != len(songRecordPrefix)+8 {
		return 0, false
	}
	return core.ID(binary.BigEndian.Uint64(key[len(songRecordPrefix):])), true
}

// makePartialTitleKey generates the prefix shared by every index entry of
// a title. Titles are folded to lower case.
// Format: prefix:title\x00
func makePartialTitleKey(title string) []byte {
	folded := strings.ToLower(strings.TrimSpace(title))
	buf := make([]byte, 0, len(songTitlePrefix)+len(folded)+1)
	buf = append(buf, songTitlePrefix...)
	buf = append(buf, folded...)
	return append(buf, 0)
}

// makeTitleKey generates a composite key for the title index.
// Format: prefix:title\x00id
func makeTitleKey(title string, id core.ID) []byte {
	partial := makePartialTitleKey(title)
	buf := make([]byte, len(partial)+8)
	offset := copy(buf, partial)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeCheckpointKey generates a key for processor checkpoints.
func makeCheckpointKey(processorType string) []byte {
	return []byte(checkpointPrefix + processorType)
}
