package badger

import (
	"encoding/binary"
)

// Key layout:
//
//	vspace:manifest            -> current generation (varint)
//	vspgen:<gen>:h             -> space header of a generation
//	vspgen:<gen>:r<index>      -> sparse row of course <index>
//
// gen and index are BigEndian so rows iterate in corpus order.
const (
	manifestKey      = "vspace:manifest"
	generationPrefix = "vspgen:"
	headerSuffix     = ":h"
	rowSuffix        = ":r"
)

// makeGenerationPrefix generates the prefix shared by every key of a generation.
// Format: prefix:gen
func makeGenerationPrefix(gen uint64) []byte {
	buf := make([]byte, len(generationPrefix)+8)
	offset := copy(buf, generationPrefix)
	binary.BigEndian.PutUint64(buf[offset:], gen)
	return buf
}

// makeHeaderKey generates the key of a generation's space header.
func makeHeaderKey(gen uint64) []byte {
	return append(makeGenerationPrefix(gen), headerSuffix...)
}

// makeRowPrefix generates the prefix of a generation's row keys.
func makeRowPrefix(gen uint64) []byte {
	return append(makeGenerationPrefix(gen), rowSuffix...)
}

// makeRowKey generates the key of one course row.
// Format: prefix:gen:r<index>
func makeRowKey(gen uint64, index int) []byte {
	prefix := makeRowPrefix(gen)
	buf := make([]byte, len(prefix)+4)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint32(buf[offset:], uint32(index))
	return buf
}

// rowIndex extracts the course index from a row key.
func rowIndex(key []byte, gen uint64) (int, bool) {
	prefix := makeRowPrefix(gen)
	if len(key) != len(prefix)+4 {
		return 0, false
	}
	return int(binary.BigEndian.Uint32(key[len(prefix):])), true
}
