package store

import (
	"encoding/binary"

	"github.com/gatherly/gatherly/internal/modules/core"
)

// Keys are composed from fixed-width big-endian integers so that
// byte-lexicographic order equals numeric order.

func EncodeID(id uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, id)
	return buf
}

func DecodeID(raw []byte) (uint64, error) {
	if len(raw) != 8 {
		return 0, core.NewSerializationError("id", nil)
	}

	return binary.BigEndian.Uint64(raw), nil
}

func CompositeKey(first, second uint64) []byte {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf[:8], first)
	binary.BigEndian.PutUint64(buf[8:], second)
	return buf
}

func SplitCompositeKey(key []byte) (uint64, uint64, error) {
	if len(key) != 16 {
		return 0, 0, core.NewSerializationError("composite key", nil)
	}

	return binary.BigEndian.Uint64(key[:8]), binary.BigEndian.Uint64(key[8:]), nil
}
