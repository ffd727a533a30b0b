package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// keys: n:<20-byte-address>
func nonceKey(addr common.Address) []byte { return append([]byte("n:"), addr.Bytes()...) }

func encodeUint64(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

func decodeUint64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("corrupt value: %d bytes, want 8", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}
