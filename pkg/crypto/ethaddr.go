package crypto

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrBadChecksum    = errors.New("address checksum mismatch")
)

// EIP55 computes the checksummed hex address string from 20-byte raw address.
func EIP55(addr20 []byte) string {
	hexaddr := hex.EncodeToString(addr20) // lower
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(hexaddr))
	hash := h.Sum(nil)

	out := make([]byte, 2+len(hexaddr))
	copy(out, "0x")
	for i, c := range []byte(hexaddr) {
		if c >= '0' && c <= '9' {
			out[2+i] = c
			continue
		}
		// i>>1 picks the hash byte; even index reads the high nibble
		nibble := hash[i>>1] & 0x0f
		if i%2 == 0 {
			nibble = hash[i>>1] >> 4
		}
		if nibble >= 8 {
			c -= 'a' - 'A'
		}
		out[2+i] = c
	}
	return string(out)
}

// ValidateAddress checks that s is a 0x-prefixed 20-byte hex address. All-lower
// and all-upper forms carry no checksum and are accepted as-is; a mixed-case
// address must match its EIP-55 form exactly.
func ValidateAddress(s string) error {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return fmt.Errorf("%w: missing 0x prefix", ErrInvalidAddress)
	}
	body := s[2:]
	if len(body) != 40 {
		return fmt.Errorf("%w: got %d hex chars, want 40", ErrInvalidAddress, len(body))
	}
	raw, err := hex.DecodeString(body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return nil
	}
	if want := EIP55(raw); s[2:] != want[2:] {
		return fmt.Errorf("%w: got %s, want %s", ErrBadChecksum, s, want)
	}
	return nil
}
