package crypto

import (
	"errors"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestEIP55(t *testing.T) {
	addr := common.HexToAddress(testAddress)
	if got := EIP55(addr.Bytes()); got != testAddress {
		t.Errorf("EIP55 = %s, want %s", got, testAddress)
	}
	// go-ethereum agrees
	if got := EIP55(addr.Bytes()); got != addr.Hex() {
		t.Errorf("EIP55 = %s, want %s", got, addr.Hex())
	}
}

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr error
	}{
		{"checksummed", testAddress, nil},
		{"lowercase", strings.ToLower(testAddress), nil},
		{"uppercase", "0x" + strings.ToUpper(testAddress[2:]), nil},
		{"bad checksum", "0x14791697260e4c9A71f18484C9f997B308e59325", ErrBadChecksum},
		{"no prefix", testAddress[2:], ErrInvalidAddress},
		{"short", testAddress[:40], ErrInvalidAddress},
		{"non-hex", "0x" + strings.Repeat("g", 40), ErrInvalidAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.addr)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
