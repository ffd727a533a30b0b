package crypto

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	eth_crypto "github.com/ethereum/go-ethereum/crypto"
)

const (
	testKeyHex  = "0x0123456789012345678901234567890123456789012345678901234567890123"
	testAddress = "0x14791697260E4c9A71f18484C9f997B308e59325"
)

func randomKeyHex(t *testing.T) (string, common.Address) {
	t.Helper()
	key, err := eth_crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return hexutil.Encode(eth_crypto.FromECDSA(key)), eth_crypto.PubkeyToAddress(key.PublicKey)
}

func TestAddressFromKeyHex(t *testing.T) {
	addr, err := AddressFromKeyHex(testKeyHex)
	if err != nil {
		t.Fatalf("failed to derive address: %v", err)
	}
	if addr.Hex() != testAddress {
		t.Errorf("address = %s, want %s", addr.Hex(), testAddress)
	}

	// Prefix is optional
	addr2, err := AddressFromKeyHex(strings.TrimPrefix(testKeyHex, "0x"))
	if err != nil {
		t.Fatalf("failed to derive address without prefix: %v", err)
	}
	if addr2 != addr {
		t.Errorf("address without prefix = %s, want %s", addr2.Hex(), addr.Hex())
	}
}

func TestParsePrivateKeyHexInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"odd length", "0x012"},
		{"short", "0x0123"},
		{"long", testKeyHex + "00"},
		{"non-hex", "0x" + strings.Repeat("zz", 32)},
		{"zero scalar", "0x" + strings.Repeat("00", 32)},
		{"above curve order", "0x" + strings.Repeat("ff", 32)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePrivateKeyHex(tt.key)
			if !errors.Is(err, ErrInvalidKey) {
				t.Errorf("err = %v, want %v", err, ErrInvalidKey)
			}
		})
	}
}

func TestZeroKey(t *testing.T) {
	key, err := ParsePrivateKeyHex(testKeyHex)
	if err != nil {
		t.Fatalf("failed to parse key: %v", err)
	}
	ZeroKey(key)
	if key.D.Sign() != 0 {
		t.Errorf("key scalar = %v, want 0", key.D)
	}

	// Must tolerate nil
	ZeroKey(nil)
}

func TestSignAndRecover(t *testing.T) {
	keyHex, want := randomKeyHex(t)
	hash := eth_crypto.Keccak256Hash([]byte("Hello, hyperarb!"))

	sig, err := SignHashWithKey(hash, keyHex)
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	if sig.V != 27 && sig.V != 28 {
		t.Errorf("v = %d, want 27 or 28", sig.V)
	}

	got, err := RecoverAddress(hash, sig)
	if err != nil {
		t.Fatalf("failed to recover address: %v", err)
	}
	if got != want {
		t.Errorf("recovered address = %s, want %s", got.Hex(), want.Hex())
	}

	if !VerifySignature(want, hash, sig) {
		t.Error("signature verification failed")
	}
	wrongAddr := common.HexToAddress("0x0000000000000000000000000000000000000001")
	if VerifySignature(wrongAddr, hash, sig) {
		t.Error("signature should not verify with wrong address")
	}
}

func TestSignDeterministic(t *testing.T) {
	hash := eth_crypto.Keccak256Hash([]byte("deterministic"))

	sig1, err := SignHashWithKey(hash, testKeyHex)
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	sig2, err := SignHashWithKey(hash, testKeyHex)
	if err != nil {
		t.Fatalf("failed to sign again: %v", err)
	}
	if !sig1.Equal(sig2) {
		t.Errorf("signatures differ: %x vs %x", sig1.Bytes(), sig2.Bytes())
	}
}

func TestSignLowS(t *testing.T) {
	halfOrder := new(big.Int).Rsh(eth_crypto.S256().Params().N, 1)
	for i := 0; i < 16; i++ {
		hash := eth_crypto.Keccak256Hash([]byte{byte(i)})
		sig, err := SignHashWithKey(hash, testKeyHex)
		if err != nil {
			t.Fatalf("failed to sign: %v", err)
		}
		if sig.S.Cmp(halfOrder) > 0 {
			t.Errorf("s = %x is above half order", sig.S)
		}
	}
}

func TestSignatureFromBytes(t *testing.T) {
	hash := eth_crypto.Keccak256Hash([]byte("RSV test"))
	sig, err := SignHashWithKey(hash, testKeyHex)
	if err != nil {
		t.Fatalf("failed to sign: %v", err)
	}

	raw := sig.Bytes()
	if len(raw) != 65 {
		t.Fatalf("signature length = %d, want 65", len(raw))
	}

	// Reconstruct from both V conventions
	parsed, err := SignatureFromBytes(raw)
	if err != nil {
		t.Fatalf("failed to parse signature: %v", err)
	}
	if !parsed.Equal(sig) {
		t.Errorf("parsed = %x, want %x", parsed.Bytes(), raw)
	}

	raw[64] -= 27
	parsed, err = SignatureFromBytes(raw)
	if err != nil {
		t.Fatalf("failed to parse 0/1 signature: %v", err)
	}
	if parsed.V != sig.V {
		t.Errorf("v = %d, want %d", parsed.V, sig.V)
	}
}

func TestInvalidSignature(t *testing.T) {
	addr := common.HexToAddress(testAddress)
	hash := common.BytesToHash([]byte("test"))

	if _, err := SignatureFromBytes([]byte{1, 2, 3}); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("err = %v, want %v", err, ErrInvalidSignature)
	}

	bad := make([]byte, 65)
	bad[64] = 5
	if _, err := SignatureFromBytes(bad); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("err = %v, want %v", err, ErrInvalidSignature)
	}

	if VerifySignature(addr, hash, Signature{}) {
		t.Error("empty signature should not verify")
	}

	zero := Signature{R: new(big.Int), S: new(big.Int), V: 27}
	if _, err := RecoverAddress(hash, zero); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("err = %v, want %v", err, ErrInvalidSignature)
	}

	badV := Signature{R: big.NewInt(1), S: big.NewInt(1), V: 29}
	if _, err := RecoverAddress(hash, badV); !errors.Is(err, ErrInvalidSignature) {
		t.Errorf("err = %v, want %v", err, ErrInvalidSignature)
	}
}
