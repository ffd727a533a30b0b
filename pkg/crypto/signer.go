package crypto

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	// ErrInvalidKey is returned for private keys that are not 32 bytes of hex.
	ErrInvalidKey = errors.New("invalid private key")
	// ErrSign wraps failures inside the secp256k1 implementation.
	ErrSign = errors.New("signing failed")
	// ErrInvalidSignature is returned for malformed or unrecoverable signatures.
	ErrInvalidSignature = errors.New("invalid signature")
)

// Signature is a secp256k1 signature with V reported as 27 + recovery id.
type Signature struct {
	R *big.Int
	S *big.Int
	V uint8
}

// Bytes returns the 65-byte [R || S || V] form with V in {27, 28}.
func (s Signature) Bytes() []byte {
	out := make([]byte, crypto.SignatureLength)
	s.R.FillBytes(out[:32])
	s.S.FillBytes(out[32:64])
	out[64] = s.V
	return out
}

// RecoveryID returns V normalized back to 0/1.
func (s Signature) RecoveryID() (byte, error) {
	if s.V != 27 && s.V != 28 {
		return 0, fmt.Errorf("%w: v = %d", ErrInvalidSignature, s.V)
	}
	return s.V - 27, nil
}

// Equal reports whether both signatures have identical components.
func (s Signature) Equal(o Signature) bool {
	if s.R == nil || s.S == nil || o.R == nil || o.S == nil {
		return false
	}
	return s.V == o.V && s.R.Cmp(o.R) == 0 && s.S.Cmp(o.S) == 0
}

// SignatureFromBytes parses a 65-byte signature as returned by crypto.Sign.
// V may be 0/1 or 27/28; it is normalized to 27/28.
func SignatureFromBytes(sig []byte) (Signature, error) {
	if len(sig) != crypto.SignatureLength {
		return Signature{}, fmt.Errorf("%w: length %d", ErrInvalidSignature, len(sig))
	}
	v := sig[64]
	if v < 27 {
		v += 27
	}
	if v != 27 && v != 28 {
		return Signature{}, fmt.Errorf("%w: v = %d", ErrInvalidSignature, sig[64])
	}
	return Signature{
		R: new(big.Int).SetBytes(sig[:32]),
		S: new(big.Int).SetBytes(sig[32:64]),
		V: v,
	}, nil
}

// ParsePrivateKeyHex parses a 32-byte hex private key, with or without a 0x
// prefix. Callers own the returned key and should ZeroKey it when done.
func ParsePrivateKeyHex(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if len(hexKey)%2 != 0 {
		return nil, fmt.Errorf("%w: odd hex length %d", ErrInvalidKey, len(hexKey))
	}
	if len(hexKey) != 2*common.HashLength {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKey, len(hexKey)/2, common.HashLength)
	}
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	defer clear(raw)

	privateKey, err := crypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return privateKey, nil
}

// ZeroKey wipes the scalar of a private key.
func ZeroKey(k *ecdsa.PrivateKey) {
	if k == nil || k.D == nil {
		return
	}
	clear(k.D.Bits())
	k.D.SetUint64(0)
}

// SignHashWithKey parses hexKey, signs the 32-byte hash and wipes the key
// before returning. Signing is RFC 6979 deterministic: identical inputs give
// identical signatures.
func SignHashWithKey(hash common.Hash, hexKey string) (Signature, error) {
	privateKey, err := ParsePrivateKeyHex(hexKey)
	if err != nil {
		return Signature{}, err
	}
	defer ZeroKey(privateKey)

	return signHash(hash, privateKey)
}

func signHash(hash common.Hash, privateKey *ecdsa.PrivateKey) (Signature, error) {
	sig, err := crypto.Sign(hash.Bytes(), privateKey)
	if err != nil {
		return Signature{}, fmt.Errorf("%w: %v", ErrSign, err)
	}
	return SignatureFromBytes(sig)
}

// AddressFromKeyHex derives the wallet address for a hex private key.
func AddressFromKeyHex(hexKey string) (common.Address, error) {
	privateKey, err := ParsePrivateKeyHex(hexKey)
	if err != nil {
		return common.Address{}, err
	}
	defer ZeroKey(privateKey)

	return crypto.PubkeyToAddress(privateKey.PublicKey), nil
}

// RecoverAddress recovers the signer's address from a message hash and signature
func RecoverAddress(hash common.Hash, sig Signature) (common.Address, error) {
	if sig.R == nil || sig.S == nil {
		return common.Address{}, fmt.Errorf("%w: missing r or s", ErrInvalidSignature)
	}
	recID, err := sig.RecoveryID()
	if err != nil {
		return common.Address{}, err
	}

	raw := sig.Bytes()
	raw[64] = recID

	publicKey, err := crypto.SigToPub(hash.Bytes(), raw)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*publicKey), nil
}

// VerifySignature verifies that signature was created by address for given hash
func VerifySignature(address common.Address, hash common.Hash, sig Signature) bool {
	recovered, err := RecoverAddress(hash, sig)
	if err != nil {
		return false
	}
	return recovered == address
}
