package action

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/samber/mo"
)

const (
	vaultAbsent   byte = 0x00
	vaultPresent  byte = 0x01
	expiryPresent byte = 0x00
)

// ActionHash returns the connection id for an order action:
//
//	keccak256(msgpack(action) || nonce || vault framing || 0x00 || expiresAfter)
//
// Integers are 8-byte big endian. The vault framing is 0x00 when absent and
// 0x01 followed by the 20-byte address otherwise.
func ActionHash(a Action, nonce, expiresAfter uint64, vault mo.Option[common.Address]) (common.Hash, error) {
	return ConnectionID(a, nonce, vault, mo.Some(expiresAfter))
}

// ConnectionID is ActionHash with an optional expiry. Without an expiry the
// trailing expiry block is left out entirely, which is how requests were
// framed before expiresAfter existed.
func ConnectionID(a Action, nonce uint64, vault mo.Option[common.Address], expiresAfter mo.Option[uint64]) (common.Hash, error) {
	data, err := Encode(a)
	if err != nil {
		return common.Hash{}, err
	}

	data = binary.BigEndian.AppendUint64(data, nonce)
	if addr, ok := vault.Get(); ok {
		data = append(data, vaultPresent)
		data = append(data, addr.Bytes()...)
	} else {
		data = append(data, vaultAbsent)
	}
	if exp, ok := expiresAfter.Get(); ok {
		data = append(data, expiryPresent)
		data = binary.BigEndian.AppendUint64(data, exp)
	}

	return crypto.Keccak256Hash(data), nil
}
