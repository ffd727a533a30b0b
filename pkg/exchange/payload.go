package exchange

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/samber/mo"

	"github.com/uhyunpark/hyperarb/pkg/action"
	"github.com/uhyunpark/hyperarb/pkg/crypto"
)

var ErrMalformedPayload = errors.New("malformed payload")

// SignatureWire is the JSON form of a signature: r and s as 0x-prefixed hex
// quantities, v as 27 or 28.
type SignatureWire struct {
	R string `json:"r"`
	S string `json:"s"`
	V uint8  `json:"v"`
}

// NewSignatureWire converts a signature to its JSON form.
func NewSignatureWire(sig crypto.Signature) SignatureWire {
	return SignatureWire{
		R: hexutil.EncodeBig(sig.R),
		S: hexutil.EncodeBig(sig.S),
		V: sig.V,
	}
}

// Signature parses the wire form back into a signature.
func (w SignatureWire) Signature() (crypto.Signature, error) {
	r, err := hexutil.DecodeBig(w.R)
	if err != nil {
		return crypto.Signature{}, fmt.Errorf("%w: r: %v", ErrMalformedPayload, err)
	}
	s, err := hexutil.DecodeBig(w.S)
	if err != nil {
		return crypto.Signature{}, fmt.Errorf("%w: s: %v", ErrMalformedPayload, err)
	}
	return crypto.Signature{R: r, S: s, V: w.V}, nil
}

// OutboundPayload is the body POSTed to /exchange.
type OutboundPayload struct {
	Action       action.Action   `json:"action"`
	Nonce        uint64          `json:"nonce"`
	Signature    SignatureWire   `json:"signature"`
	VaultAddress *common.Address `json:"vaultAddress,omitempty"`
	ExpiresAfter uint64          `json:"expiresAfter"`
}

// Vault returns the payload's vault address as an option.
func (p *OutboundPayload) Vault() mo.Option[common.Address] {
	if p.VaultAddress == nil {
		return mo.None[common.Address]()
	}
	return mo.Some(*p.VaultAddress)
}

// Assemble packages a signed action. It performs no validation: the inputs
// are expected to be the same ones the signature was produced from.
func Assemble(a action.Action, nonce, expiresAfter uint64, vault mo.Option[common.Address], sig crypto.Signature) *OutboundPayload {
	p := &OutboundPayload{
		Action:       a,
		Nonce:        nonce,
		Signature:    NewSignatureWire(sig),
		ExpiresAfter: expiresAfter,
	}
	if addr, ok := vault.Get(); ok {
		p.VaultAddress = &addr
	}
	return p
}
