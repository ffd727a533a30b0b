package exchange

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/uhyunpark/hyperarb/pkg/crypto"
)

// VerifySigner reports whether want signed the payload for source.
func VerifySigner(p *OutboundPayload, source string, want common.Address) (bool, error) {
	if p == nil {
		return false, fmt.Errorf("%w: nil payload", ErrMalformedPayload)
	}
	sig, err := p.Signature.Signature()
	if err != nil {
		return false, err
	}
	cid, err := p.envelope().ConnectionID()
	if err != nil {
		return false, err
	}
	digest, err := crypto.SigningHash(cid, source)
	if err != nil {
		return false, err
	}
	return crypto.VerifySignature(want, digest, sig), nil
}

func (p *OutboundPayload) envelope() SigningEnvelope {
	return SigningEnvelope{
		Action:       p.Action,
		Nonce:        p.Nonce,
		ExpiresAfter: p.ExpiresAfter,
		VaultAddress: p.Vault(),
	}
}

// RecoverSigner re-derives the connection id from the payload and returns
// the wallet that signed it.
func RecoverSigner(p *OutboundPayload, source string) (common.Address, error) {
	if p == nil {
		return common.Address{}, fmt.Errorf("%w: nil payload", ErrMalformedPayload)
	}
	sig, err := p.Signature.Signature()
	if err != nil {
		return common.Address{}, err
	}
	cid, err := p.envelope().ConnectionID()
	if err != nil {
		return common.Address{}, err
	}
	return crypto.RecoverAgentSigner(cid, source, sig)
}
