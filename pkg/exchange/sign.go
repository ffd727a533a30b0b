package exchange

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/mo"

	"github.com/uhyunpark/hyperarb/pkg/action"
	"github.com/uhyunpark/hyperarb/pkg/crypto"
)

// SigningEnvelope is everything that goes into the connection id.
type SigningEnvelope struct {
	Action       action.Action
	Nonce        uint64
	ExpiresAfter uint64
	VaultAddress mo.Option[common.Address]
}

// ConnectionID hashes the envelope.
func (e SigningEnvelope) ConnectionID() (common.Hash, error) {
	return action.ActionHash(e.Action, e.Nonce, e.ExpiresAfter, e.VaultAddress)
}

// Sign signs the envelope and assembles the outbound payload.
func (e SigningEnvelope) Sign(privateKeyHex, source string) (*OutboundPayload, error) {
	cid, err := e.ConnectionID()
	if err != nil {
		return nil, err
	}
	sig, err := crypto.SignAgent(cid, source, privateKeyHex)
	if err != nil {
		return nil, err
	}
	return Assemble(e.Action, e.Nonce, e.ExpiresAfter, e.VaultAddress, sig), nil
}

// SignL1Action hashes, signs and assembles an order action in one call. On
// any error no payload is returned.
func SignL1Action(
	a action.Action,
	nonce, expiresAfter uint64,
	vault mo.Option[common.Address],
	privateKeyHex, source string,
) (*OutboundPayload, error) {
	env := SigningEnvelope{
		Action:       a,
		Nonce:        nonce,
		ExpiresAfter: expiresAfter,
		VaultAddress: vault,
	}
	return env.Sign(privateKeyHex, source)
}
