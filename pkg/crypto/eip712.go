package crypto

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Agent source markers. "a" signs for mainnet, "b" for testnet.
const (
	SourceMainnet = "a"
	SourceTestnet = "b"
)

// EIP712Domain represents the domain separator for EIP-712 typed data
type EIP712Domain struct {
	Name              string         // "Exchange"
	Version           string         // "1"
	ChainID           *big.Int       // 1337 for L1 actions
	VerifyingContract common.Address // Zero address: actions are not tied to a contract
}

// ExchangeDomain returns the fixed domain L1 actions are signed under.
func ExchangeDomain() EIP712Domain {
	return EIP712Domain{
		Name:              "Exchange",
		Version:           "1",
		ChainID:           big.NewInt(1337),
		VerifyingContract: common.Address{},
	}
}

var agentTypes = apitypes.Types{
	"EIP712Domain": []apitypes.Type{
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"Agent": []apitypes.Type{
		{Name: "source", Type: "string"},
		{Name: "connectionId", Type: "bytes32"},
	},
}

func (d EIP712Domain) typedData() apitypes.TypedData {
	return apitypes.TypedData{
		Types:       agentTypes,
		PrimaryType: "Agent",
		Domain: apitypes.TypedDataDomain{
			Name:              d.Name,
			Version:           d.Version,
			ChainId:           (*math.HexOrDecimal256)(d.ChainID),
			VerifyingContract: d.VerifyingContract.Hex(),
		},
	}
}

// Separator hashes the domain struct.
func (d EIP712Domain) Separator() (common.Hash, error) {
	td := d.typedData()
	sep, err := td.HashStruct("EIP712Domain", td.Domain.Map())
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to hash domain: %w", err)
	}
	return common.BytesToHash(sep), nil
}

// The exchange domain never changes at runtime; hash it once per process.
var exchangeSeparator = sync.OnceValues(func() (common.Hash, error) {
	return ExchangeDomain().Separator()
})

// DomainSeparator returns the cached separator of ExchangeDomain.
func DomainSeparator() (common.Hash, error) {
	return exchangeSeparator()
}

// AgentStructHash hashes Agent(string source,bytes32 connectionId).
func AgentStructHash(source string, connectionID common.Hash) (common.Hash, error) {
	td := ExchangeDomain().typedData()
	msg := apitypes.TypedDataMessage{
		"source":       source,
		"connectionId": connectionID.Bytes(),
	}
	h, err := td.HashStruct(td.PrimaryType, msg)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to hash agent: %w", err)
	}
	return common.BytesToHash(h), nil
}

// SigningHash returns the digest that actually gets signed:
// keccak256("\x19\x01" || domainSeparator || agentStructHash)
func SigningHash(connectionID common.Hash, source string) (common.Hash, error) {
	domainSeparator, err := DomainSeparator()
	if err != nil {
		return common.Hash{}, err
	}

	structHash, err := AgentStructHash(source, connectionID)
	if err != nil {
		return common.Hash{}, err
	}

	rawData := make([]byte, 0, 2+2*common.HashLength)
	rawData = append(rawData, 0x19, 0x01)
	rawData = append(rawData, domainSeparator.Bytes()...)
	rawData = append(rawData, structHash.Bytes()...)
	return crypto.Keccak256Hash(rawData), nil
}

// SignAgent signs a connection id for the given source with a hex private key.
func SignAgent(connectionID common.Hash, source, privateKeyHex string) (Signature, error) {
	digest, err := SigningHash(connectionID, source)
	if err != nil {
		return Signature{}, err
	}
	return SignHashWithKey(digest, privateKeyHex)
}

// Sign signs a mainnet connection id.
func Sign(connectionID common.Hash, privateKeyHex string) (Signature, error) {
	return SignAgent(connectionID, SourceMainnet, privateKeyHex)
}

// RecoverAgentSigner recovers the wallet that signed connectionID.
func RecoverAgentSigner(connectionID common.Hash, source string, sig Signature) (common.Address, error) {
	digest, err := SigningHash(connectionID, source)
	if err != nil {
		return common.Address{}, err
	}
	return RecoverAddress(digest, sig)
}
