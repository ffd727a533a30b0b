package market

import (
	"fmt"

	"github.com/uhyunpark/hyperarb/pkg/action"
)

// Kind tells perp and spot listings apart.
type Kind uint8

const (
	Perp Kind = iota
	Spot
)

// Max price decimals by market kind; a token's szDecimals are subtracted.
const (
	perpMaxDecimals = 6
	spotMaxDecimals = 8
)

func (k Kind) String() string {
	switch k {
	case Perp:
		return "perp"
	case Spot:
		return "spot"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// MarshalText renders the kind for JSON responses.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts "perp" or "spot".
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "perp":
		*k = Perp
	case "spot":
		*k = Spot
	default:
		return fmt.Errorf("unknown market kind %q", text)
	}
	return nil
}

// Token is one tradable listing.
type Token struct {
	Name       string `json:"name"`   // shared across kinds, e.g. "ETH"
	Symbol     string `json:"symbol"` // exchange coin name, e.g. "UETH" on spot
	Kind       Kind   `json:"kind"`
	Index      uint32 `json:"index"`
	SzDecimals int    `json:"szDecimals"`
	TokenID    string `json:"tokenId,omitempty"` // spot only
}

// Asset is the id orders carry in their "a" field.
func (t Token) Asset() uint32 {
	if t.Kind == Spot {
		return action.SpotAssetBase + t.Index
	}
	return t.Index
}

// PriceDecimals is the maximum number of fractional digits a limit price may
// carry for this token.
func (t Token) PriceDecimals() int {
	limit := perpMaxDecimals
	if t.Kind == Spot {
		limit = spotMaxDecimals
	}
	if d := limit - t.SzDecimals; d > 0 {
		return d
	}
	return 0
}

func (t Token) key() string {
	return t.Kind.String() + ":" + t.Name
}
