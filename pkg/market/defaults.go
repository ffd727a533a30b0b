package market

// Mainnet listings the basis strategy trades.
var defaultTokens = []Token{
	{Name: "HYPE", Symbol: "HYPE", Kind: Spot, Index: 107, SzDecimals: 2, TokenID: "0x0d01dc56dcaaca66ad901c959b4011ec"},
	{Name: "HYPE", Symbol: "HYPE", Kind: Perp, Index: 159, SzDecimals: 2},
	{Name: "ETH", Symbol: "UETH", Kind: Spot, Index: 151, SzDecimals: 4, TokenID: "0xe1edd30daaf5caac3fe63569e24748da"},
	{Name: "ETH", Symbol: "ETH", Kind: Perp, Index: 1, SzDecimals: 4},
	{Name: "SOL", Symbol: "USOL", Kind: Spot, Index: 156, SzDecimals: 3, TokenID: "0x49b67c39f5566535de22b29b0e51e685"},
	{Name: "SOL", Symbol: "SOL", Kind: Perp, Index: 5, SzDecimals: 2},
	{Name: "kBONK", Symbol: "UBONK", Kind: Spot, Index: 194, SzDecimals: 0, TokenID: "0xb113d34e351cf195733c98442530c099"},
	{Name: "kBONK", Symbol: "kBONK", Kind: Perp, Index: 85, SzDecimals: 0},
	{Name: "FARTCOIN", Symbol: "UFART", Kind: Spot, Index: 162, SzDecimals: 1, TokenID: "0x7650808198966e4285687d3deb556ccc"},
	{Name: "FARTCOIN", Symbol: "FARTCOIN", Kind: Perp, Index: 165, SzDecimals: 1},
}

// DefaultRegistry returns a registry seeded with the mainnet listings.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, t := range defaultTokens {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
	return r
}
