package strategy

import (
	"github.com/shopspring/decimal"

	"github.com/uhyunpark/hyperarb/pkg/client"
	"github.com/uhyunpark/hyperarb/pkg/exchange"
	"github.com/uhyunpark/hyperarb/pkg/market"
)

// QuoteCoin is the spot coin margin is counted in.
const QuoteCoin = "USDC"

type IntentKind string

const (
	// Close unwinds a basis position whose perp trades below spot.
	Close IntentKind = "close"
	// Open shorts the perp and buys spot while perp trades above spot.
	Open IntentKind = "open"
)

// Intent is a two-legged trade on one pair. Legs run in order.
type Intent struct {
	Kind IntentKind
	Pair market.Pair
	Legs []exchange.OrderParams
}

// Marks holds mark prices keyed by pair name.
type Marks struct {
	Perp map[string]decimal.Decimal
	Spot map[string]decimal.Decimal
}

func NewMarks() Marks {
	return Marks{
		Perp: make(map[string]decimal.Decimal),
		Spot: make(map[string]decimal.Decimal),
	}
}

func (m Marks) get(name string) (perp, spot decimal.Decimal, ok bool) {
	perp, okPerp := m.Perp[name]
	spot, okSpot := m.Spot[name]
	return perp, spot, okPerp && okSpot
}

// Snapshot is the account and market state one cycle decides on.
type Snapshot struct {
	Spot  *client.SpotState
	Perp  *client.PerpState
	Marks Marks
}

// Available is the margin both legs can fund: the smaller of spot USDC and
// perp withdrawable.
func (s Snapshot) Available() decimal.Decimal {
	var spot decimal.Decimal
	if b, ok := s.Spot.Balance(QuoteCoin); ok {
		spot = b.Total
	}
	return decimal.Min(spot, s.Perp.Withdrawable)
}

// closeCandidates lists pairs holding both a perp position and a spot
// balance, in position order.
func closeCandidates(pairs []market.Pair, spot *client.SpotState, perp *client.PerpState) []closeCandidate {
	byName := make(map[string]market.Pair, len(pairs))
	for _, p := range pairs {
		byName[p.Name] = p
	}

	var out []closeCandidate
	for _, ap := range perp.AssetPositions {
		pair, ok := byName[ap.Position.Coin]
		if !ok {
			continue
		}
		holding, ok := spot.Balance(pair.Spot.Symbol)
		if !ok {
			continue
		}
		out = append(out, closeCandidate{pair: pair, position: ap.Position, holding: holding})
	}
	return out
}

type closeCandidate struct {
	pair     market.Pair
	position client.Position
	holding  client.SpotBalance
}

// Plan decides the trades for one cycle. It is pure: the same snapshot
// always yields the same intents. Pairs without both marks are left alone.
func Plan(pairs []market.Pair, snap Snapshot, minTrade decimal.Decimal) []Intent {
	var intents []Intent

	for _, c := range closeCandidates(pairs, snap.Spot, snap.Perp) {
		perpPx, spotPx, ok := snap.Marks.get(c.pair.Name)
		if !ok || !perpPx.LessThan(spotPx) {
			continue
		}
		intents = append(intents, Intent{
			Kind: Close,
			Pair: c.pair,
			Legs: []exchange.OrderParams{
				{
					Token:      c.pair.Perp,
					IsBuy:      true,
					MarkPx:     perpPx.InexactFloat64(),
					Amount:     c.position.Szi.Abs().InexactFloat64(),
					ReduceOnly: true,
				},
				{
					Token:      c.pair.Spot,
					IsBuy:      false,
					MarkPx:     spotPx.InexactFloat64(),
					Amount:     c.holding.Total.InexactFloat64(),
					ReduceOnly: true,
				},
			},
		})
	}

	available := snap.Available()
	for _, pair := range pairs {
		if available.LessThan(minTrade) {
			break
		}
		perpPx, spotPx, ok := snap.Marks.get(pair.Name)
		if !ok || !perpPx.GreaterThan(spotPx) {
			continue
		}
		notional := minTrade.InexactFloat64()
		intents = append(intents, Intent{
			Kind: Open,
			Pair: pair,
			Legs: []exchange.OrderParams{
				{Token: pair.Perp, IsBuy: false, MarkPx: perpPx.InexactFloat64(), Amount: notional, AmountIsNotional: true},
				{Token: pair.Spot, IsBuy: true, MarkPx: spotPx.InexactFloat64(), Amount: notional, AmountIsNotional: true},
			},
		})
		available = available.Sub(minTrade)
	}

	return intents
}

// MarksNeeded lists the pairs whose marks Plan will look at, so a cycle
// fetches no more prices than it uses.
func MarksNeeded(pairs []market.Pair, spot *client.SpotState, perp *client.PerpState, minTrade decimal.Decimal) []market.Pair {
	snap := Snapshot{Spot: spot, Perp: perp}
	if !snap.Available().LessThan(minTrade) {
		return pairs
	}
	var out []market.Pair
	for _, c := range closeCandidates(pairs, spot, perp) {
		out = append(out, c.pair)
	}
	return out
}
