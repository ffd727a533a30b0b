package exchange

import (
	"errors"
	"fmt"
	"math"

	"github.com/uhyunpark/hyperarb/pkg/action"
	"github.com/uhyunpark/hyperarb/pkg/market"
	"github.com/uhyunpark/hyperarb/pkg/wire"
)

// DefaultSlippage crosses the mark by 1% so Ioc orders fill.
const DefaultSlippage = 0.01

var (
	ErrZeroSize     = errors.New("order size rounds to zero")
	ErrInvalidPrice = errors.New("invalid mark price")
)

// OrderParams are the human-level inputs for one order.
type OrderParams struct {
	Token  market.Token
	IsBuy  bool
	MarkPx float64
	// Amount is a size in base units, or a USD notional when
	// AmountIsNotional is set.
	Amount           float64
	AmountIsNotional bool
	ReduceOnly       bool
}

// Builder turns OrderParams into wire orders.
type Builder struct {
	slippage float64
}

func NewBuilder(slippage float64) *Builder {
	return &Builder{slippage: slippage}
}

// LimitPrice crosses the mark by the slippage: above it for buys, below it
// for sells.
func (b *Builder) LimitPrice(markPx float64, isBuy bool) float64 {
	if isBuy {
		return markPx * (1 + b.slippage)
	}
	return markPx * (1 - b.slippage)
}

// Order formats price and size for the token and returns an Ioc order.
func (b *Builder) Order(p OrderParams) (action.Order, error) {
	if p.MarkPx <= 0 || math.IsNaN(p.MarkPx) || math.IsInf(p.MarkPx, 0) {
		return action.Order{}, fmt.Errorf("%w: %v", ErrInvalidPrice, p.MarkPx)
	}

	limitPx := b.LimitPrice(p.MarkPx, p.IsBuy)
	px, err := wire.FormatPrice(limitPx, p.Token.PriceDecimals())
	if err != nil {
		return action.Order{}, fmt.Errorf("format price: %w", err)
	}

	var sz string
	if p.AmountIsNotional {
		sz, err = wire.FormatNotionalSize(p.Amount, limitPx, p.Token.SzDecimals)
	} else {
		sz, err = wire.FormatSize(math.Abs(p.Amount), p.Token.SzDecimals)
	}
	if err != nil {
		return action.Order{}, fmt.Errorf("format size: %w", err)
	}
	if sz == "0" {
		return action.Order{}, fmt.Errorf("%w: %s amount %v", ErrZeroSize, p.Token.Name, p.Amount)
	}

	return action.NewIocOrder(p.Token.Asset(), p.IsBuy, px, sz, p.ReduceOnly), nil
}

// Action builds a single-order action.
func (b *Builder) Action(p OrderParams) (action.Action, error) {
	o, err := b.Order(p)
	if err != nil {
		return action.Action{}, err
	}
	return action.NewOrderAction(o), nil
}
