package action

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	TypeOrder     = "order"
	GroupingNA    = "na"
	TifIoc        = "Ioc"
	TifGtc        = "Gtc"
	TifAlo        = "Alo"
	SpotAssetBase = 10000
)

var (
	ErrEmptyAction  = errors.New("action has no orders")
	ErrInvalidOrder = errors.New("invalid order")
)

// Limit is the limit order type body. Field names are wire keys.
type Limit struct {
	Tif string `json:"tif"`
}

// OrderType wraps the order kind. Only limit orders are produced here.
type OrderType struct {
	Limit Limit `json:"limit"`
}

// Order is one order in wire form. Price and size are already canonical
// decimal strings; see pkg/wire.
type Order struct {
	Asset      uint32    `json:"a"`
	IsBuy      bool      `json:"b"`
	LimitPx    string    `json:"p"`
	Size       string    `json:"s"`
	ReduceOnly bool      `json:"r"`
	Type       OrderType `json:"t"`
}

// Action is the L1 order action whose canonical bytes get hashed.
type Action struct {
	Type     string  `json:"type"`
	Orders   []Order `json:"orders"`
	Grouping string  `json:"grouping"`
}

// NewIocOrder builds an immediate-or-cancel limit order.
func NewIocOrder(asset uint32, isBuy bool, px, sz string, reduceOnly bool) Order {
	return Order{
		Asset:      asset,
		IsBuy:      isBuy,
		LimitPx:    px,
		Size:       sz,
		ReduceOnly: reduceOnly,
		Type:       OrderType{Limit: Limit{Tif: TifIoc}},
	}
}

// NewOrderAction groups orders under the "na" grouping.
func NewOrderAction(orders ...Order) Action {
	return Action{
		Type:     TypeOrder,
		Orders:   orders,
		Grouping: GroupingNA,
	}
}

// Validate checks the invariants that must hold before the action is
// serialized.
func (a Action) Validate() error {
	if len(a.Orders) == 0 {
		return ErrEmptyAction
	}
	if a.Type != TypeOrder {
		return fmt.Errorf("%w: action type %q", ErrInvalidOrder, a.Type)
	}
	if a.Grouping == "" {
		return fmt.Errorf("%w: missing grouping", ErrInvalidOrder)
	}
	for i, o := range a.Orders {
		if err := o.Validate(); err != nil {
			return fmt.Errorf("order %d: %w", i, err)
		}
	}
	return nil
}

// Validate rejects price/size strings that are not canonical decimals.
func (o Order) Validate() error {
	if err := checkDecimal("p", o.LimitPx); err != nil {
		return err
	}
	if err := checkDecimal("s", o.Size); err != nil {
		return err
	}
	switch o.Type.Limit.Tif {
	case TifIoc, TifGtc, TifAlo:
	case "":
		return fmt.Errorf("%w: missing tif", ErrInvalidOrder)
	default:
		return fmt.Errorf("%w: tif %q", ErrInvalidOrder, o.Type.Limit.Tif)
	}
	return nil
}

// IsSpot reports whether the asset id addresses a spot pair.
func (o Order) IsSpot() bool {
	return o.Asset >= SpotAssetBase
}

func checkDecimal(field, s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("%w: %s=%q", ErrInvalidOrder, field, s)
	}
	// Only the normalized rendering may go on the wire.
	if d.String() != s {
		return fmt.Errorf("%w: %s=%q is not canonical", ErrInvalidOrder, field, s)
	}
	return nil
}
