package strategy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/mo"
	"go.uber.org/zap"

	"github.com/uhyunpark/hyperarb/pkg/client"
	"github.com/uhyunpark/hyperarb/pkg/exchange"
	"github.com/uhyunpark/hyperarb/pkg/metrics"
)

// OrderAPI submits signed payloads.
type OrderAPI interface {
	PlaceOrder(ctx context.Context, payload *exchange.OutboundPayload) (*client.ExchangeResponse, error)
}

// ExecutorConfig holds what signing needs besides the order itself.
type ExecutorConfig struct {
	PrivateKey string
	Source     string
	Vault      mo.Option[common.Address]
	DryRun     bool
}

// Executor turns intents into signed orders and submits them leg by leg.
type Executor struct {
	cfg     ExecutorConfig
	builder *exchange.Builder
	nonces  *exchange.NonceManager
	orders  OrderAPI
	pub     Publisher
	log     *zap.SugaredLogger
}

func NewExecutor(cfg ExecutorConfig, builder *exchange.Builder, nonces *exchange.NonceManager, orders OrderAPI, pub Publisher, log *zap.SugaredLogger) *Executor {
	if pub == nil {
		pub = nopPublisher{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Executor{cfg: cfg, builder: builder, nonces: nonces, orders: orders, pub: pub, log: log}
}

// Execute runs each intent's legs in order and stops at the first failure.
// It returns how many legs were signed.
func (e *Executor) Execute(ctx context.Context, cycleID string, intents []Intent) (int, error) {
	signed := 0
	for _, in := range intents {
		e.log.Infow("intent", "cycle_id", cycleID, "kind", in.Kind, "pair", in.Pair.Name)
		for i, leg := range in.Legs {
			if err := e.submit(ctx, cycleID, in, leg); err != nil {
				return signed, fmt.Errorf("%s %s leg %d: %w", in.Kind, in.Pair.Name, i, err)
			}
			signed++
		}
	}
	return signed, nil
}

// Sign builds and signs one order without sending it.
func (e *Executor) Sign(p exchange.OrderParams) (*exchange.OutboundPayload, error) {
	act, err := e.builder.Action(p)
	if err != nil {
		return nil, err
	}
	nonce, err := e.nonces.Next()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	payload, err := exchange.SignL1Action(act, nonce, e.nonces.Expiry(nonce), e.cfg.Vault, e.cfg.PrivateKey, e.cfg.Source)
	if err != nil {
		return nil, err
	}
	metrics.ObserveSign(start)
	return payload, nil
}

func (e *Executor) submit(ctx context.Context, cycleID string, in Intent, leg exchange.OrderParams) error {
	payload, err := e.Sign(leg)
	if err != nil {
		metrics.OrderSubmits.WithLabelValues(metrics.StatusError).Inc()
		return err
	}

	o := payload.Action.Orders[0]
	ev := OrderEvent{
		CycleID:    cycleID,
		Intent:     string(in.Kind),
		Pair:       in.Pair.Name,
		Asset:      o.Asset,
		Spot:       o.IsSpot(),
		IsBuy:      o.IsBuy,
		LimitPx:    o.LimitPx,
		Size:       o.Size,
		ReduceOnly: o.ReduceOnly,
		Nonce:      payload.Nonce,
		Timestamp:  time.Now().UnixMilli(),
	}

	if e.cfg.DryRun {
		ev.Status = metrics.StatusDryRun
	} else {
		var resp *client.ExchangeResponse
		resp, err = e.orders.PlaceOrder(ctx, payload)
		if err == nil && resp != nil {
			// Ioc orders that find no liquidity fail inside an "ok" envelope.
			err = resp.Err()
		}
		switch {
		case err == nil:
			ev.Status = metrics.StatusOK
		case errors.Is(err, client.ErrExchangeRejected):
			ev.Status = metrics.StatusRejected
		default:
			ev.Status = metrics.StatusError
		}
		if err != nil {
			ev.Error = err.Error()
		}
	}

	metrics.OrderSubmits.WithLabelValues(ev.Status).Inc()
	e.pub.Publish(ChannelOrders, ev)

	fields := []any{
		"cycle_id", cycleID, "pair", ev.Pair, "asset", ev.Asset, "spot", ev.Spot, "is_buy", ev.IsBuy,
		"px", ev.LimitPx, "sz", ev.Size, "reduce_only", ev.ReduceOnly, "nonce", ev.Nonce, "status", ev.Status,
	}
	if err != nil {
		e.log.Warnw("order_failed", append(fields, "err", err)...)
		return err
	}
	e.log.Infow("order_submitted", fields...)
	return nil
}
