package strategy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/uhyunpark/hyperarb/pkg/client"
	"github.com/uhyunpark/hyperarb/pkg/market"
	"github.com/uhyunpark/hyperarb/pkg/metrics"
	"github.com/uhyunpark/hyperarb/pkg/util"
)

// InfoAPI reads account and market state.
type InfoAPI interface {
	SpotBalances(ctx context.Context, user common.Address) (*client.SpotState, error)
	PerpState(ctx context.Context, user common.Address) (*client.PerpState, error)
	PerpAssetData(ctx context.Context, coin string, user common.Address) (*client.PerpAssetData, error)
	SpotTokenDetails(ctx context.Context, tokenID string) (*client.SpotTokenDetails, error)
}

type RunnerConfig struct {
	Wallet       common.Address
	PollInterval time.Duration
	MinTrade     decimal.Decimal
}

// Runner polls the exchange and executes the basis strategy every interval.
type Runner struct {
	cfg      RunnerConfig
	registry *market.Registry
	info     InfoAPI
	exec     *Executor
	clock    util.Clock
	pub      Publisher
	log      *zap.SugaredLogger

	mu   sync.RWMutex
	last *CycleSummary
}

func NewRunner(cfg RunnerConfig, registry *market.Registry, info InfoAPI, exec *Executor, clock util.Clock, pub Publisher, log *zap.SugaredLogger) *Runner {
	if pub == nil {
		pub = nopPublisher{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Runner{cfg: cfg, registry: registry, info: info, exec: exec, clock: clock, pub: pub, log: log}
}

// Run executes a cycle immediately, then one per interval until ctx is done.
// Cycle errors are logged and do not stop the loop.
func (r *Runner) Run(ctx context.Context) error {
	for {
		r.Cycle(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.clock.After(r.cfg.PollInterval):
		}
	}
}

// LastCycle returns the most recent cycle summary, if any.
func (r *Runner) LastCycle() (CycleSummary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.last == nil {
		return CycleSummary{}, false
	}
	return *r.last, true
}

// Cycle runs one poll: fetch state, plan, execute.
func (r *Runner) Cycle(ctx context.Context) CycleSummary {
	sum := CycleSummary{
		ID:        uuid.NewString(),
		StartedAt: r.clock.Now(),
	}

	intents, available, err := r.plan(ctx)
	sum.Available = available.String()
	sum.Intents = len(intents)
	if err == nil {
		sum.Orders, err = r.exec.Execute(ctx, sum.ID, intents)
	}

	switch {
	case err != nil:
		sum.Result = metrics.CycleError
		sum.Error = err.Error()
		r.log.Errorw("cycle_failed", "cycle_id", sum.ID, "err", err)
	case len(intents) == 0:
		sum.Result = metrics.CycleSkipped
		r.log.Infow("cycle_skipped", "cycle_id", sum.ID, "available", sum.Available)
	default:
		sum.Result = metrics.CycleOK
		r.log.Infow("cycle_done", "cycle_id", sum.ID, "intents", sum.Intents, "orders", sum.Orders)
	}
	sum.Duration = r.clock.Now().Sub(sum.StartedAt)

	metrics.Cycles.WithLabelValues(sum.Result).Inc()
	r.pub.Publish(ChannelCycles, sum)

	r.mu.Lock()
	r.last = &sum
	r.mu.Unlock()
	return sum
}

func (r *Runner) plan(ctx context.Context) ([]Intent, decimal.Decimal, error) {
	spot, err := r.info.SpotBalances(ctx, r.cfg.Wallet)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("spot balances: %w", err)
	}
	perp, err := r.info.PerpState(ctx, r.cfg.Wallet)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("perp state: %w", err)
	}

	pairs := r.registry.Pairs()
	marks := NewMarks()
	for _, p := range MarksNeeded(pairs, spot, perp, r.cfg.MinTrade) {
		pd, err := r.info.PerpAssetData(ctx, p.Perp.Symbol, r.cfg.Wallet)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("%s perp mark: %w", p.Name, err)
		}
		sd, err := r.info.SpotTokenDetails(ctx, p.Spot.TokenID)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("%s spot mark: %w", p.Name, err)
		}
		marks.Perp[p.Name] = pd.MarkPx
		marks.Spot[p.Name] = sd.MarkPx
	}

	snap := Snapshot{Spot: spot, Perp: perp, Marks: marks}
	return Plan(pairs, snap, r.cfg.MinTrade), snap.Available(), nil
}
