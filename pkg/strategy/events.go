package strategy

import "time"

// Channels events are published on.
const (
	ChannelOrders = "orders"
	ChannelCycles = "cycles"
)

// Publisher fans events out to subscribers. Publish must not block.
type Publisher interface {
	Publish(channel string, v any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, any) {}

// OrderEvent describes one signed order leg.
type OrderEvent struct {
	CycleID    string `json:"cycleId"`
	Intent     string `json:"intent"`
	Pair       string `json:"pair"`
	Asset      uint32 `json:"asset"`
	Spot       bool   `json:"spot"`
	IsBuy      bool   `json:"isBuy"`
	LimitPx    string `json:"limitPx"`
	Size       string `json:"size"`
	ReduceOnly bool   `json:"reduceOnly"`
	Nonce      uint64 `json:"nonce"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// CycleSummary is the outcome of one poll cycle.
type CycleSummary struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"durationNs"`
	Result    string        `json:"result"`
	Available string        `json:"available"`
	Intents   int           `json:"intents"`
	Orders    int           `json:"orders"`
	Error     string        `json:"error,omitempty"`
}
