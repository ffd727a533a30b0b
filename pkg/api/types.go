package api

import (
	"github.com/uhyunpark/hyperarb/pkg/action"
	"github.com/uhyunpark/hyperarb/pkg/market"
	"github.com/uhyunpark/hyperarb/pkg/strategy"
)

// API response types for REST endpoints and WebSocket messages

// ==============================
// REST Types
// ==============================

// MarketsResponse lists every listing and the pairs the strategy trades
type MarketsResponse struct {
	Tokens []market.Token `json:"tokens"`
	Pairs  []market.Pair  `json:"pairs"`
}

// StatusResponse summarizes the running bot
type StatusResponse struct {
	Wallet    string                 `json:"wallet"`
	Signer    string                 `json:"signer"`
	Source    string                 `json:"source"` // "a" mainnet, "b" testnet
	DryRun    bool                   `json:"dryRun"`
	LastNonce uint64                 `json:"lastNonce"` // nonce high-water mark
	WSClients int                    `json:"wsClients"`
	LastCycle *strategy.CycleSummary `json:"lastCycle,omitempty"`
}

// PreviewRequest describes an order to encode without signing
type PreviewRequest struct {
	Coin       string  `json:"coin"` // pair name ("ETH") or exchange coin ("UETH")
	Kind       string  `json:"kind"` // "perp" or "spot"
	IsBuy      bool    `json:"isBuy"`
	MarkPx     float64 `json:"markPx"`
	Amount     float64 `json:"amount"`
	Notional   bool    `json:"notional"` // amount is USD
	ReduceOnly bool    `json:"reduceOnly"`
	Nonce      uint64  `json:"nonce,omitempty"` // defaults to now in ms
}

// PreviewResponse is the wire action and the hash a signature would cover
type PreviewResponse struct {
	Action       action.Action `json:"action"`
	Nonce        uint64        `json:"nonce"`
	ExpiresAfter uint64        `json:"expiresAfter"`
	ConnectionID string        `json:"connectionId"`
}

// ==============================
// WebSocket Message Types
// ==============================

// WSMessage is the base structure for all WebSocket messages
type WSMessage struct {
	Type string      `json:"type"` // channel name: "orders" or "cycles"
	Data interface{} `json:"data"`
}

// WSSubscribeRequest is sent by client to subscribe to channels
type WSSubscribeRequest struct {
	Op       string   `json:"op"`       // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"` // e.g., ["orders", "cycles"]
}

// ErrorResponse is returned for all errors
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
