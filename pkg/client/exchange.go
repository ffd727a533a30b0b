package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/uhyunpark/hyperarb/pkg/exchange"
)

var ErrExchangeRejected = errors.New("exchange rejected action")

// ExchangeResponse is the envelope /exchange answers with. Response holds an
// error string when Status is "err" and an object otherwise.
type ExchangeResponse struct {
	Status   string          `json:"status"`
	Response json.RawMessage `json:"response"`
}

type FillStatus struct {
	TotalSz string `json:"totalSz"`
	AvgPx   string `json:"avgPx"`
	Oid     int64  `json:"oid"`
}

type RestingStatus struct {
	Oid int64 `json:"oid"`
}

// OrderStatus is the per-order outcome. Exactly one field is set.
type OrderStatus struct {
	Filled  *FillStatus    `json:"filled,omitempty"`
	Resting *RestingStatus `json:"resting,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type orderResponse struct {
	Type string `json:"type"`
	Data struct {
		Statuses []OrderStatus `json:"statuses"`
	} `json:"data"`
}

// Statuses decodes per-order outcomes of an accepted order action.
func (r *ExchangeResponse) Statuses() ([]OrderStatus, error) {
	var body orderResponse
	if err := json.Unmarshal(r.Response, &body); err != nil {
		return nil, fmt.Errorf("decode order statuses: %w", err)
	}
	return body.Data.Statuses, nil
}

// Err reports a rejection as ErrExchangeRejected. The whole action can be
// refused ("status":"err"), or single orders can fail inside an "ok"
// envelope, as an Ioc order does when nothing matches.
func (r *ExchangeResponse) Err() error {
	if r.Status != "ok" {
		var msg string
		if err := json.Unmarshal(r.Response, &msg); err != nil {
			msg = string(r.Response)
		}
		return fmt.Errorf("%w: %s", ErrExchangeRejected, msg)
	}
	if len(r.Response) == 0 {
		return nil
	}
	statuses, err := r.Statuses()
	if err != nil {
		return err
	}
	for i, st := range statuses {
		if st.Error != "" {
			return fmt.Errorf("%w: order %d: %s", ErrExchangeRejected, i, st.Error)
		}
	}
	return nil
}

// PlaceOrder posts a signed payload. A refused action or any refused order
// is returned as ErrExchangeRejected together with the response.
func (c *Client) PlaceOrder(ctx context.Context, payload *exchange.OutboundPayload) (*ExchangeResponse, error) {
	var out ExchangeResponse
	if err := c.post(ctx, "/exchange", payload, &out); err != nil {
		return nil, err
	}
	if err := out.Err(); err != nil {
		return &out, err
	}

	c.log.Debugw("exchange_accepted", "nonce", payload.Nonce, "orders", len(payload.Action.Orders))
	return &out, nil
}
