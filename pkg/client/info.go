package client

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// SpotBalance is one coin held in the spot wallet.
type SpotBalance struct {
	Coin     string          `json:"coin"`
	Token    int             `json:"token"`
	Hold     decimal.Decimal `json:"hold"`
	Total    decimal.Decimal `json:"total"`
	EntryNtl decimal.Decimal `json:"entryNtl"`
}

type SpotState struct {
	Balances []SpotBalance `json:"balances"`
}

// Balance returns the holding for coin, if any.
func (s *SpotState) Balance(coin string) (SpotBalance, bool) {
	for _, b := range s.Balances {
		if b.Coin == coin {
			return b, true
		}
	}
	return SpotBalance{}, false
}

type Position struct {
	Coin          string          `json:"coin"`
	Szi           decimal.Decimal `json:"szi"` // signed: negative is short
	EntryPx       decimal.Decimal `json:"entryPx"`
	LiquidationPx decimal.Decimal `json:"liquidationPx"`
}

type AssetPosition struct {
	Position Position `json:"position"`
}

type PerpState struct {
	AssetPositions []AssetPosition `json:"assetPositions"`
	Withdrawable   decimal.Decimal `json:"withdrawable"`
}

type Leverage struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
}

type PerpAssetData struct {
	Leverage Leverage        `json:"leverage"`
	MarkPx   decimal.Decimal `json:"markPx"`
}

type SpotTokenDetails struct {
	Name      string          `json:"name"`
	MidPx     decimal.Decimal `json:"midPx"`
	MarkPx    decimal.Decimal `json:"markPx"`
	PrevDayPx decimal.Decimal `json:"prevDayPx"`
}

type userRequest struct {
	Type string         `json:"type"`
	User common.Address `json:"user"`
}

type assetDataRequest struct {
	Type string         `json:"type"`
	User common.Address `json:"user"`
	Coin string         `json:"coin"`
}

type tokenDetailsRequest struct {
	Type    string `json:"type"`
	TokenID string `json:"tokenId"`
}

// SpotBalances fetches the user's spot wallet.
func (c *Client) SpotBalances(ctx context.Context, user common.Address) (*SpotState, error) {
	var out SpotState
	if err := c.post(ctx, "/info", userRequest{Type: "spotClearinghouseState", User: user}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PerpState fetches open perp positions and the withdrawable margin.
func (c *Client) PerpState(ctx context.Context, user common.Address) (*PerpState, error) {
	var out PerpState
	if err := c.post(ctx, "/info", userRequest{Type: "clearinghouseState", User: user}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PerpAssetData fetches the mark price and leverage of one perp for a user.
func (c *Client) PerpAssetData(ctx context.Context, coin string, user common.Address) (*PerpAssetData, error) {
	var out PerpAssetData
	req := assetDataRequest{Type: "activeAssetData", User: user, Coin: coin}
	if err := c.post(ctx, "/info", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SpotTokenDetails fetches prices for a spot token by its token id.
func (c *Client) SpotTokenDetails(ctx context.Context, tokenID string) (*SpotTokenDetails, error) {
	var out SpotTokenDetails
	if err := c.post(ctx, "/info", tokenDetailsRequest{Type: "tokenDetails", TokenID: tokenID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
