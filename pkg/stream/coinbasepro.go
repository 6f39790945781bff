package stream

import (
	"time"

	"github.com/bytedance/sonic"

	"ledger/pkg/core"
)

// CoinbaseProCodec handles the ws-feed ticker channel.
type CoinbaseProCodec struct{}

type coinbaseProSubscribe struct {
	Type       string   `json:"type"`
	ProductIDs []string `json:"product_ids"`
	Channels   []string `json:"channels"`
}

type coinbaseProMessage struct {
	Type      string `json:"type"`
	ProductID string `json:"product_id"`
	Price     string `json:"price"`
	BestBid   string `json:"best_bid"`
	BestAsk   string `json:"best_ask"`
	Time      string `json:"time"`
	Message   string `json:"message"`
	Reason    string `json:"reason"`
}

func (CoinbaseProCodec) Subscribe(products []string) any {
	return coinbaseProSubscribe{Type: "subscribe", ProductIDs: products, Channels: []string{"ticker"}}
}

func (CoinbaseProCodec) Parse(data []byte, now time.Time) ([]core.Ticker, error) {
	var msg coinbaseProMessage
	if err := sonic.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Type {
	case "ticker":
	case "error":
		e := core.NewExchangeError(core.ExchangeCoinbasePro, core.ErrorTypeBadRequest, 0, msg.Message+": "+msg.Reason)
		e.Raw = data
		return nil, e
	default:
		return nil, nil
	}

	ts := msg.Time
	if ts == "" {
		ts = now.UTC().Format(time.RFC3339Nano)
	}
	return []core.Ticker{{
		Product:   msg.ProductID,
		Bid:       msg.BestBid,
		Ask:       msg.BestAsk,
		Last:      msg.Price,
		Timestamp: ts,
	}}, nil
}
