package stream

import (
	"time"

	"github.com/bytedance/sonic"

	"ledger/pkg/core"
)

// KrakenCodec handles the public ticker subscription of ws.kraken.com.
// Ticker frames are arrays: [channelID, {a, b, c, ...}, "ticker", pair].
type KrakenCodec struct{}

type krakenSubscribe struct {
	Event        string             `json:"event"`
	Pair         []string           `json:"pair"`
	Subscription krakenSubscription `json:"subscription"`
}

type krakenSubscription struct {
	Name string `json:"name"`
}

type krakenEvent struct {
	Event        string `json:"event"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage"`
}

func (KrakenCodec) Subscribe(products []string) any {
	return krakenSubscribe{Event: "subscribe", Pair: products, Subscription: krakenSubscription{Name: "ticker"}}
}

func (KrakenCodec) Parse(data []byte, now time.Time) ([]core.Ticker, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] == '{' {
		var ev krakenEvent
		if err := sonic.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		if ev.Status == "error" {
			e := core.NewExchangeError(core.ExchangeKraken, core.ErrorTypeBadRequest, 0, ev.ErrorMessage)
			e.Raw = data
			return nil, e
		}
		return nil, nil
	}

	root, err := sonic.Get(data)
	if err != nil {
		return nil, err
	}
	if channel, err := root.Index(2).String(); err != nil || channel != "ticker" {
		return nil, nil
	}
	pair, err := root.Index(3).String()
	if err != nil {
		return nil, err
	}
	fields := root.Index(1)
	quote := func(key string) (string, error) {
		return fields.Get(key).Index(0).String()
	}

	bid, err := quote("b")
	if err != nil {
		return nil, err
	}
	ask, err := quote("a")
	if err != nil {
		return nil, err
	}
	last, err := quote("c")
	if err != nil {
		return nil, err
	}
	return []core.Ticker{{
		Product:   pair,
		Bid:       bid,
		Ask:       ask,
		Last:      last,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
	}}, nil
}
