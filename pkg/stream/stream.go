// Package stream turns exchange websocket ticker feeds into core.Ticker
// values.
package stream

import (
	"context"
	"fmt"
	"time"

	"ledger/internal/ws"
	"ledger/pkg/core"
)

type ConnState = ws.ConnState

const (
	StateDisconnected = ws.StateDisconnected
	StateConnecting   = ws.StateConnecting
	StateConnected    = ws.StateConnected
	StateClosed       = ws.StateClosed
)

// Production feed endpoints.
const (
	CoinbaseProURL = "wss://ws-feed.exchange.coinbase.com"
	KrakenURL      = "wss://ws.kraken.com"
)

type Stream interface {
	Connect(ctx context.Context) error
	Tickers() <-chan core.Ticker
	Close() error
	State() ConnState
}

// Codec speaks one exchange's ticker protocol.
type Codec interface {
	// Subscribe returns the subscription request for products.
	Subscribe(products []string) any
	// Parse decodes a frame. Frames that carry no ticker, such as
	// heartbeats and acknowledgements, yield nil and no error.
	Parse(data []byte, now time.Time) ([]core.Ticker, error)
}

type Config struct {
	// URL overrides the exchange's production feed.
	URL          string
	Products     []string
	PingInterval time.Duration
	PongWait     time.Duration
	BufferSize   int
}

func DefaultConfig(products ...string) Config {
	return Config{
		Products:     products,
		PingInterval: 10 * time.Second,
		PongWait:     20 * time.Second,
		BufferSize:   100,
	}
}

// CodecFor returns the codec and production URL of exchange. Only
// Coinbase Pro and Kraken publish a ticker feed.
func CodecFor(exchange string) (Codec, string, error) {
	switch exchange {
	case core.ExchangeCoinbasePro:
		return CoinbaseProCodec{}, CoinbaseProURL, nil
	case core.ExchangeKraken:
		return KrakenCodec{}, KrakenURL, nil
	}
	return nil, "", fmt.Errorf("%w: no ticker stream for %q", core.ErrUnsupportedExchange, exchange)
}
