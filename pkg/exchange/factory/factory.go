// Package factory builds exchange clients from configuration.
package factory

import (
	"errors"
	"fmt"
	"slices"

	"ledger/pkg/core"
	"ledger/pkg/exchange"
	"ledger/pkg/exchange/coinbase"
	"ledger/pkg/exchange/coinbasepro"
	"ledger/pkg/exchange/kraken"
)

type constructor func(*core.Config, ...exchange.Option) (exchange.Client, error)

var constructors = map[string]constructor{
	core.ExchangeCoinbase: func(c *core.Config, opts ...exchange.Option) (exchange.Client, error) {
		return coinbase.New(c, opts...)
	},
	core.ExchangeCoinbasePro: func(c *core.Config, opts ...exchange.Option) (exchange.Client, error) {
		return coinbasepro.New(c, opts...)
	},
	core.ExchangeKraken: func(c *core.Config, opts ...exchange.Option) (exchange.Client, error) {
		return kraken.New(c, opts...)
	},
}

// New returns the client selected by cfg.Exchange. It validates cfg and
// performs no I/O.
func New(cfg *core.Config, opts ...exchange.Option) (exchange.Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	newClient, ok := constructors[cfg.Exchange]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedExchange, cfg.Exchange)
	}
	return newClient(cfg, opts...)
}

// Register builds a client for every config and stores it in container
// under its exchange name. Clients built before a failure stay registered.
func Register(container *exchange.Container, cfgs []*core.Config, opts ...exchange.Option) error {
	for _, cfg := range cfgs {
		client, err := New(cfg, opts...)
		if err != nil {
			return err
		}
		if previous := container.Register(client.Name(), client); previous != nil {
			_ = previous.Close()
		}
	}
	return nil
}

// Names lists the supported exchange identifiers in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
