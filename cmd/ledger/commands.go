package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v2"

	"ledger/pkg/aggregator"
	"ledger/pkg/core"
	"ledger/pkg/exchange"
	"ledger/pkg/order"
	"ledger/pkg/session"
	"ledger/pkg/stream"
)

const (
	opHistory     = core.OpHistory
	opDeposits    = core.OpDeposits
	opWithdrawals = core.OpWithdrawals
	opPrice       = core.OpPrice
)

// run executes op inside a session and prints the result.
func run(c *cli.Context, op core.Operation, params core.Params) error {
	config, err := clientConfig(c, env.keys, env.logger)
	if err != nil {
		return err
	}
	err = session.Run(c.Context, config, func(ctx context.Context, s *session.Session) error {
		return env.out.Report(s.Do(ctx, op, params))
	}, exchange.WithLogger(env.logger))
	if errors.Is(err, errReported) {
		return cli.Exit("", 1)
	}
	return err
}

func productsAction(c *cli.Context) error {
	return run(c, core.OpProducts, nil)
}

func accountsAction(c *cli.Context) error {
	return run(c, core.OpAccounts, nil)
}

func productAction(op core.Operation) cli.ActionFunc {
	return func(c *cli.Context) error {
		product := c.Args().First()
		if product == "" {
			return cli.Exit(op.String()+": product is required", 2)
		}
		return run(c, op, core.Params{"product_id": product})
	}
}

func orderAction(c *cli.Context) error {
	params, err := order.NewBuilder(c.String(ProductFlag.Name)).
		Side(c.String(SideFlag.Name)).
		Type(c.String(TypeFlag.Name)).
		Price(c.String(PriceFlag.Name)).
		Size(c.String(SizeFlag.Name)).
		Build(c.String(ExchangeFlag.Name))
	if err != nil {
		return cli.Exit("order: "+err.Error(), 2)
	}
	return run(c, core.OpOrder, params)
}

func tickerAction(c *cli.Context) error {
	products := c.Args().Slice()
	if len(products) == 0 {
		return cli.Exit("ticker: at least one product is required", 2)
	}

	s, err := stream.NewTickerStream(c.String(ExchangeFlag.Name), stream.DefaultConfig(products...), env.logger)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Connect(c.Context); err != nil {
		return err
	}
	for {
		select {
		case <-c.Context.Done():
			return nil
		case t, ok := <-s.Tickers():
			if !ok {
				return s.Err()
			}
			env.out.Ticker(t)
		}
	}
}

// portfolioAction sums balances over every exchange that has a profile.
func portfolioAction(c *cli.Context) error {
	configs, err := portfolioConfigs(c, env.keys)
	if err != nil {
		return err
	}
	if len(configs) == 0 {
		return cli.Exit("portfolio: no credentials configured", 2)
	}

	agg := aggregator.NewAggregatorWithLogger(env.logger)
	defer agg.Close()
	for _, config := range configs {
		s, err := session.New(config, exchange.WithLogger(env.logger))
		if err != nil {
			return err
		}
		agg.AddSession(config.Exchange, s)
	}

	portfolio, err := agg.Portfolio(c.Context)
	if portfolio == nil {
		return err
	}
	if perr := env.out.JSON(portfolio); perr != nil {
		return perr
	}
	for name, e := range portfolio.Errors {
		env.logger.Warn().Err(e).Str("exchange", name).Msg("accounts failed")
	}
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return nil
}
