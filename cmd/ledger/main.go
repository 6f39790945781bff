package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"
)

var app *cli.App

func init() {
	app = &cli.App{
		Name:    filepath.Base(os.Args[0]),
		Usage:   "query balances, fills and transfers across Coinbase, Coinbase Pro and Kraken",
		Version: "0.1.0",
		Flags: []cli.Flag{
			ExchangeFlag,
			ConfigFlag,
			ProfileFlag,
			EnvFileFlag,
			LogLevelFlag,
			LogFileFlag,
			BaseURLFlag,
			NoColorFlag,
		},
		Before: before,
	}

	app.Commands = []*cli.Command{
		{
			Name:   "products",
			Usage:  "List tradable products",
			Action: productsAction,
		},
		{
			Name:   "accounts",
			Usage:  "List non-zero balances",
			Action: accountsAction,
		},
		{
			Name:      "history",
			Usage:     "List fills of a product",
			ArgsUsage: "<product>",
			Action:    productAction(opHistory),
		},
		{
			Name:      "deposits",
			Usage:     "List deposits of a product's base currency",
			ArgsUsage: "<product>",
			Action:    productAction(opDeposits),
		},
		{
			Name:      "withdrawals",
			Usage:     "List withdrawals of a product's base currency",
			ArgsUsage: "<product>",
			Action:    productAction(opWithdrawals),
		},
		{
			Name:      "price",
			Usage:     "Show bid, ask and last price of a product",
			ArgsUsage: "<product>",
			Action:    productAction(opPrice),
		},
		{
			Name:  "order",
			Usage: "Place an order",
			Flags: []cli.Flag{
				ProductFlag,
				SideFlag,
				TypeFlag,
				PriceFlag,
				SizeFlag,
			},
			Action: orderAction,
		},
		{
			Name:   "portfolio",
			Usage:  "Sum balances across every exchange with credentials",
			Action: portfolioAction,
		},
		{
			Name:      "ticker",
			Usage:     "Stream ticker quotes (coinbasepro, kraken)",
			ArgsUsage: "<product>...",
			Action:    tickerAction,
		},
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	if err := app.RunContext(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
