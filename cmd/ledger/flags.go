package main

import "github.com/urfave/cli/v2"

var (
	ExchangeFlag = &cli.StringFlag{
		Name:    "exchange",
		Aliases: []string{"x"},
		Value:   "coinbasepro",
		Usage:   "exchange to query: coinbase, coinbasepro or kraken",
		EnvVars: []string{"LEDGER_EXCHANGE"},
	}
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "load credential profiles from YAML `file`",
		EnvVars: []string{"LEDGER_CONFIG"},
	}
	ProfileFlag = &cli.StringFlag{
		Name:    "profile",
		Aliases: []string{"p"},
		Usage:   "credential profile `id`, defaults to the exchange name",
	}
	EnvFileFlag = &cli.StringFlag{
		Name:  "env-file",
		Value: ".env",
		Usage: "load environment variables from `file` when it exists",
	}
	LogLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Value: "warn",
		Usage: "debug, info, warn or error",
	}
	LogFileFlag = &cli.StringFlag{
		Name:  "log-file",
		Usage: "write logs to a rotated `file` instead of stderr",
	}
	BaseURLFlag = &cli.StringFlag{
		Name:    "base-url",
		Usage:   "override the REST API `url` of the selected exchange",
		EnvVars: []string{"LEDGER_BASE_URL"},
	}
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "disable colored output",
	}

	ProductFlag = &cli.StringFlag{
		Name:     "product",
		Usage:    "product or pair, for example BTC-USD or XXBTZUSD",
		Required: true,
	}
	SideFlag = &cli.StringFlag{
		Name:     "side",
		Usage:    "buy or sell",
		Required: true,
	}
	TypeFlag = &cli.StringFlag{
		Name:  "type",
		Value: "limit",
		Usage: "order type, for example limit or market",
	}
	PriceFlag = &cli.StringFlag{
		Name:  "price",
		Usage: "limit price",
	}
	SizeFlag = &cli.StringFlag{
		Name:     "size",
		Usage:    "order size in the base currency",
		Required: true,
	}
)
