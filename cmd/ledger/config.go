package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/logrusorgru/aurora"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"ledger/internal/keyring"
	"ledger/pkg/core"
	"ledger/pkg/exchange/factory"
)

// environment is the state shared by every command, built once in before.
type environment struct {
	logger zerolog.Logger
	keys   *keyring.KeyRing
	out    *printer
}

var env *environment

func before(c *cli.Context) error {
	if path := c.String(EnvFileFlag.Name); path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load env file: %w", err)
		}
	}

	logger, err := newLogger(c.String(LogLevelFlag.Name), c.String(LogFileFlag.Name), c.Bool(NoColorFlag.Name))
	if err != nil {
		return err
	}

	keys := keyring.NewKeyRing(nil)
	keys.SetLogger(logger)
	keys.LoadEnv(factory.Names(), os.LookupEnv)
	if path := c.String(ConfigFlag.Name); path != "" {
		if err := keys.LoadFile(path); err != nil {
			return err
		}
	}

	env = &environment{
		logger: logger,
		keys:   keys,
		out:    newPrinter(c.App.Writer, aurora.NewAurora(!c.Bool(NoColorFlag.Name))),
	}
	return nil
}

func newLogger(level, file string, noColor bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parse log level: %w", err)
	}

	var w io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, NoColor: noColor}
	if file != "" {
		w = &lumberjack.Logger{
			Filename:   file,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// clientConfig builds the config of the selected exchange. Without a
// matching profile the config carries no credentials and only public
// operations succeed. An explicit --profile must exist.
func clientConfig(c *cli.Context, keys *keyring.KeyRing, logger zerolog.Logger) (*core.Config, error) {
	name := c.String(ExchangeFlag.Name)

	var key *keyring.APIKey
	if c.IsSet(ProfileFlag.Name) {
		var err error
		if key, err = keys.Get(c.String(ProfileFlag.Name)); err != nil {
			return nil, err
		}
	} else if found, err := keys.ForExchange(name); err == nil {
		key = found
	} else {
		logger.Debug().Str("exchange", name).Msg("no credentials, public endpoints only")
	}
	return exchangeConfig(c, name, key)
}

// portfolioConfigs builds one config for every exchange with a profile.
// An explicit --profile replaces the default profile of its exchange.
func portfolioConfigs(c *cli.Context, keys *keyring.KeyRing) ([]*core.Config, error) {
	var explicit *keyring.APIKey
	if c.IsSet(ProfileFlag.Name) {
		var err error
		if explicit, err = keys.Get(c.String(ProfileFlag.Name)); err != nil {
			return nil, err
		}
	}

	var configs []*core.Config
	for _, name := range factory.Names() {
		key, err := keys.ForExchange(name)
		if explicit != nil && explicit.Exchange == name {
			key, err = explicit, nil
		}
		if err != nil {
			continue
		}
		config, err := exchangeConfig(c, name, key)
		if err != nil {
			return nil, err
		}
		configs = append(configs, config)
	}
	return configs, nil
}

// exchangeConfig applies the global flags to the defaults of exchange.
// --base-url only applies to the exchange selected with --exchange.
func exchangeConfig(c *cli.Context, name string, key *keyring.APIKey) (*core.Config, error) {
	config := core.DefaultConfig(name)
	config.LogLevel = c.String(LogLevelFlag.Name)
	if key != nil {
		config.WithCredentials(key.Credentials())
	}
	if url := c.String(BaseURLFlag.Name); url != "" && name == c.String(ExchangeFlag.Name) {
		config.WithBaseURL(url)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s config: %w", name, err)
	}
	return config, nil
}
