package core

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Supported exchange identifiers.
const (
	ExchangeCoinbase    = "coinbase"
	ExchangeCoinbasePro = "coinbasepro"
	ExchangeKraken      = "kraken"
)

// Default request settings shared by every exchange.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "ledger/0.1.0 (+https://github.com/teleprint-me/ledger)"

	// CoinbaseDelay is the courtesy pause applied before every Coinbase
	// and Coinbase Pro request.
	CoinbaseDelay = 275 * time.Millisecond
	// KrakenDelay keeps Kraken traffic under 3.5 calls per second.
	KrakenDelay = time.Second * 2 / 7

	// CoinbaseAPIVersion is sent as CB-VERSION to the v2 API.
	CoinbaseAPIVersion = "2021-06-04"
	// CoinbasePageLimit is the page size requested from the v2 API.
	CoinbasePageLimit = 100

	// KrakenPageStep is the offset increment for Kraken history calls.
	KrakenPageStep = 50
	// KrakenPageCap bounds the offset walked by Kraken history calls.
	KrakenPageCap = 250
)

// Credentials holds API authentication credentials for an exchange.
type Credentials struct {
	// APIKey is the public API key identifier.
	APIKey string `json:"api_key" yaml:"key" validate:"required"`
	// SecretKey is the private key used for signing requests. Coinbase Pro
	// and Kraken expect it base64 encoded.
	SecretKey string `json:"secret_key" yaml:"secret" validate:"required"`
	// Passphrase is required by Coinbase Pro only.
	Passphrase string `json:"passphrase,omitempty" yaml:"passphrase,omitempty"`
}

// Config contains all configuration options for an exchange client.
type Config struct {
	Exchange    string       `json:"exchange" validate:"required,oneof=coinbase coinbasepro kraken"`
	Credentials *Credentials `json:"credentials,omitempty"`

	// BaseURL overrides the exchange's production endpoint.
	BaseURL string `json:"base_url" validate:"required,url"`
	// Timeout is the maximum duration for a single HTTP request.
	Timeout time.Duration `json:"timeout" validate:"min=1ms"`
	// Delay is the fixed pause before every request. Zero disables it.
	Delay     time.Duration `json:"delay" validate:"min=0"`
	UserAgent string        `json:"user_agent"`

	// PageLimit is the page size requested from cursor paginated APIs.
	PageLimit int `json:"page_limit" validate:"min=0"`
	// PageStep and PageCap drive offset paginated APIs.
	PageStep int `json:"page_step" validate:"min=0"`
	PageCap  int `json:"page_cap" validate:"min=0"`

	// APIVersion is the dated API version header, where one is required.
	APIVersion string `json:"api_version"`

	LogLevel string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns a Config initialized with the production endpoint
// and request constants of the specified exchange.
func DefaultConfig(exchange string) *Config {
	c := &Config{
		Exchange:  exchange,
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		LogLevel:  "info",
	}
	switch exchange {
	case ExchangeCoinbase:
		c.BaseURL = "https://api.coinbase.com"
		c.Delay = CoinbaseDelay
		c.PageLimit = CoinbasePageLimit
		c.APIVersion = CoinbaseAPIVersion
	case ExchangeCoinbasePro:
		c.BaseURL = "https://api.pro.coinbase.com"
		c.Delay = CoinbaseDelay
	case ExchangeKraken:
		c.BaseURL = "https://api.kraken.com"
		c.Delay = KrakenDelay
		c.PageStep = KrakenPageStep
		c.PageCap = KrakenPageCap
	}
	return c
}

var validate = validator.New()

// Validate checks the struct tags.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// WithCredentials sets the API credentials and returns the config for chaining.
func (c *Config) WithCredentials(creds *Credentials) *Config {
	c.Credentials = creds
	return c
}

// WithBaseURL points the client at another endpoint, typically a test server.
func (c *Config) WithBaseURL(url string) *Config {
	c.BaseURL = url
	return c
}

// WithTimeout sets the request timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithDelay sets the pre-request delay and returns the config for chaining.
func (c *Config) WithDelay(delay time.Duration) *Config {
	c.Delay = delay
	return c
}

// WithPaging sets the offset pagination step and cap.
func (c *Config) WithPaging(step, ceiling int) *Config {
	c.PageStep = step
	c.PageCap = ceiling
	return c
}
