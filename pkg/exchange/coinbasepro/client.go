package coinbasepro

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	httpClient "ledger/internal/http"
	"ledger/pkg/core"
	"ledger/pkg/exchange"
)

// Name is the exchange identifier.
const Name = core.ExchangeCoinbasePro

// Client implements exchange.Client for Coinbase Pro.
type Client struct {
	config     *core.Config
	transport  exchange.Transport
	signer     *Signer
	paginator  *Paginator
	normalizer *Normalizer
	logger     zerolog.Logger
}

var _ exchange.Client = (*Client)(nil)

// New creates a Client. It performs no I/O.
func New(config *core.Config, opts ...exchange.Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	options := exchange.ApplyOptions(opts...)

	transport, err := httpClient.NewClient(&httpClient.Config{
		Exchange:  Name,
		BaseURL:   config.BaseURL,
		Timeout:   config.Timeout,
		Delay:     config.Delay,
		UserAgent: config.UserAgent,
	}, options.Logger)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	signer := NewSigner(config.Credentials, options.Clock)
	normalizer := NewNormalizer()
	return &Client{
		config:     config,
		transport:  transport,
		signer:     signer,
		paginator:  NewPaginator(transport, signer, normalizer),
		normalizer: normalizer,
		logger:     options.Logger.With().Str("exchange", Name).Logger(),
	}, nil
}

// Name returns the exchange identifier "coinbasepro".
func (c *Client) Name() string {
	return Name
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.transport.Close()
}

// public signs when credentials are configured; public endpoints accept
// unsigned requests.
func (c *Client) public() core.Signer {
	if c.config.Credentials == nil {
		return nil
	}
	return c.signer
}

// Products lists the tradable products.
func (c *Client) Products(ctx context.Context) ([]core.Product, error) {
	page, err := c.transport.Get(ctx, "/products", nil, c.public())
	if err != nil {
		return nil, err
	}
	return c.normalizer.Products(page)
}

// Accounts returns the currencies with a positive available balance.
func (c *Client) Accounts(ctx context.Context) ([]core.Account, error) {
	page, err := c.transport.Get(ctx, "/accounts", nil, c.signer)
	if err != nil {
		return nil, err
	}
	return c.normalizer.Accounts(page)
}

// History returns the fills of productID. The exchange scopes fills by
// the product_id parameter, no client side filtering is applied.
func (c *Client) History(ctx context.Context, productID string) ([]core.Fill, error) {
	pages := c.paginator.Pages(ctx, "/fills", url.Values{"product_id": {productID}})
	fills, err := exchange.Collect(pages, c.normalizer.Fills)
	c.logger.Debug().Str("op", core.OpHistory.String()).Str("product", productID).Int("records", len(fills)).Msg("collected")
	return fills, err
}

// Deposits returns the deposits into accounts of the product's base currency.
func (c *Client) Deposits(ctx context.Context, productID string) ([]core.Transfer, error) {
	return c.transfers(ctx, core.TransferDeposit, productID)
}

// Withdrawals returns the withdrawals from accounts of the product's base
// currency.
func (c *Client) Withdrawals(ctx context.Context, productID string) ([]core.Transfer, error) {
	return c.transfers(ctx, core.TransferWithdrawal, productID)
}

func (c *Client) transfers(ctx context.Context, kind core.TransferType, productID string) ([]core.Transfer, error) {
	transferType := "deposit"
	if kind == core.TransferWithdrawal {
		transferType = "withdraw"
	}

	transfers, err := exchange.Collect(
		c.paginator.Pages(ctx, "/transfers", url.Values{"type": {transferType}}),
		c.normalizer.transfers,
	)
	if err != nil && len(transfers) == 0 {
		return nil, err
	}

	accounts, accErr := exchange.Collect(
		c.paginator.Pages(ctx, "/accounts", nil),
		c.normalizer.accounts,
	)
	if accErr != nil && len(accounts) == 0 {
		return nil, accErr
	}
	if err == nil {
		err = accErr
	}

	out := c.normalizer.Transfers(transfers, accounts, productID)
	c.logger.Debug().
		Str("op", core.TransferOperation(kind).String()).
		Str("product", productID).
		Int("records", len(out)).
		Msg("collected")
	return out, err
}

// Price quotes the product ticker.
func (c *Client) Price(ctx context.Context, productID string) (*core.Price, error) {
	page, err := c.transport.Get(ctx, "/products/"+url.PathEscape(productID)+"/ticker", nil, c.public())
	if err != nil {
		return nil, err
	}
	return c.normalizer.Price(page)
}

// Order places an order described by data, which is sent as the JSON
// body of POST /orders. A client_oid is generated when absent.
func (c *Client) Order(ctx context.Context, data core.Params) (*core.Order, error) {
	body := make(map[string]any, len(data)+1)
	for k, v := range data {
		body[k] = v
	}
	if _, ok := body["client_oid"]; !ok {
		body["client_oid"] = uuid.NewString()
	}

	page, err := c.transport.Post(ctx, "/orders", body, c.signer)
	if err != nil {
		return nil, err
	}
	return c.normalizer.Order(page)
}
