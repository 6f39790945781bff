package kraken

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"

	httpClient "ledger/internal/http"
	"ledger/pkg/core"
	"ledger/pkg/exchange"
)

// Name is the exchange identifier.
const Name = core.ExchangeKraken

// Client implements exchange.Client for Kraken.
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

	nonce := options.Nonce
	if nonce == nil {
		nonce = NewNonceSource(options.Clock).Next
	}
	step, ceiling := config.PageStep, config.PageCap
	if step <= 0 {
		step = core.KrakenPageStep
	}
	if ceiling <= 0 {
		ceiling = core.KrakenPageCap
	}

	signer := NewSigner(config.Credentials, nonce)
	normalizer := NewNormalizer()
	return &Client{
		config:     config,
		transport:  transport,
		signer:     signer,
		paginator:  NewPaginator(transport, signer, normalizer, step, ceiling),
		normalizer: normalizer,
		logger:     options.Logger.With().Str("exchange", Name).Logger(),
	}, nil
}

// Name returns the exchange identifier "kraken".
func (c *Client) Name() string {
	return Name
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.transport.Close()
}

// private posts a nonce stamped form to a private endpoint.
func (c *Client) private(ctx context.Context, path string, form url.Values) (*core.Page, error) {
	return c.transport.Post(ctx, path, c.signer.Stamp(form), c.signer)
}

// Products lists the tradable asset pairs in upstream order. It is unsigned.
func (c *Client) Products(ctx context.Context) ([]core.Product, error) {
	page, err := c.transport.Get(ctx, "/0/public/AssetPairs", nil, nil)
	if err != nil {
		return nil, err
	}
	return c.normalizer.Products(page)
}

// Accounts returns the assets with a positive balance.
func (c *Client) Accounts(ctx context.Context) ([]core.Account, error) {
	page, err := c.private(ctx, "/0/private/Balance", nil)
	if err != nil {
		return nil, err
	}
	return c.normalizer.Accounts(page)
}

// History returns the trades whose pair equals productID, for example
// "XXBTZUSD".
func (c *Client) History(ctx context.Context, productID string) ([]core.Fill, error) {
	pages := c.paginator.Pages(ctx, "/0/private/TradesHistory", nil, "trades")
	fills, err := exchange.Collect(pages, c.normalizer.Fills(productID))
	c.logger.Debug().Str("op", core.OpHistory.String()).Str("product", productID).Int("records", len(fills)).Msg("collected")
	return fills, err
}

// Deposits returns the ledger deposits of the product's base asset.
func (c *Client) Deposits(ctx context.Context, productID string) ([]core.Transfer, error) {
	return c.transfers(ctx, core.TransferDeposit, productID)
}

// Withdrawals returns the ledger withdrawals of the product's base asset.
func (c *Client) Withdrawals(ctx context.Context, productID string) ([]core.Transfer, error) {
	return c.transfers(ctx, core.TransferWithdrawal, productID)
}

func (c *Client) transfers(ctx context.Context, kind core.TransferType, productID string) ([]core.Transfer, error) {
	pages := c.paginator.Pages(ctx, "/0/private/Ledgers", url.Values{"type": {kind.String()}}, "ledger")
	out, err := exchange.Collect(pages, c.normalizer.Transfers(productID))
	c.logger.Debug().
		Str("op", core.TransferOperation(kind).String()).
		Str("product", productID).
		Int("records", len(out)).
		Msg("collected")
	return out, err
}

// Price quotes bid, ask and last trade closed for a pair. It is unsigned.
func (c *Client) Price(ctx context.Context, productID string) (*core.Price, error) {
	page, err := c.transport.Get(ctx, "/0/public/Ticker", url.Values{"pair": {productID}}, nil)
	if err != nil {
		return nil, err
	}
	return c.normalizer.Price(page, productID)
}

// Order places an order with AddOrder and reads it back with QueryOrders.
// data holds AddOrder fields such as pair, type, ordertype, price and volume.
func (c *Client) Order(ctx context.Context, data core.Params) (*core.Order, error) {
	form := make(url.Values, len(data))
	for k := range data {
		form.Set(k, data.String(k))
	}

	page, err := c.private(ctx, "/0/private/AddOrder", form)
	if err != nil {
		return nil, err
	}
	txid, err := c.normalizer.TxID(page)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().Str("op", core.OpOrder.String()).Str("txid", txid).Msg("order placed")

	page, err = c.private(ctx, "/0/private/QueryOrders", url.Values{"txid": {txid}})
	if err != nil {
		return nil, err
	}
	return c.normalizer.Order(page, txid)
}
