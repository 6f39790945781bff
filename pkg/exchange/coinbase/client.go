package coinbase

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	httpClient "ledger/internal/http"
	"ledger/pkg/core"
	"ledger/pkg/exchange"
)

// Name is the exchange identifier.
const Name = core.ExchangeCoinbase

// Client implements exchange.Client for the Coinbase v2 API.
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

	limit := config.PageLimit
	if limit <= 0 {
		limit = core.CoinbasePageLimit
	}
	signer := NewSigner(config.Credentials, options.Clock, config.APIVersion)
	normalizer := NewNormalizer()
	return &Client{
		config:     config,
		transport:  transport,
		signer:     signer,
		paginator:  NewPaginator(transport, signer, normalizer, limit),
		normalizer: normalizer,
		logger:     options.Logger.With().Str("exchange", Name).Logger(),
	}, nil
}

// Name returns the exchange identifier "coinbase".
func (c *Client) Name() string {
	return Name
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.transport.Close()
}

func (c *Client) public() core.Signer {
	if c.config.Credentials == nil {
		return nil
	}
	return c.signer
}

// Products lists the currencies known to the exchange.
func (c *Client) Products(ctx context.Context) ([]core.Product, error) {
	page, err := c.transport.Get(ctx, "/v2/currencies", nil, c.public())
	if err != nil {
		return nil, err
	}
	return c.normalizer.Products(page)
}

// Accounts returns the wallets with a positive balance.
func (c *Client) Accounts(ctx context.Context) ([]core.Account, error) {
	return exchange.Collect(c.paginator.Pages(ctx, "/v2/accounts", nil), c.normalizer.Accounts)
}

// account returns the id of the wallet holding the base currency of
// productID, for example BTC for "BTC-USD".
func (c *Client) account(ctx context.Context, productID string) (string, error) {
	base, _, _ := strings.Cut(productID, "-")
	accounts, err := exchange.Collect(c.paginator.Pages(ctx, "/v2/accounts", nil), c.normalizer.accounts)
	for _, a := range accounts {
		if string(a.Currency) == base {
			return a.ID, nil
		}
	}
	if err != nil {
		return "", err
	}
	return "", core.NewExchangeError(Name, core.ErrorTypeNotFound, 0, "no account holds "+base).
		WithCode(core.ErrCodeInvalidSymbol)
}

func accountPath(id, resource string) string {
	return "/v2/accounts/" + url.PathEscape(id) + "/" + resource
}

// History returns the buys followed by the sells of the product's base
// currency wallet.
func (c *Client) History(ctx context.Context, productID string) ([]core.Fill, error) {
	id, err := c.account(ctx, productID)
	if err != nil {
		return nil, err
	}
	fills, err := exchange.Collect(c.paginator.Pages(ctx, accountPath(id, "buys"), nil), c.normalizer.Fills(productID))
	if err == nil {
		var sells []core.Fill
		sells, err = exchange.Collect(c.paginator.Pages(ctx, accountPath(id, "sells"), nil), c.normalizer.Fills(productID))
		fills = append(fills, sells...)
	}
	c.logger.Debug().Str("op", core.OpHistory.String()).Str("product", productID).Int("records", len(fills)).Msg("collected")
	return fills, err
}

// Deposits returns the deposits into the wallet of the product's base currency.
func (c *Client) Deposits(ctx context.Context, productID string) ([]core.Transfer, error) {
	return c.transfers(ctx, "deposits", core.TransferDeposit, productID)
}

// Withdrawals returns the withdrawals from the wallet of the product's base
// currency.
func (c *Client) Withdrawals(ctx context.Context, productID string) ([]core.Transfer, error) {
	return c.transfers(ctx, "withdrawals", core.TransferWithdrawal, productID)
}

func (c *Client) transfers(ctx context.Context, resource string, kind core.TransferType, productID string) ([]core.Transfer, error) {
	id, err := c.account(ctx, productID)
	if err != nil {
		return nil, err
	}
	out, err := exchange.Collect(c.paginator.Pages(ctx, accountPath(id, resource), nil), c.normalizer.Transfers)
	c.logger.Debug().
		Str("op", core.TransferOperation(kind).String()).
		Str("product", productID).
		Int("records", len(out)).
		Msg("collected")
	return out, err
}

// Price quotes the buy price as Ask, the sell price as Bid and the spot
// price as Last.
func (c *Client) Price(ctx context.Context, productID string) (*core.Price, error) {
	quote := func(kind string) (string, error) {
		page, err := c.transport.Get(ctx, "/v2/prices/"+url.PathEscape(productID)+"/"+kind, nil, c.public())
		if err != nil {
			return "", err
		}
		return c.normalizer.Amount(page)
	}

	ask, err := quote("buy")
	if err != nil {
		return nil, err
	}
	bid, err := quote("sell")
	if err != nil {
		return nil, err
	}
	last, err := quote("spot")
	if err != nil {
		return nil, err
	}
	return &core.Price{Bid: bid, Ask: ask, Last: last}, nil
}

// Order places a buy or sell on the wallet of data["product_id"]. The
// side selects the endpoint; every other field except product_id is sent
// as the JSON body.
func (c *Client) Order(ctx context.Context, data core.Params) (*core.Order, error) {
	var resource string
	switch side := data.String("side"); side {
	case "buy":
		resource = "buys"
	case "sell":
		resource = "sells"
	default:
		return nil, core.NewExchangeError(Name, core.ErrorTypeInvalidOrder, 0, fmt.Sprintf("side %q is neither buy nor sell", side)).
			WithCode(core.ErrCodeInvalidOrder)
	}

	productID := data.String("product_id")
	id, err := c.account(ctx, productID)
	if err != nil {
		return nil, err
	}

	body := make(map[string]any, len(data))
	for k, v := range data {
		if k == "side" || k == "product_id" {
			continue
		}
		body[k] = v
	}
	page, err := c.transport.Post(ctx, accountPath(id, resource), body, c.signer)
	if err != nil {
		return nil, err
	}
	return c.normalizer.Order(page)
}
