package order

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"ledger/pkg/core"
)

// Builder provides a fluent interface for order parameters. It
// accumulates the first parse error and reports it on Build.
//
// Example:
//
//	params, err := order.NewBuilder("BTC-USD").
//	    Buy().
//	    Limit().
//	    Price("50000").
//	    Size("0.001").
//	    Build(core.ExchangeCoinbasePro)
type Builder struct {
	product   string
	side      string
	orderType string
	price     *apd.Decimal
	size      *apd.Decimal
	extra     core.Params
	err       error
}

const (
	SideBuy  = "buy"
	SideSell = "sell"

	TypeLimit  = "limit"
	TypeMarket = "market"
)

// NewBuilder starts a limit order for product.
func NewBuilder(product string) *Builder {
	return &Builder{product: product, orderType: TypeLimit}
}

func (b *Builder) Side(side string) *Builder {
	b.side = strings.ToLower(side)
	return b
}

func (b *Builder) Buy() *Builder  { return b.Side(SideBuy) }
func (b *Builder) Sell() *Builder { return b.Side(SideSell) }

func (b *Builder) Type(orderType string) *Builder {
	b.orderType = strings.ToLower(orderType)
	return b
}

func (b *Builder) Limit() *Builder  { return b.Type(TypeLimit) }
func (b *Builder) Market() *Builder { return b.Type(TypeMarket) }

// Price sets the limit price. An empty string leaves it unset.
func (b *Builder) Price(price string) *Builder {
	if b.err != nil || price == "" {
		return b
	}
	d, _, err := apd.NewFromString(price)
	if err != nil {
		b.err = fmt.Errorf("parse price: %w", err)
		return b
	}
	b.price = d
	return b
}

func (b *Builder) Size(size string) *Builder {
	if b.err != nil {
		return b
	}
	d, _, err := apd.NewFromString(size)
	if err != nil {
		b.err = fmt.Errorf("parse size: %w", err)
		return b
	}
	b.size = d
	return b
}

// Set adds an exchange-specific parameter sent as is.
func (b *Builder) Set(key string, value any) *Builder {
	if b.extra == nil {
		b.extra = core.Params{}
	}
	b.extra[key] = value
	return b
}

// Build validates the order and spells it the way exchange expects.
func (b *Builder) Build(exchange string) (core.Params, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := b.validate(); err != nil {
		return nil, err
	}

	size := b.size.Text('f')
	var params core.Params
	switch exchange {
	case core.ExchangeCoinbasePro:
		params = core.Params{"product_id": b.product, "side": b.side, "type": b.orderType, "size": size}
	case core.ExchangeKraken:
		params = core.Params{"pair": b.product, "type": b.side, "ordertype": b.orderType, "volume": size}
	case core.ExchangeCoinbase:
		// Buys and sells on an account take an amount of its currency;
		// the price is decided by the exchange.
		base, _, _ := strings.Cut(b.product, "-")
		params = core.Params{"product_id": b.product, "side": b.side, "amount": size, "currency": base}
	default:
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedExchange, exchange)
	}
	if b.price != nil && exchange != core.ExchangeCoinbase {
		params["price"] = b.price.Text('f')
	}
	for k, v := range b.extra {
		params[k] = v
	}
	return params, nil
}

func (b *Builder) validate() error {
	if b.product == "" {
		return errors.New("product is required")
	}
	if b.side != SideBuy && b.side != SideSell {
		return fmt.Errorf("invalid order side %q", b.side)
	}
	if b.orderType != TypeLimit && b.orderType != TypeMarket {
		return fmt.Errorf("invalid order type %q", b.orderType)
	}
	if b.size == nil || b.size.Sign() <= 0 {
		return errors.New("size must be positive")
	}
	if b.orderType == TypeLimit && (b.price == nil || b.price.Sign() <= 0) {
		return errors.New("price must be positive for limit orders")
	}
	return nil
}
