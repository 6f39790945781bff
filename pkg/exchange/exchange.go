package exchange

import (
	"context"

	"ledger/pkg/core"
)

// Client is the uniform operation set every exchange exposes.
//
// Upstream business errors are returned as *core.ExchangeError values
// carrying the raw payload (see core.Payload). List operations that fail
// part way through pagination return the records gathered so far together
// with the error.
type Client interface {
	Name() string

	Products(ctx context.Context) ([]core.Product, error)
	Accounts(ctx context.Context) ([]core.Account, error)
	History(ctx context.Context, productID string) ([]core.Fill, error)
	Deposits(ctx context.Context, productID string) ([]core.Transfer, error)
	Withdrawals(ctx context.Context, productID string) ([]core.Transfer, error)
	Price(ctx context.Context, productID string) (*core.Price, error)
	Order(ctx context.Context, data core.Params) (*core.Order, error)

	Close() error
}
