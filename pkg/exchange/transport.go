package exchange

import (
	"context"
	"iter"
	"net/url"

	"ledger/pkg/core"
)

// Transport is the request surface exchange clients depend on. It is
// satisfied by *internal/http.Client.
type Transport interface {
	Do(ctx context.Context, req *core.Request, signer core.Signer) (*core.Page, error)
	Get(ctx context.Context, path string, query url.Values, signer core.Signer) (*core.Page, error)
	Post(ctx context.Context, path string, body any, signer core.Signer) (*core.Page, error)
	Close() error
}

// Collect drains a page sequence through normalize. When a page fails,
// the records gathered from earlier pages are returned with the error.
func Collect[T any](pages iter.Seq2[*core.Page, error], normalize func(*core.Page) ([]T, error)) ([]T, error) {
	out := []T{}
	for page, err := range pages {
		if err != nil {
			return out, err
		}
		records, err := normalize(page)
		if err != nil {
			return out, err
		}
		out = append(out, records...)
	}
	return out, nil
}
