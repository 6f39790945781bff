package coinbasepro

import (
	"context"
	"iter"
	"net/url"

	"ledger/pkg/core"
	"ledger/pkg/exchange"
)

// Cursor is the continuation state between two pages. It is a value:
// Next returns a new cursor and never modifies the receiver.
type Cursor struct {
	After  string
	Before bool
	Done   bool
}

// StartCursor returns the cursor for the first page of query. A caller
// supplied before bound limits the walk to a single page.
func StartCursor(query url.Values) Cursor {
	return Cursor{Before: query.Has("before")}
}

// Next derives the cursor for the page following page.
func (c Cursor) Next(page *core.Page) Cursor {
	if c.Before || page.Empty() {
		return Cursor{Done: true}
	}
	after := page.Header.Get("CB-AFTER")
	if after == "" {
		return Cursor{Done: true}
	}
	return Cursor{After: after}
}

// Apply returns query with the cursor's continuation set.
func (c Cursor) Apply(query url.Values) url.Values {
	q := make(url.Values, len(query)+1)
	for k, v := range query {
		q[k] = append([]string(nil), v...)
	}
	if c.After != "" {
		q.Set("after", c.After)
	}
	return q
}

// Paginator walks CB-AFTER paginated endpoints.
type Paginator struct {
	transport  exchange.Transport
	signer     core.Signer
	normalizer *Normalizer
}

// NewPaginator follows CB-AFTER cursors. signer may be nil for public paths.
func NewPaginator(transport exchange.Transport, signer core.Signer, normalizer *Normalizer) *Paginator {
	return &Paginator{transport: transport, signer: signer, normalizer: normalizer}
}

// Pages lazily yields every non-empty page of path. A failed page ends
// the sequence with its error; earlier pages stay valid. The sequence
// consumes its cursor and cannot be restarted.
func (p *Paginator) Pages(ctx context.Context, path string, query url.Values) iter.Seq2[*core.Page, error] {
	cursor := StartCursor(query)
	return func(yield func(*core.Page, error) bool) {
		for !cursor.Done {
			page, err := p.transport.Get(ctx, path, cursor.Apply(query), p.signer)
			if err != nil {
				cursor = Cursor{Done: true}
				yield(nil, err)
				return
			}
			if err := p.normalizer.Error(page); err != nil {
				cursor = Cursor{Done: true}
				yield(nil, err)
				return
			}
			if page.Empty() {
				cursor = Cursor{Done: true}
				return
			}
			cursor = cursor.Next(page)
			if !yield(page, nil) {
				return
			}
		}
	}
}
