package coinbase

import (
	"context"
	"iter"
	"net/url"
	"strconv"

	"ledger/pkg/core"
	"ledger/pkg/exchange"
)

// Cursor is the continuation state between two pages. Next returns a new
// cursor and never modifies the receiver.
type Cursor struct {
	StartingAfter string
	Before        bool
	Done          bool
}

// StartCursor returns the cursor for the first page of query. A caller
// supplied ending_before bound limits the walk to a single page.
func StartCursor(query url.Values) Cursor {
	return Cursor{Before: query.Has("ending_before")}
}

// Next derives the cursor for the page following page. The CB-AFTER
// header wins over pagination.next_starting_after in the body.
func (c Cursor) Next(page *core.Page, normalizer *Normalizer) Cursor {
	if c.Before || normalizer.empty(page) {
		return Cursor{Done: true}
	}
	after := page.Header.Get("CB-AFTER")
	if after == "" {
		after = normalizer.nextStartingAfter(page)
	}
	if after == "" {
		return Cursor{Done: true}
	}
	return Cursor{StartingAfter: after}
}

// Apply returns query with the cursor's continuation and the page limit
// set.
func (c Cursor) Apply(query url.Values, limit int) url.Values {
	q := make(url.Values, len(query)+2)
	for k, v := range query {
		q[k] = append([]string(nil), v...)
	}
	if limit > 0 && !q.Has("limit") {
		q.Set("limit", strconv.Itoa(limit))
	}
	if c.StartingAfter != "" {
		q.Set("starting_after", c.StartingAfter)
	}
	return q
}

// Paginator walks starting_after paginated endpoints.
type Paginator struct {
	transport  exchange.Transport
	signer     core.Signer
	normalizer *Normalizer
	limit      int
}

// NewPaginator follows starting_after cursors, asking for limit records a page.
func NewPaginator(transport exchange.Transport, signer core.Signer, normalizer *Normalizer, limit int) *Paginator {
	return &Paginator{transport: transport, signer: signer, normalizer: normalizer, limit: limit}
}

// Pages lazily yields every page of path whose data array is non-empty.
// A failed page ends the sequence with its error. The sequence consumes
// its cursor and cannot be restarted.
func (p *Paginator) Pages(ctx context.Context, path string, query url.Values) iter.Seq2[*core.Page, error] {
	cursor := StartCursor(query)
	return func(yield func(*core.Page, error) bool) {
		for !cursor.Done {
			page, err := p.transport.Get(ctx, path, cursor.Apply(query, p.limit), p.signer)
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
			if p.normalizer.empty(page) {
				cursor = Cursor{Done: true}
				return
			}
			cursor = cursor.Next(page, p.normalizer)
			if !yield(page, nil) {
				return
			}
		}
	}
}
