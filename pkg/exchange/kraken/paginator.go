package kraken

import (
	"context"
	"iter"
	"net/url"
	"strconv"

	"ledger/pkg/core"
	"ledger/pkg/exchange"
)

// Offset is the position of an offset walk. Next returns a new value and
// never modifies the receiver.
type Offset struct {
	Ofs  int
	Step int
	Cap  int
}

// StartOffset returns the first position of a walk. A non-positive step
// requests a single page.
func StartOffset(step, ceiling int) Offset {
	return Offset{Step: step, Cap: ceiling}
}

// Next returns the offset one step further.
func (o Offset) Next() Offset {
	if o.Step <= 0 {
		return Offset{Ofs: o.Cap, Step: o.Step, Cap: o.Cap}
	}
	return Offset{Ofs: o.Ofs + o.Step, Step: o.Step, Cap: o.Cap}
}

// Done reports whether the offset reached the cap.
func (o Offset) Done() bool {
	return o.Ofs >= o.Cap
}

// Apply returns form with ofs set.
func (o Offset) Apply(form url.Values) url.Values {
	out := make(url.Values, len(form)+1)
	for k, v := range form {
		out[k] = append([]string(nil), v...)
	}
	out.Set("ofs", strconv.Itoa(o.Ofs))
	return out
}

// Paginator walks ofs paginated private endpoints.
type Paginator struct {
	transport  exchange.Transport
	signer     *Signer
	normalizer *Normalizer
	step       int
	ceiling    int
}

// NewPaginator walks offsets from 0 to ceiling in increments of step.
func NewPaginator(transport exchange.Transport, signer *Signer, normalizer *Normalizer, step, ceiling int) *Paginator {
	return &Paginator{
		transport:  transport,
		signer:     signer,
		normalizer: normalizer,
		step:       step,
		ceiling:    ceiling,
	}
}

// Pages lazily yields every page of path whose result.<key> is non-empty.
// A failed page ends the sequence with its error. The sequence consumes
// its offset and cannot be restarted.
func (p *Paginator) Pages(ctx context.Context, path string, form url.Values, key string) iter.Seq2[*core.Page, error] {
	offset := StartOffset(p.step, p.ceiling)
	return func(yield func(*core.Page, error) bool) {
		for !offset.Done() {
			page, err := p.transport.Post(ctx, path, p.signer.Stamp(offset.Apply(form)), p.signer)
			if err != nil {
				offset = offset.exhausted()
				yield(nil, err)
				return
			}
			if err := p.normalizer.Error(page); err != nil {
				offset = offset.exhausted()
				yield(nil, err)
				return
			}
			if p.normalizer.empty(page, key) {
				offset = offset.exhausted()
				return
			}
			offset = offset.Next()
			if !yield(page, nil) {
				return
			}
		}
	}
}

func (o Offset) exhausted() Offset {
	return Offset{Ofs: o.Cap, Step: o.Step, Cap: o.Cap}
}
