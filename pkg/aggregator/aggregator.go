package aggregator

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/rs/zerolog"

	"ledger/pkg/core"
	"ledger/pkg/session"
)

// Aggregator fans read operations out to several exchange sessions and
// combines the normalized results.
type Aggregator struct {
	mu         sync.RWMutex
	sessions   map[string]*session.Session
	logger     zerolog.Logger
	lastUpdate time.Time
}

func NewAggregator() *Aggregator {
	return NewAggregatorWithLogger(zerolog.Nop())
}

func NewAggregatorWithLogger(logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		sessions: make(map[string]*session.Session),
		logger:   logger,
	}
}

func (a *Aggregator) AddSession(name string, sess *session.Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions[name] = sess
}

func (a *Aggregator) RemoveSession(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, name)
}

// Sessions returns the registered names, sorted.
func (a *Aggregator) Sessions() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, 0, len(a.sessions))
	for name := range a.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LastUpdate returns when a fan-out last completed.
func (a *Aggregator) LastUpdate() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastUpdate
}

// Close closes every session and forgets them.
func (a *Aggregator) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var firstErr error
	for name, sess := range a.sessions {
		if err := sess.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", name, err)
		}
	}
	clear(a.sessions)
	return firstErr
}

type result[T any] struct {
	Exchange string
	Value    T
	Err      error
}

// fanOut runs fn against every session concurrently. Results are sorted by
// session name.
func fanOut[T any](ctx context.Context, a *Aggregator, fn func(context.Context, *session.Session) (T, error)) []result[T] {
	a.mu.RLock()
	sessions := make(map[string]*session.Session, len(a.sessions))
	maps.Copy(sessions, a.sessions)
	a.mu.RUnlock()

	resultChan := make(chan result[T], len(sessions))
	var wg sync.WaitGroup

	for name, sess := range sessions {
		wg.Add(1)
		go func(name string, s *session.Session) {
			defer wg.Done()

			r := result[T]{Exchange: name}
			if err := ctx.Err(); err != nil {
				r.Err = err
				resultChan <- r
				return
			}
			r.Value, r.Err = fn(ctx, s)
			resultChan <- r
		}(name, sess)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]result[T], 0, len(sessions))
	for r := range resultChan {
		if r.Err != nil {
			a.logger.Debug().Err(r.Err).Str("exchange", r.Exchange).Msg("fan-out failed")
		}
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Exchange < results[j].Exchange })

	a.mu.Lock()
	a.lastUpdate = time.Now()
	a.mu.Unlock()

	return results
}

type PriceResult struct {
	Exchange string      `json:"exchange"`
	Price    *core.Price `json:"price,omitempty"`
	Error    error       `json:"-"`
}

// Prices quotes productID on every session. Product names are passed
// through unchanged, so every session must know the same name.
func (a *Aggregator) Prices(ctx context.Context, productID string) []PriceResult {
	results := fanOut(ctx, a, func(ctx context.Context, s *session.Session) (*core.Price, error) {
		client, err := s.Client()
		if err != nil {
			return nil, err
		}
		return client.Price(ctx, productID)
	})

	out := make([]PriceResult, 0, len(results))
	for _, r := range results {
		out = append(out, PriceResult{Exchange: r.Exchange, Price: r.Value, Error: r.Err})
	}
	return out
}

type BestPrice struct {
	Product       string      `json:"product"`
	Bid           apd.Decimal `json:"bid"`
	Ask           apd.Decimal `json:"ask"`
	BidExchange   string      `json:"bid_exchange"`
	AskExchange   string      `json:"ask_exchange"`
	Spread        apd.Decimal `json:"spread"`
	SpreadPercent apd.Decimal `json:"spread_percent"`
}

// BestPrice picks the highest bid and the lowest ask across sessions.
// Quotes that fail or carry unparseable prices are skipped.
func (a *Aggregator) BestPrice(ctx context.Context, productID string) (*BestPrice, error) {
	best := &BestPrice{Product: productID}
	hasBid, hasAsk := false, false

	for _, r := range a.Prices(ctx, productID) {
		if r.Error != nil || r.Price == nil {
			continue
		}
		if bid, _, err := apd.NewFromString(r.Price.Bid); err == nil && (!hasBid || bid.Cmp(&best.Bid) > 0) {
			best.Bid.Set(bid)
			best.BidExchange = r.Exchange
			hasBid = true
		}
		if ask, _, err := apd.NewFromString(r.Price.Ask); err == nil && (!hasAsk || ask.Cmp(&best.Ask) < 0) {
			best.Ask.Set(ask)
			best.AskExchange = r.Exchange
			hasAsk = true
		}
	}

	if !hasBid || !hasAsk {
		return nil, fmt.Errorf("no valid quote available for product: %s", productID)
	}

	if _, err := apd.BaseContext.Sub(&best.Spread, &best.Ask, &best.Bid); err != nil {
		return nil, fmt.Errorf("calculate spread: %w", err)
	}
	if !best.Bid.IsZero() {
		ctx := apd.BaseContext.WithPrecision(16)
		var hundred apd.Decimal
		hundred.SetInt64(100)
		if _, err := ctx.Mul(&best.SpreadPercent, &best.Spread, &hundred); err != nil {
			return nil, fmt.Errorf("calculate spread percent multiply: %w", err)
		}
		if _, err := ctx.Quo(&best.SpreadPercent, &best.SpreadPercent, &best.Bid); err != nil {
			return nil, fmt.Errorf("calculate spread percent divide: %w", err)
		}
	}
	return best, nil
}

// Holding is the total balance of one currency across exchanges.
type Holding struct {
	Currency  string            `json:"currency"`
	Total     string            `json:"total"`
	Exchanges map[string]string `json:"exchanges"`
}

type Portfolio struct {
	Holdings []Holding        `json:"holdings"`
	Errors   map[string]error `json:"-"`
}

// Portfolio lists accounts on every session and sums balances per
// currency. A failing session is reported in Errors, the others still
// contribute.
func (a *Aggregator) Portfolio(ctx context.Context) (*Portfolio, error) {
	results := fanOut(ctx, a, func(ctx context.Context, s *session.Session) ([]core.Account, error) {
		client, err := s.Client()
		if err != nil {
			return nil, err
		}
		return client.Accounts(ctx)
	})

	totals := make(map[string]*apd.Decimal)
	holdings := make(map[string]*Holding)
	portfolio := &Portfolio{}

	for _, r := range results {
		if r.Err != nil {
			if portfolio.Errors == nil {
				portfolio.Errors = make(map[string]error)
			}
			portfolio.Errors[r.Exchange] = r.Err
		}
		for _, account := range r.Value {
			balance, _, err := apd.NewFromString(account.Balance)
			if err != nil {
				a.logger.Warn().Str("exchange", r.Exchange).Str("currency", account.Name).
					Str("balance", account.Balance).Msg("skip unparseable balance")
				continue
			}
			total, ok := totals[account.Name]
			if !ok {
				total = new(apd.Decimal)
				totals[account.Name] = total
				holdings[account.Name] = &Holding{Currency: account.Name, Exchanges: make(map[string]string)}
			}
			if _, err := apd.BaseContext.Add(total, total, balance); err != nil {
				return nil, fmt.Errorf("sum %s: %w", account.Name, err)
			}
			holdings[account.Name].Exchanges[r.Exchange] = account.Balance
		}
	}

	portfolio.Holdings = make([]Holding, 0, len(holdings))
	for currency, h := range holdings {
		h.Total = totals[currency].Text('f')
		portfolio.Holdings = append(portfolio.Holdings, *h)
	}
	sort.Slice(portfolio.Holdings, func(i, j int) bool {
		return portfolio.Holdings[i].Currency < portfolio.Holdings[j].Currency
	})

	if len(portfolio.Holdings) == 0 && len(portfolio.Errors) == len(results) && len(results) > 0 {
		return portfolio, fmt.Errorf("no exchange returned accounts")
	}
	return portfolio, nil
}
