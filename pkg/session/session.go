// Package session scopes an exchange client to a unit of work: the client
// is opened, used and closed exactly once.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ledger/pkg/core"
	"ledger/pkg/exchange"
	"ledger/pkg/exchange/factory"
)

// State represents the lifecycle state of a Session.
type State int

const (
	// StateActive indicates a session that is ready to process requests.
	StateActive State = iota
	// StateClosed indicates a session that has been shut down and can no longer be used.
	StateClosed
)

// String returns the string representation of the State.
func (s State) String() string {
	names := [...]string{"ACTIVE", "CLOSED"}
	if s < 0 || int(s) >= len(names) {
		return "UNKNOWN"
	}
	return names[s]
}

// Session owns one exchange client. Sessions are safe for concurrent use.
type Session struct {
	mu        sync.RWMutex
	config    *core.Config
	client    exchange.Client
	logger    zerolog.Logger
	state     State
	createdAt time.Time
	lastUsed  time.Time
	closeErr  error
}

// New builds the client selected by config. No I/O is performed.
func New(config *core.Config, opts ...exchange.Option) (*Session, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	client, err := factory.New(config, opts...)
	if err != nil {
		return nil, err
	}
	return Wrap(config, client, exchange.ApplyOptions(opts...).Logger), nil
}

// Wrap scopes an existing client.
func Wrap(config *core.Config, client exchange.Client, logger zerolog.Logger) *Session {
	now := time.Now()
	return &Session{
		config:    config,
		client:    client,
		logger:    logger.With().Str("exchange", client.Name()).Logger(),
		createdAt: now,
		lastUsed:  now,
	}
}

// Run opens a session for config, passes it to fn and closes it when fn
// returns. The close error is joined with fn's error.
func Run(ctx context.Context, config *core.Config, fn func(context.Context, *Session) error, opts ...exchange.Option) error {
	s, err := New(config, opts...)
	if err != nil {
		return err
	}
	runErr := fn(ctx, s)
	return errors.Join(runErr, s.Close())
}

// Client returns the underlying client, or ErrClientClosed after Close.
func (s *Session) Client() (exchange.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return nil, core.ErrClientClosed
	}
	s.lastUsed = time.Now()
	return s.client, nil
}

// Do executes op against the exchange. history, deposits, withdrawals and
// price read the product from params["product_id"]; order sends params
// as is.
func (s *Session) Do(ctx context.Context, op core.Operation, params core.Params) (any, error) {
	client, err := s.Client()
	if err != nil {
		return nil, err
	}
	product := params.String("product_id")
	s.logger.Debug().Str("op", op.String()).Str("product", product).Msg("do")

	switch op {
	case core.OpProducts:
		return client.Products(ctx)
	case core.OpAccounts:
		return client.Accounts(ctx)
	case core.OpHistory:
		return client.History(ctx, product)
	case core.OpDeposits:
		return client.Deposits(ctx, product)
	case core.OpWithdrawals:
		return client.Withdrawals(ctx, product)
	case core.OpPrice:
		return client.Price(ctx, product)
	case core.OpOrder:
		return client.Order(ctx, params)
	}
	return nil, fmt.Errorf("unknown operation %d", op)
}

// Close closes the client once. Later calls return the first result.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return s.closeErr
	}
	s.state = StateClosed
	s.closeErr = s.client.Close()
	s.logger.Debug().Dur("age", time.Since(s.createdAt)).Msg("session closed")
	return s.closeErr
}

// State returns the current lifecycle state of the session.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Config returns the configuration used to create the session.
func (s *Session) Config() *core.Config {
	return s.config
}

// CreatedAt returns the timestamp when the session was created.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// LastUsed returns the timestamp of the last operation.
func (s *Session) LastUsed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUsed
}
