package stream

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"ledger/internal/ws"
	"ledger/pkg/core"
)

// TickerStream subscribes to the ticker channel of one exchange and
// publishes every quote on Tickers.
type TickerStream struct {
	config Config
	codec  Codec
	conn   *ws.Client
	clock  core.Clock
	logger zerolog.Logger

	mu        sync.RWMutex
	err       error
	tickers   chan core.Ticker
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewTickerStream builds a stream for exchange. config.URL defaults to
// the exchange's production feed. No I/O is performed.
func NewTickerStream(exchange string, config Config, logger zerolog.Logger) (*TickerStream, error) {
	codec, url, err := CodecFor(exchange)
	if err != nil {
		return nil, err
	}
	if config.URL == "" {
		config.URL = url
	}
	return NewTickerStreamWithCodec(codec, config, logger), nil
}

func NewTickerStreamWithCodec(codec Codec, config Config, logger zerolog.Logger) *TickerStream {
	if config.BufferSize == 0 {
		config.BufferSize = 100
	}
	return &TickerStream{
		config: config,
		codec:  codec,
		conn: ws.NewClient(ws.Config{
			URL:          config.URL,
			PingInterval: config.PingInterval,
			PongWait:     config.PongWait,
			BufferSize:   config.BufferSize,
		}, logger),
		clock:   core.SystemClock,
		logger:  logger,
		tickers: make(chan core.Ticker, config.BufferSize),
	}
}

// SetClock replaces the clock used for quotes without an upstream time.
func (s *TickerStream) SetClock(clock core.Clock) {
	s.clock = clock
}

// Connect opens the feed and sends the subscription.
func (s *TickerStream) Connect(ctx context.Context) error {
	if len(s.config.Products) == 0 {
		return fmt.Errorf("no products to subscribe")
	}
	if err := s.conn.Connect(ctx); err != nil {
		return err
	}
	if err := s.conn.SendJSON(s.codec.Subscribe(s.config.Products)); err != nil {
		_ = s.conn.Close()
		s.closeTickers()
		return fmt.Errorf("subscribe: %w", err)
	}
	s.logger.Info().Strs("products", s.config.Products).Msg("ticker stream subscribed")

	s.wg.Go(s.pump)
	return nil
}

func (s *TickerStream) pump() {
	defer s.closeTickers()
	for data := range s.conn.Messages() {
		tickers, err := s.codec.Parse(data, s.clock())
		if err != nil {
			s.setErr(err)
			s.logger.Warn().Err(err).Msg("dropping ticker message")
			continue
		}
		for _, t := range tickers {
			select {
			case s.tickers <- t:
			default:
				s.logger.Warn().Str("product", t.Product).Msg("ticker buffer full, dropping quote")
			}
		}
	}
	if err := s.conn.Err(); err != nil {
		s.setErr(err)
	}
}

// Tickers is closed when the feed ends or the stream is closed.
func (s *TickerStream) Tickers() <-chan core.Ticker {
	return s.tickers
}

// Err returns the last upstream or decode error seen by the stream.
func (s *TickerStream) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *TickerStream) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *TickerStream) State() ConnState {
	return s.conn.State()
}

// Close ends the feed. It is idempotent.
func (s *TickerStream) Close() error {
	err := s.conn.Close()
	s.wg.Wait()
	s.closeTickers()
	return err
}

func (s *TickerStream) closeTickers() {
	s.closeOnce.Do(func() {
		close(s.tickers)
	})
}

var _ Stream = (*TickerStream)(nil)
