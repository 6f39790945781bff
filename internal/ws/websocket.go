// Package ws is a single-use websocket connection that delivers every
// inbound text frame on a channel.
package ws

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/lxzan/gws"
	"github.com/rs/zerolog"

	"ledger/pkg/core"
)

// Config holds the connection settings.
type Config struct {
	// URL is the websocket endpoint, for example wss://ws.kraken.com.
	URL string
	// Header is sent with the upgrade request.
	Header http.Header
	// PingInterval plus PongWait bounds how long the connection may stay
	// silent before it is considered dead.
	PingInterval time.Duration
	PongWait     time.Duration
	// BufferSize is the capacity of the message channel. Messages arriving
	// while it is full are dropped.
	BufferSize int
}

func (c Config) withDefaults() Config {
	if c.PingInterval == 0 {
		c.PingInterval = 10 * time.Second
	}
	if c.PongWait == 0 {
		c.PongWait = 20 * time.Second
	}
	if c.BufferSize == 0 {
		c.BufferSize = 100
	}
	return c
}

// Client is one websocket connection. It does not reconnect: when the
// upstream goes away Messages is closed and Err reports why.
type Client struct {
	config Config
	state  *State
	logger zerolog.Logger

	mu        sync.RWMutex
	conn      *gws.Conn
	err       error
	messages  chan []byte
	connected chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type handler struct {
	client *Client
}

func NewClient(config Config, logger zerolog.Logger) *Client {
	config = config.withDefaults()
	c := &Client{
		config:    config,
		state:     &State{},
		logger:    logger.With().Str("url", config.URL).Logger(),
		messages:  make(chan []byte, config.BufferSize),
		connected: make(chan struct{}),
	}
	c.state.Store(StateDisconnected)
	return c
}

func (h *handler) deadline(socket *gws.Conn) {
	_ = socket.SetDeadline(time.Now().Add(h.client.config.PingInterval + h.client.config.PongWait))
}

func (h *handler) OnOpen(socket *gws.Conn) {
	h.client.state.CompareAndSwap(StateConnecting, StateConnected)
	close(h.client.connected)
	h.client.logger.Debug().Msg("websocket connected")
	h.deadline(socket)
}

func (h *handler) OnClose(socket *gws.Conn, err error) {
	h.client.mu.Lock()
	if h.client.err == nil && h.client.state.Load() != StateClosed {
		h.client.err = err
	}
	h.client.mu.Unlock()
	h.client.state.CompareAndSwap(StateConnected, StateDisconnected)
	h.client.logger.Debug().Err(err).Msg("websocket disconnected")
	h.client.closeMessages()
}

func (h *handler) OnPing(socket *gws.Conn, payload []byte) {
	h.deadline(socket)
	_ = socket.WritePong(payload)
}

func (h *handler) OnPong(socket *gws.Conn, payload []byte) {
	h.deadline(socket)
}

func (h *handler) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()
	h.deadline(socket)

	// The frame buffer is recycled once the message is closed.
	data := append([]byte(nil), message.Bytes()...)
	if len(data) == 0 {
		return
	}
	select {
	case h.client.messages <- data:
	default:
		h.client.logger.Warn().Int("bytes", len(data)).Msg("message buffer full, dropping message")
	}
}

// Connect dials the endpoint and starts reading. It returns once the
// connection is open or ctx is done.
func (c *Client) Connect(ctx context.Context) error {
	if !c.state.CompareAndSwap(StateDisconnected, StateConnecting) {
		return fmt.Errorf("invalid state for connect: %s", c.state.Load())
	}

	socket, _, err := gws.NewClient(&handler{client: c}, &gws.ClientOption{
		Addr:          c.config.URL,
		RequestHeader: c.config.Header,
	})
	if err != nil {
		c.state.Store(StateDisconnected)
		return fmt.Errorf("connect websocket: %w", err)
	}

	c.mu.Lock()
	c.conn = socket
	c.mu.Unlock()

	c.wg.Go(socket.ReadLoop)

	select {
	case <-c.connected:
		return nil
	case <-ctx.Done():
		_ = socket.NetConn().Close()
		c.state.Store(StateDisconnected)
		return ctx.Err()
	}
}

// Messages delivers each inbound frame. It is closed when the connection
// ends.
func (c *Client) Messages() <-chan []byte {
	return c.messages
}

// Err returns the error that ended the connection, nil after Close.
func (c *Client) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

func (c *Client) State() ConnState {
	return c.state.Load()
}

// WriteMessage sends a text frame.
func (c *Client) WriteMessage(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.conn == nil || c.state.Load() != StateConnected {
		return core.ErrNotConnected
	}
	return c.conn.WriteMessage(gws.OpcodeText, data)
}

// SendJSON marshals v with sonic and sends it as a text frame.
func (c *Client) SendJSON(v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return c.WriteMessage(data)
}

// Close shuts the connection down and waits for the read loop to exit.
// It is idempotent.
func (c *Client) Close() error {
	previous := c.state.Load()
	if previous == StateClosed || !c.state.CompareAndSwap(previous, StateClosed) {
		return nil
	}

	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn != nil {
		_ = conn.WriteClose(1000, nil)
		_ = conn.NetConn().Close()
	}
	c.wg.Wait()
	c.closeMessages()
	return nil
}

func (c *Client) closeMessages() {
	c.closeOnce.Do(func() {
		close(c.messages)
	})
}
