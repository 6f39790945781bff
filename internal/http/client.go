package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"ledger/internal/ratelimit"
	"ledger/pkg/core"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// Client issues throttled, optionally signed requests against one
// exchange and returns raw pages. It never retries.
type Client struct {
	client   *resty.Client
	throttle *ratelimit.Throttle
	exchange string
	logger   zerolog.Logger
	mu       sync.RWMutex
	closed   bool
}

type Config struct {
	Exchange  string            `validate:"required"`
	BaseURL   string            `validate:"required,url"`
	Timeout   time.Duration     `validate:"min=1ms"`
	Delay     time.Duration     `validate:"min=0"`
	UserAgent string            `validate:"omitempty"`
	Headers   map[string]string `validate:"omitempty"`
}

var validate = validator.New()

func NewClient(config *Config, logger zerolog.Logger) (*Client, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	client := resty.New()
	client.SetBaseURL(config.BaseURL)
	client.SetTimeout(config.Timeout)
	client.SetRetryCount(0)
	client.AddContentTypeEncoder(contentTypeJSON, func(w io.Writer, v any) error {
		data, err := sonic.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
	client.AddContentTypeDecoder(contentTypeJSON, func(r io.Reader, v any) error {
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		return sonic.Unmarshal(data, v)
	})

	if config.UserAgent != "" {
		client.SetHeader("User-Agent", config.UserAgent)
	}
	for k, v := range config.Headers {
		client.SetHeader(k, v)
	}

	logger = logger.With().Str("exchange", config.Exchange).Logger()

	client.AddRequestMiddleware(func(_ *resty.Client, req *resty.Request) error {
		logger.Debug().
			Str("method", req.Method).
			Str("url", req.URL).
			Msg("http request")
		return nil
	})

	client.AddResponseMiddleware(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug().
			Str("method", resp.Request.Method).
			Str("url", resp.Request.URL).
			Int("status", resp.StatusCode()).
			Int("size", len(resp.Bytes())).
			Msg("http response")
		return nil
	})

	return &Client{
		client:   client,
		throttle: ratelimit.New(config.Delay),
		exchange: config.Exchange,
		logger:   logger,
	}, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.client.Close()
}

// Throttle exposes the pre-request delay for inspection.
func (c *Client) Throttle() *ratelimit.Throttle {
	return c.throttle
}

// Do encodes the body, signs the final request when signer is non-nil,
// waits out the throttle delay and performs the round trip. A non-2xx
// status is not an error at this layer; transport failures are.
func (c *Client) Do(ctx context.Context, req *core.Request, signer core.Signer) (*core.Page, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, core.ErrClientClosed
	}

	contentType, err := encodeBody(req)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}

	var signed map[string]string
	if signer != nil {
		if signed, err = signer.Sign(req); err != nil {
			return nil, err
		}
	}

	if err := c.throttle.Wait(ctx); err != nil {
		return nil, core.NewTransportError(c.exchange, err)
	}

	r := c.client.R().SetContext(ctx)
	r.SetHeader("Accept", contentTypeJSON)
	if contentType != "" {
		r.SetHeader("Content-Type", contentType)
		r.SetBody(req.Payload)
	}
	r.SetHeaders(req.Headers)
	r.SetHeaders(signed)

	resp, err := r.Execute(req.Method, req.RequestPath())
	if err != nil {
		return nil, core.NewTransportError(c.exchange, err)
	}

	return &core.Page{
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Bytes(),
	}, nil
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, signer core.Signer) (*core.Page, error) {
	return c.Do(ctx, core.NewRequest(http.MethodGet, path).SetQueryParams(query), signer)
}

func (c *Client) Post(ctx context.Context, path string, body any, signer core.Signer) (*core.Page, error) {
	return c.Do(ctx, core.NewRequest(http.MethodPost, path).SetBody(body), signer)
}

func (c *Client) Put(ctx context.Context, path string, body any, signer core.Signer) (*core.Page, error) {
	return c.Do(ctx, core.NewRequest(http.MethodPut, path).SetBody(body), signer)
}

func (c *Client) Delete(ctx context.Context, path string, query url.Values, signer core.Signer) (*core.Page, error) {
	return c.Do(ctx, core.NewRequest(http.MethodDelete, path).SetQueryParams(query), signer)
}

// encodeBody fills req.Payload with the exact bytes to send.
func encodeBody(req *core.Request) (string, error) {
	switch body := req.Body.(type) {
	case nil:
		req.Payload = nil
		return "", nil
	case url.Values:
		req.Payload = []byte(body.Encode())
		return contentTypeForm, nil
	case []byte:
		req.Payload = body
		return contentTypeJSON, nil
	default:
		data, err := sonic.Marshal(body)
		if err != nil {
			return "", err
		}
		req.Payload = data
		return contentTypeJSON, nil
	}
}
