package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"sync"
	"sync/atomic"
	"time"

	"bmi-client/internal/bmi"
	"bmi-client/internal/observability"

	"go.uber.org/zap"
)

const (
	contentType  = "application/json; utf-8"
	maxBodyBytes = 1 << 20
)

// RawResponse is the body returned by the service.
type RawResponse struct {
	Body       string
	StatusCode int
	// ErrorBody is set when the status was not 2xx; the body then usually
	// carries the service's error detail.
	ErrorBody bool
}

// DialContextFunc opens the TCP connection for a request.
type DialContextFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Client performs one JSON POST per call on a connection it owns.
type Client struct {
	dial DialContextFunc
}

// Option configures a Client.
type Option func(*Client)

// WithDialer replaces the TCP dialer.
func WithDialer(dial DialContextFunc) Option {
	return func(c *Client) { c.dial = dial }
}

// New builds a Client.
func New(opts ...Option) *Client {
	d := &net.Dialer{KeepAlive: -1}
	c := &Client{dial: d.DialContext}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Post sends payload to endpoint and returns the response body.
//
// connectTimeout bounds establishing the TCP connection; readTimeout bounds
// everything after it, up to the last byte of the body. Non-2xx bodies are
// returned with ErrorBody set rather than as errors. Bodies over 1 MiB fail
// with ErrResponseTooLarge instead of being truncated. Every failure is a
// *RequestError and the connection is closed before Post returns.
func (c *Client) Post(ctx context.Context, endpoint string, payload bmi.RequestPayload, connectTimeout, readTimeout time.Duration) (resp RawResponse, err error) {
	const op = "client.post"

	defer func() {
		if r := recover(); r != nil {
			resp = RawResponse{}
			err = &RequestError{Op: op, Kind: KindTransport, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	logger := observability.LoggerWithTrace(ctx)

	body, err := json.Marshal(payload)
	if err != nil {
		return RawResponse{}, &RequestError{Op: op, Kind: KindTransport, Err: fmt.Errorf("encode payload: %w", err)}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rt := newReadTimer(readTimeout, cancel)
	defer rt.stop()

	trace := &httptrace.ClientTrace{
		GotConn: func(httptrace.GotConnInfo) { rt.start() },
	}

	req, err := http.NewRequestWithContext(httptrace.WithClientTrace(ctx, trace), http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return RawResponse{}, &RequestError{Op: op, Kind: KindTransport, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	tr := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		DialContext:       c.dialWithTimeout(connectTimeout),
		DisableKeepAlives: true,
	}
	defer tr.CloseIdleConnections()

	hc := &http.Client{Transport: observability.NewTransport(tr)}

	start := time.Now()
	res, err := hc.Do(req)
	if err != nil {
		rerr := classify(op, err, rt.expired())
		logger.Debug("request failed", zap.String("kind", string(rerr.Kind)), zap.Error(err))
		return RawResponse{}, rerr
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes+1))
	if err != nil {
		rerr := classify(op, err, rt.expired())
		logger.Debug("reading response failed", zap.String("kind", string(rerr.Kind)), zap.Error(err))
		return RawResponse{}, rerr
	}
	if len(data) > maxBodyBytes {
		logger.Debug("response over size cap", zap.Int("status", res.StatusCode), zap.Int("limit_bytes", maxBodyBytes))
		return RawResponse{}, &RequestError{
			Op:   op,
			Kind: KindTransport,
			Err:  fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, maxBodyBytes),
		}
	}

	logger.Debug("response received",
		zap.Int("status", res.StatusCode),
		zap.Int("body_bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)

	if len(bytes.TrimSpace(data)) == 0 {
		return RawResponse{}, &RequestError{
			Op:   op,
			Kind: KindNoBody,
			Err:  fmt.Errorf("status %d: %w", res.StatusCode, ErrNoBody),
		}
	}

	return RawResponse{
		Body:       string(data),
		StatusCode: res.StatusCode,
		ErrorBody:  res.StatusCode < 200 || res.StatusCode > 299,
	}, nil
}

func (c *Client) dialWithTimeout(timeout time.Duration) DialContextFunc {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		dctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		conn, err := c.dial(dctx, network, addr)
		if err != nil && errors.Is(dctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, fmt.Errorf("dial %s after %s: %w", addr, timeout, errConnectTimeout)
		}
		return conn, err
	}
}

func classify(op string, err error, readExpired bool) *RequestError {
	switch {
	case errors.Is(err, errConnectTimeout):
		return &RequestError{Op: op, Kind: KindConnectTimeout, Err: err}
	case readExpired:
		return &RequestError{Op: op, Kind: KindReadTimeout, Err: err}
	default:
		return &RequestError{Op: op, Kind: KindTransport, Err: err}
	}
}

// readTimer cancels the request once readTimeout has passed since the
// connection was established.
type readTimer struct {
	timeout time.Duration
	cancel  context.CancelFunc

	mu    sync.Mutex
	timer *time.Timer
	fired atomic.Bool
}

func newReadTimer(timeout time.Duration, cancel context.CancelFunc) *readTimer {
	return &readTimer{timeout: timeout, cancel: cancel}
}

func (t *readTimer) start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		return
	}
	t.timer = time.AfterFunc(t.timeout, func() {
		t.fired.Store(true)
		t.cancel()
	})
}

func (t *readTimer) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *readTimer) expired() bool {
	return t.fired.Load()
}
