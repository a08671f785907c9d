package twitter

import (
	"fmt"
	"log/slog"

	"github.com/alitto/pond/v2"
)

// Client fetches search pages in the background and delivers parsed posts.
type Client struct {
	transport  Transport
	pool       pond.Pool
	dispatcher Dispatcher
	serial     *serialDispatcher
	cfg        ClientConfig
}

// NewClient creates a fully-wired search client.
//
// Transport selection: cfg.Transport if set, else OAuth1-signed requests when
// cfg.OAuth1 is complete, else the stealth transport with cfg.BearerToken.
func NewClient(cfg ClientConfig) (*Client, error) {
	cfg.defaults()

	t := cfg.Transport
	switch {
	case t != nil:
	case cfg.OAuth1.Complete():
		t = NewOAuth1Transport(cfg.BaseURL, cfg.OAuth1)
		slog.Debug("using OAuth1 transport")
	default:
		st, err := NewStealthTransport(cfg)
		if err != nil {
			return nil, fmt.Errorf("default transport: %w", err)
		}
		t = st
	}

	c := &Client{
		transport:  t,
		pool:       pond.NewPool(cfg.MaxConcurrentFetches),
		dispatcher: cfg.Dispatcher,
		cfg:        cfg,
	}
	if c.dispatcher == nil {
		c.serial = newSerialDispatcher()
		c.dispatcher = c.serial
	}
	return c, nil
}

// Close waits for in-flight fetches and their callbacks, then releases the
// worker pool. Fetch fails once the client is closed.
//
// Close must not be called synchronously from a completion callback: it
// waits for that very callback to return. Call it from a new goroutine
// instead.
func (c *Client) Close() {
	c.pool.StopAndWait()
	if c.serial != nil {
		c.serial.Close()
	}
}

// recordFetch calls the metrics hook if configured.
func (c *Client) recordFetch(endpoint string, posts int, success bool) {
	if c.cfg.MetricsHook != nil {
		c.cfg.MetricsHook(endpoint, posts, success)
	}
}
