package gateway

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultListTimeout      = 3 * time.Second
	DefaultCallTimeout      = 10 * time.Second
	DefaultMaxResponseBytes = 32 << 20
	defaultUserAgent        = "mcpgw"
)

// Option represents a client option
type Option func(c *Client)

// WithHTTPClient sets base http client, its transport is wrapped with bearer auth
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.base = client
	}
}

// WithListTimeout sets tools listing timeout
func WithListTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.listTimeout = timeout
		}
	}
}

// WithCallTimeout sets tool execution timeout
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithMaxResponseBytes caps the accepted response body size
func WithMaxResponseBytes(limit int64) Option {
	return func(c *Client) {
		if limit > 0 {
			c.maxResponseBytes = limit
		}
	}
}

// WithLogger sets logger
func WithLogger(logger *logrus.Entry) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUserAgent sets User-Agent header
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		c.userAgent = agent
	}
}
