package client

import (
	"net/http"
	"time"
)

// Option configures a Client. Zero or invalid values leave the default in
// place.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport client, including its
// timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each attempt. Building an analysis fetches several
// grids upstream, so the default is five minutes.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			return
		}
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithAPIKey sends the key as a bearer token, for deployments behind an
// authenticating gateway.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

func WithLogger(l Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRetryMax sets how many times a 429 or 5xx answer is retried. Zero
// disables retries.
func WithRetryMax(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retryMax = n
		}
	}
}

// WithRetryWait sets the backoff window. ceiling is ignored unless floor is
// positive and ceiling >= floor.
func WithRetryWait(floor, ceiling time.Duration) Option {
	return func(c *Client) {
		if floor <= 0 {
			return
		}
		c.retryWaitMin = floor
		if ceiling >= floor {
			c.retryWaitMax = ceiling
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

//Personal.AI order the ending
