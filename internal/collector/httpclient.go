package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"TickerLens/internal/logger"
	"TickerLens/internal/metrics"
)

// HTTPOptions configures the outbound client shared by the HTTP fetchers.
type HTTPOptions struct {
	Timeout        time.Duration
	ProxyURL       string
	RequestsPerSec float64
	Burst          int
	MaxRetries     int
	RetryInitial   time.Duration
	RetryMaxWait   time.Duration
	UserAgent      string
}

// StatusError is a non-200 response from a provider.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, body)
}

// Temporary reports whether retrying the request may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// httpClient wraps http.Client with a rate limiter and exponential-backoff retry.
type httpClient struct {
	client  *http.Client
	limiter *rate.Limiter
	opts    HTTPOptions
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func newHTTPClient(opts HTTPOptions, m *metrics.Metrics) *httpClient {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 5
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryInitial == 0 {
		opts.RetryInitial = 500 * time.Millisecond
	}
	if opts.RetryMaxWait == 0 {
		opts.RetryMaxWait = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0"
	}

	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if opts.ProxyURL != "" {
		if u, err := url.Parse(opts.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &httpClient{
		client:  &http.Client{Timeout: opts.Timeout, Transport: transport},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.Burst),
		opts:    opts,
		metrics: m,
		logger:  logger.Component("http_client"),
	}
}

// get performs a GET and returns the body of a 200 response. Network errors,
// 429 and 5xx are retried; any other status fails immediately.
func (c *httpClient) get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	var body []byte
	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response body: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			statusErr := &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
			if statusErr.Temporary() {
				return statusErr
			}
			return backoff.Permanent(statusErr)
		}
		body = data
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.opts.RetryInitial
	b.MaxElapsedTime = c.opts.RetryMaxWait
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.opts.MaxRetries)), ctx)

	notify := func(err error, wait time.Duration) {
		c.metrics.IncRetry()
		c.logger.Debug().Err(err).Dur("wait", wait).Str("url", redact(rawURL)).Msg("Retrying request")
	}
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, err
	}
	return body, nil
}

// redact strips the query string, which may carry API keys.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = ""
	return u.String()
}
