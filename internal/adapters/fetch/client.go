// Package fetch downloads the HTML of a public page for detection
package fetch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"cmsradar/internal/core/version"
	"cmsradar/internal/platform/config"
	perr "cmsradar/internal/platform/errors"
	"cmsradar/internal/platform/logger"

	"golang.org/x/net/html/charset"
)

const (
	defaultTimeout   = 15 * time.Second
	defaultMaxBytes  = 5 << 20
	defaultMaxRetry  = 2
	defaultRetryBase = 500 * time.Millisecond
	maxBackoff       = 10 * time.Second
	maxRedirects     = 10
)

// Options configures the Client
type Options struct {
	Timeout   time.Duration
	MaxBytes  int64
	UserAgent string

	// retries cover transport errors and 429, 502, 503, 504
	// a Retry-After above maxBackoff ends the fetch
	MaxRetries int
	RetryBase  time.Duration
}

// FromConfig reads CORE_FETCH_*
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_FETCH_")
	return Options{
		Timeout:    c.MayDuration("TIMEOUT", defaultTimeout),
		MaxBytes:   int64(c.MayPositiveInt("MAX_BYTES", defaultMaxBytes)),
		UserAgent:  c.MayString("USER_AGENT", ""),
		MaxRetries: c.MayInt("MAX_RETRIES", defaultMaxRetry),
		RetryBase:  c.MayDuration("RETRY_BASE", defaultRetryBase),
	}
}

// Page is a fetched document
// an empty Body with a 2xx Status is a real, empty page
type Page struct {
	URL         string        `json:"url"`
	FinalURL    string        `json:"final_url"`
	Status      int           `json:"status"`
	ContentType string        `json:"content_type,omitempty"`
	Body        string        `json:"-"`
	Truncated   bool          `json:"truncated,omitempty"`
	Elapsed     time.Duration `json:"-"`
}

// Client fetches pages with bounded size and retries
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

// NewClient fills defaults and builds a Client
func NewClient(o Options) *Client {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = defaultMaxBytes
	}
	if o.UserAgent == "" {
		o.UserAgent = version.UserAgent()
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &Client{
		http: &http.Client{
			Timeout: o.Timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errors.New("too many redirects")
				}
				return nil
			},
		},
		opts:  o,
		log:   *logger.Named("fetch"),
		now:   time.Now,
		sleep: sleepCtx,
	}
}

// Options returns the effective options
func (c *Client) Options() Options { return c.opts }

// Fetch downloads raw, a bare host is fetched over https
func (c *Client) Fetch(ctx context.Context, raw string) (Page, error) {
	u, err := NormalizeURL(raw)
	if err != nil {
		return Page{}, err
	}

	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return Page{}, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return Page{}, perr.WithField(perr.Wrap(err, perr.ErrorCodeInvalidArgument, "invalid url, check the URL"), "url")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if ctx.Err() != nil {
				return Page{}, ctx.Err()
			}
			if !c.shouldRetry(attempts) {
				return Page{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "failed to fetch page, check the URL")
			}
			back := c.backoff(attempts)
			c.log.Warn().Err(err).Str("url", u).Dur("retry_in", back).Int("attempt", attempts).Msg("fetch transport error retrying")
			if err := c.sleep(ctx, back); err != nil {
				return Page{}, err
			}
			attempts++
			continue
		}

		c.log.Debug().
			Str("url", u).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("fetch response")

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return c.read(u, resp, lat)
		case retryable(resp.StatusCode):
			wait := retryAfter(resp.Header, c.now())
			_ = drainAndClose(resp.Body)
			if !c.shouldRetry(attempts) {
				return Page{}, perr.Newf(perr.ErrorCodeUnavailable, "failed to fetch page, site answered %d, check the URL", resp.StatusCode)
			}
			if wait > maxBackoff {
				return Page{}, perr.Newf(perr.ErrorCodeUnavailable, "failed to fetch page, site asked to retry after %s, check the URL", wait)
			}
			if wait <= 0 {
				wait = c.backoff(attempts)
			}
			c.log.Warn().Str("url", u).Int("status", resp.StatusCode).Dur("retry_in", wait).Msg("fetch transient status retrying")
			if err := c.sleep(ctx, wait); err != nil {
				return Page{}, err
			}
			attempts++
			continue
		default:
			_ = drainAndClose(resp.Body)
			return Page{}, perr.Upstreamf("failed to fetch page, site answered %d, check the URL", resp.StatusCode)
		}
	}
}

// read decodes at most MaxBytes of the body to UTF-8
func (c *Client) read(u string, resp *http.Response, lat time.Duration) (Page, error) {
	defer resp.Body.Close()

	ct := resp.Header.Get("Content-Type")
	lr := &io.LimitedReader{R: resp.Body, N: c.opts.MaxBytes + 1}
	raw, err := io.ReadAll(lr)
	if err != nil {
		return Page{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "failed to fetch page, check the URL")
	}
	truncated := int64(len(raw)) > c.opts.MaxBytes
	if truncated {
		raw = raw[:c.opts.MaxBytes]
	}

	body := string(raw)
	if len(raw) > 0 {
		if dec, err := decode(raw, ct); err == nil {
			body = dec
		}
	}

	final := u
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	return Page{
		URL:         u,
		FinalURL:    final,
		Status:      resp.StatusCode,
		ContentType: ct,
		Body:        body,
		Truncated:   truncated,
		Elapsed:     lat,
	}, nil
}

// decode converts a declared or sniffed charset to UTF-8
func decode(raw []byte, contentType string) (string, error) {
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase << uint(attempt)
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

func (c *Client) shouldRetry(attempt int) bool { return attempt < c.opts.MaxRetries }
