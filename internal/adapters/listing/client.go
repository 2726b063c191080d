// Package listing provides the HTTP client the browse engine fetches
// apartment pages through. Every fetch goes via the response cache: a
// fresh cache hit skips the network entirely, a network failure falls
// back to a stale entry for the same request when one exists
package listing

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"flathunt/internal/core/catalog"
	"flathunt/internal/platform/cache"
	perr "flathunt/internal/platform/errors"
	"flathunt/internal/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultTimeout = 10 * time.Second
	defaultUA      = "flathunt-browse"

	// Path is the listing endpoint the client pages through
	Path = "/api/v1/apartments"

	// responses stay small (limit caps at 100 records) but cap reads anyway
	maxBody = 4 << 20
)

// Options configures the Client
type Options struct {
	// BaseURL is the API origin, e.g. http://localhost:4000
	BaseURL string

	UserAgent string
	Timeout   time.Duration
}

// Client fetches listing pages. Safe for concurrent use
type Client struct {
	http  *http.Client
	base  string
	ua    string
	cache *cache.Cache
	log   logger.Logger
}

// New creates a Client. c may be nil to fetch uncached (tests, one-shots)
func New(o Options, c *cache.Cache) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		base:  strings.TrimRight(o.BaseURL, "/"),
		ua:    o.UserAgent,
		cache: c,
		log:   *logger.Named("listing-client"),
	}
}

// Fetch returns one page of apartments for the given filters and window.
// The cache is consulted first; a fresh hit never touches the network.
// On a miss the live response is cached on success. A transient failure
// is retried once; when the retry fails too and a stale entry exists for
// the same request, the stale page is returned instead of the error
func (c *Client) Fetch(ctx context.Context, p catalog.FilterParams, pg catalog.PaginationParams) (catalog.ApartmentListResponse, error) {
	v := url.Values{}
	pg.QueryValues(v)
	p.QueryValues(v)
	key := cache.RequestKey(Path, v)

	if c.cache != nil {
		if body, ok := c.cache.Get(ctx, key); ok {
			if resp, err := decodePage(body); err == nil {
				return resp, nil
			}
			// undecodable entry: fall through to the network
		}
	}

	body, err := c.get(ctx, Path+"?"+v.Encode())
	if err != nil && perr.IsRetryable(err) && ctx.Err() == nil {
		c.log.Debug().Err(err).Str("key", key).Msg("transient fetch failure, retrying once")
		body, err = c.get(ctx, Path+"?"+v.Encode())
	}
	if err != nil {
		// stale fallback only covers transport and server failures; a 4xx
		// means the server answered and the caller should hear about it
		if c.cache != nil && perr.IsRetryable(err) {
			if stale, ok := c.cache.GetStale(key); ok {
				if resp, derr := decodePage(stale); derr == nil {
					c.log.Warn().Err(err).Str("key", key).Msg("live fetch failed, serving stale page")
					return resp, nil
				}
			}
		}
		return catalog.ApartmentListResponse{}, err
	}

	resp, err := decodePage(body)
	if err != nil {
		return catalog.ApartmentListResponse{}, err
	}
	if c.cache != nil {
		c.cache.Put(ctx, key, body)
	}
	return resp, nil
}

// get performs one GET against the API and returns the raw body.
// Transport failures come back as unavailable errors; non-2xx statuses
// are mapped back through the platform wire codes
func (c *Client) get(ctx context.Context, pathAndQuery string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+pathAndQuery, nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "listing request build failed")
	}
	req.Header.Set("User-Agent", c.ua)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "listing fetch failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "listing body read failed")
	}

	c.log.Debug().
		Str("path", pathAndQuery).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("listing http response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, wireError(resp.StatusCode, body)
	}
	return body, nil
}

func decodePage(b []byte) (catalog.ApartmentListResponse, error) {
	var out catalog.ApartmentListResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return out, perr.Wrapf(err, perr.ErrorCodeJSON, "listing response decode failed")
	}
	return out, nil
}

// wireError rebuilds a platform error from an error envelope. Bodies that
// are not an envelope degrade to a generic message with the status code
func wireError(status int, body []byte) error {
	var env struct {
		Code  perr.ErrorCode `json:"code"`
		Error string         `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err == nil && env.Error != "" {
		return perr.New(env.Code, env.Error)
	}
	code := perr.ErrorCodeUnavailable
	if status >= 400 && status < 500 {
		code = perr.ErrorCodeInvalidArgument
	}
	return perr.Newf(code, "listing endpoint returned status %d", status)
}
