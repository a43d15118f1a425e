package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	fhttpcookiejar "github.com/bogdanfinn/fhttp/cookiejar"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/jimezsa/feedfollow/internal/models"
)

var (
	ErrRequestFailed = errors.New("request failed")
	ErrBodyTooLarge  = errors.New("response body too large")
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 8 << 20
)

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Client fetches pages and feeds with a browser TLS fingerprint. It is safe
// for concurrent use; with a rotator, requests are serialized because the
// proxy is a property of the underlying client.
type Client struct {
	http       tls_client.HttpClient
	rotator    *Rotator
	userAgents []string

	proxyMu sync.Mutex
}

func NewClient(rotator *Rotator, cfg models.FetchConfig) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	jar, _ := fhttpcookiejar.New(nil)
	httpClient, err := tls_client.NewHttpClient(
		tls_client.NewNoopLogger(),
		tls_client.WithClientProfile(profiles.Chrome_120),
		tls_client.WithTimeoutSeconds(int(timeout/time.Second)),
		tls_client.WithCookieJar(jar),
	)
	if err != nil {
		return nil, err
	}

	c := &Client{http: httpClient, rotator: rotator, userAgents: defaultUserAgents}
	if len(cfg.UserAgents) > 0 {
		c.userAgents = append([]string(nil), cfg.UserAgents...)
	}
	return c, nil
}

// Do sends req through the next usable proxy, if any, and reports the status
// back to the rotator.
func (c *Client) Do(req *fhttp.Request) (*fhttp.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgents[rand.IntN(len(c.userAgents))])
	}
	if c.rotator == nil || c.rotator.Len() == 0 {
		return c.http.Do(req)
	}

	c.proxyMu.Lock()
	defer c.proxyMu.Unlock()
	proxy, err := c.rotator.Next()
	if err != nil {
		return nil, err
	}
	if err := c.http.SetProxy(proxy.String()); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrInvalidProxy, proxy.Redacted(), err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	c.rotator.Report(proxy, resp.StatusCode)
	return resp, nil
}

// Fetch GETs target and returns the body. Statuses >= 400 and bodies over
// maxBodyBytes are errors.
func (c *Client) Fetch(ctx context.Context, target string, accept string) ([]byte, error) {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if accept != "" {
		req.Header.Set("accept", accept)
	}
	req.Header.Set("accept-language", "en-US,en;q=0.9")

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: %s: http %d", ErrRequestFailed, target, resp.StatusCode)
	}
	return readBody(resp.Body, target, maxBodyBytes)
}

func readBody(r io.Reader, target string, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, target, limit)
	}
	return body, nil
}
