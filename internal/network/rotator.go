package network

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
)

var (
	ErrNoProxies    = errors.New("no proxies available")
	ErrInvalidProxy = errors.New("invalid proxy")
)

// Rotator hands out proxies round robin and benches the ones a feed host
// throttled for banDuration.
type Rotator struct {
	proxies     []*url.URL
	banDuration time.Duration
	benched     map[string]time.Time
	next        int
	mu          sync.Mutex
}

func NewRotator(raw []string, banDuration time.Duration) (*Rotator, error) {
	r := &Rotator{
		banDuration: banDuration,
		benched:     map[string]time.Time{},
	}
	for _, entry := range raw {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		proxy, err := url.Parse(entry)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidProxy, entry, err)
		}
		if proxy.Host == "" {
			return nil, fmt.Errorf("%w %q: missing host", ErrInvalidProxy, entry)
		}
		r.proxies = append(r.proxies, proxy)
	}
	return r, nil
}

// Len reports the number of configured proxies, benched ones included.
func (r *Rotator) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.proxies)
}

func (r *Rotator) Next() (*url.URL, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for range r.proxies {
		proxy := r.proxies[r.next]
		r.next = (r.next + 1) % len(r.proxies)
		if !r.benchedAt(proxy, now) {
			return proxy, nil
		}
	}
	return nil, ErrNoProxies
}

// Report benches proxy when status says the host is throttling it.
func (r *Rotator) Report(proxy *url.URL, status int) {
	if proxy == nil || !throttled(status) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.benched[proxy.String()] = time.Now().Add(r.banDuration)
}

func (r *Rotator) benchedAt(proxy *url.URL, now time.Time) bool {
	until, ok := r.benched[proxy.String()]
	if !ok {
		return false
	}
	if now.After(until) {
		delete(r.benched, proxy.String())
		return false
	}
	return true
}

func throttled(status int) bool {
	switch status {
	case fhttp.StatusForbidden, fhttp.StatusTooManyRequests, fhttp.StatusServiceUnavailable:
		return true
	}
	return false
}
