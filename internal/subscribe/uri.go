package subscribe

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	DefaultScheme = "feed"
	followPath    = "follow?"
)

var ErrNotFollowURI = errors.New("not a follow uri")

// BuildURIs resolves each feed against location and wraps it as
// <scheme>://follow?<absolute-url>. Order is preserved.
func BuildURIs(location *url.URL, scheme string, feeds []string) []string {
	return FollowURIs(scheme, ResolveFeeds(location, feeds))
}

// ResolveFeeds makes every feed absolute against location. Resolution never
// fails: input that url.Parse rejects is repaired or passed through, and a
// relative feed without a location stays relative.
func ResolveFeeds(location *url.URL, feeds []string) []string {
	resolved := make([]string, 0, len(feeds))
	for _, feed := range feeds {
		resolved = append(resolved, resolve(location, feed))
	}
	return resolved
}

// FollowURIs wraps already absolute feed URLs.
func FollowURIs(scheme string, feeds []string) []string {
	if scheme == "" {
		scheme = DefaultScheme
	}
	uris := make([]string, 0, len(feeds))
	for _, feed := range feeds {
		uris = append(uris, scheme+"://"+followPath+feed)
	}
	return uris
}

func resolve(location *url.URL, feed string) string {
	raw := strings.TrimSpace(feed)
	ref, err := url.Parse(raw)
	if err != nil {
		ref, err = url.Parse(escapeStray(raw))
	}
	if err != nil {
		if location == nil || strings.Contains(raw, "://") {
			return raw
		}
		ref = &url.URL{Path: raw}
	}
	if location == nil {
		return ref.String()
	}
	return location.ResolveReference(ref).String()
}

// escapeStray percent-encodes what browsers tolerate but url.Parse refuses:
// a '%' not starting an escape, spaces and control bytes.
func escapeStray(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '%' && (i+2 >= len(raw) || !isHex(raw[i+1]) || !isHex(raw[i+2])):
			b.WriteString("%25")
		case c <= ' ' || c == 0x7f:
			fmt.Fprintf(&b, "%%%02X", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// ParseFollowURI returns the feed URL embedded in a follow URI of the given
// scheme. An empty scheme accepts any.
func ParseFollowURI(scheme string, uri string) (string, error) {
	name, rest, ok := strings.Cut(strings.TrimSpace(uri), "://")
	if !ok || (scheme != "" && !strings.EqualFold(name, scheme)) {
		return "", fmt.Errorf("%w: %q", ErrNotFollowURI, uri)
	}
	feed, ok := strings.CutPrefix(rest, followPath)
	if !ok || feed == "" {
		return "", fmt.Errorf("%w: %q", ErrNotFollowURI, uri)
	}
	return feed, nil
}
