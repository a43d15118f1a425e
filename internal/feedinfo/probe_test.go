package feedinfo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title> Example Blog </title>
  <link>https://blog.example/</link>
  <description>Notes   and
  essays</description>
  <item><title>One</title><link>https://blog.example/1</link></item>
  <item><title>Two</title><link>https://blog.example/2</link></item>
</channel>
</rss>`

const atomBody = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Example</title>
  <link href="https://atom.example/"/>
  <updated>2024-01-01T00:00:00Z</updated>
  <id>urn:uuid:1</id>
</feed>`

type fakeFetcher struct {
	bodies map[string]string
	calls  *int
}

func (f fakeFetcher) Fetch(_ context.Context, target string, _ string) ([]byte, error) {
	if f.calls != nil {
		*f.calls++
	}
	body, ok := f.bodies[target]
	if !ok {
		return nil, errors.New("not found")
	}
	return []byte(body), nil
}

func TestProbe(t *testing.T) {
	prober := NewProber(fakeFetcher{bodies: map[string]string{
		"https://blog.example/rss": rssBody,
		"https://atom.example/":    atomBody,
	}})

	feed, err := prober.Probe(context.Background(), "https://blog.example/rss")
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if feed.Title != "Example Blog" || feed.FeedType != "rss" || feed.Items != 2 {
		t.Fatalf("unexpected feed %+v", feed)
	}
	if feed.Description != "Notes and essays" {
		t.Fatalf("Description = %q", feed.Description)
	}

	atom, err := prober.Probe(context.Background(), "https://atom.example/")
	if err != nil {
		t.Fatalf("Probe(atom) error = %v", err)
	}
	if atom.Title != "Atom Example" || atom.FeedType != "atom" {
		t.Fatalf("unexpected atom feed %+v", atom)
	}
}

func TestParseRejectsNonFeed(t *testing.T) {
	prober := NewProber(fakeFetcher{})
	if _, err := prober.Parse("https://x.example", []byte("<html><body>nope</body></html>")); err == nil {
		t.Fatalf("expected parse error for html page")
	}
}

func TestTitle(t *testing.T) {
	prober := NewProber(fakeFetcher{bodies: map[string]string{"https://blog.example/rss": rssBody}})
	ctx := context.Background()

	cases := []struct {
		feeds []string
		want  string
	}{
		{nil, ""},
		{[]string{"https://blog.example/rss"}, "Subscribe to Example Blog"},
		{[]string{"https://blog.example/rss", "https://x.example"}, "Subscribe to Example Blog and 1 more feed"},
		{[]string{"https://blog.example/rss", "a", "b"}, "Subscribe to Example Blog and 2 more feeds"},
		{[]string{"https://missing.example"}, ""},
	}
	for _, tc := range cases {
		if got := prober.Title(ctx, tc.feeds, zerolog.Nop()); got != tc.want {
			t.Fatalf("Title(%v) = %q, want %q", tc.feeds, got, tc.want)
		}
	}
}

func TestProbeWithCacheFetchesOnce(t *testing.T) {
	calls := 0
	prober := NewProber(fakeFetcher{
		bodies: map[string]string{"https://blog.example/rss": rssBody},
		calls:  &calls,
	}).WithCache(time.Minute)

	for i := 0; i < 3; i++ {
		feed, err := prober.Probe(context.Background(), "https://blog.example/rss")
		if err != nil {
			t.Fatalf("Probe() error = %v", err)
		}
		if feed.Title != "Example Blog" {
			t.Fatalf("Title = %q", feed.Title)
		}
	}
	if calls != 1 {
		t.Fatalf("fetches = %d, want 1", calls)
	}

	for i := 0; i < 2; i++ {
		if _, err := prober.Probe(context.Background(), "https://missing.example/rss"); err == nil {
			t.Fatalf("Probe() error = nil, want error")
		}
	}
	if calls != 3 {
		t.Fatalf("fetches = %d, want failures retried", calls)
	}
}
