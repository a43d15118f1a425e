package feedinfo

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jimezsa/feedfollow/internal/models"
	"github.com/mmcdole/gofeed"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

const acceptFeeds = "application/rss+xml, application/atom+xml, application/feed+json, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5"

// Fetcher retrieves a feed document.
type Fetcher interface {
	Fetch(ctx context.Context, target string, accept string) ([]byte, error)
}

type Prober struct {
	fetcher Fetcher
	parser  *gofeed.Parser
	cache   *gocache.Cache
}

func NewProber(fetcher Fetcher) *Prober {
	return &Prober{
		fetcher: fetcher,
		parser:  gofeed.NewParser(),
	}
}

// WithCache keeps successful probes for ttl. Failures are not cached.
func (p *Prober) WithCache(ttl time.Duration) *Prober {
	p.cache = gocache.New(ttl, 2*ttl)
	return p
}

// Probe fetches target and reports what kind of feed it is.
func (p *Prober) Probe(ctx context.Context, target string) (models.Feed, error) {
	if p.cache != nil {
		if cached, ok := p.cache.Get(target); ok {
			if feed, ok := cached.(models.Feed); ok {
				return feed, nil
			}
		}
	}

	body, err := p.fetcher.Fetch(ctx, target, acceptFeeds)
	if err != nil {
		return models.Feed{}, err
	}
	feed, err := p.Parse(target, body)
	if err != nil {
		return models.Feed{}, err
	}
	if p.cache != nil {
		p.cache.SetDefault(target, feed)
	}
	return feed, nil
}

func (p *Prober) Parse(target string, body []byte) (models.Feed, error) {
	parsed, err := p.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return models.Feed{}, err
	}
	return models.Feed{
		URL:         target,
		Title:       strings.TrimSpace(parsed.Title),
		Description: strings.Join(strings.Fields(parsed.Description), " "),
		Link:        parsed.Link,
		FeedType:    parsed.FeedType,
		Items:       len(parsed.Items),
	}, nil
}

// Title names a dialog after the feeds: the first feed's title, with a count
// of the others. Probe failures fall back to an empty title.
func (p *Prober) Title(ctx context.Context, feeds []string, logger zerolog.Logger) string {
	if len(feeds) == 0 {
		return ""
	}
	feed, err := p.Probe(ctx, feeds[0])
	if err != nil {
		logger.Debug().Err(err).Str("feed", feeds[0]).Msg("feed probe failed")
		return ""
	}
	if feed.Title == "" {
		return ""
	}
	switch extra := len(feeds) - 1; {
	case extra == 1:
		return fmt.Sprintf("Subscribe to %s and 1 more feed", feed.Title)
	case extra > 1:
		return fmt.Sprintf("Subscribe to %s and %d more feeds", feed.Title, extra)
	}
	return "Subscribe to " + feed.Title
}

// TitlerFor adapts Title to the dialog titler signature.
func (p *Prober) TitlerFor(logger zerolog.Logger) func(ctx context.Context, feeds []string) string {
	return func(ctx context.Context, feeds []string) string {
		return p.Title(ctx, feeds, logger)
	}
}
