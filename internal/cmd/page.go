package cmd

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jimezsa/feedfollow/internal/config"
	"github.com/jimezsa/feedfollow/internal/models"
	"github.com/jimezsa/feedfollow/internal/network"
	"github.com/jimezsa/feedfollow/internal/page"
	"github.com/jimezsa/feedfollow/internal/readers"
)

type PageOptions struct {
	Page     string `help:"HTML page holding the readers meta tag and triggers: file path or http(s) URL."`
	Location string `help:"Page location used to resolve relative feed URLs (defaults to the page URL)."`
	Proxies  string `help:"Comma-separated proxy URLs for fetching." env:"FEEDFOLLOW_PROXIES"`
	Timeout  int    `help:"Fetch timeout in seconds." default:"30"`
}

func isRemote(target string) bool {
	lower := strings.ToLower(strings.TrimSpace(target))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func newFetcher(opts PageOptions) (*network.Client, error) {
	proxies, err := config.LoadProxies(opts.Proxies)
	if err != nil {
		return nil, err
	}

	var rotator *network.Rotator
	if len(proxies) > 0 {
		rotator, err = network.NewRotator(proxies, 10*time.Minute)
		if err != nil {
			return nil, err
		}
	}
	return network.NewClient(rotator, models.FetchConfig{
		Proxies: proxies,
		Timeout: time.Duration(opts.Timeout) * time.Second,
	})
}

// loadPage opens the page named by opts. Without a page a blank one is used
// and seeded with the readers from the config file.
func loadPage(ctx *Context, opts PageOptions) (*page.Document, error) {
	var location *url.URL
	if strings.TrimSpace(opts.Location) != "" {
		parsed, err := url.Parse(opts.Location)
		if err != nil {
			return nil, fmt.Errorf("parse --location: %w", err)
		}
		location = parsed
	}

	target := strings.TrimSpace(opts.Page)
	switch {
	case target == "":
		doc := page.Blank(location)
		partial, err := readers.PartialFromMap(nonEmpty(ctx.Config.Readers))
		if err != nil {
			return nil, fmt.Errorf("config readers: %w", err)
		}
		readers.NewRegistry(doc.MetaStore(ctx.Config.MetaName)).SetRecommendedReaders(partial)
		return doc, nil
	case isRemote(target):
		fetcher, err := newFetcher(opts)
		if err != nil {
			return nil, err
		}
		ctx.Logger.Debug().Str("page", target).Msg("fetching page")
		doc, err := page.Fetch(ctx.context(), fetcher, target, location)
		if err != nil {
			return nil, fmt.Errorf("fetch --page: %w", err)
		}
		return doc, nil
	default:
		doc, err := page.LoadFile(target, location)
		if err != nil {
			return nil, fmt.Errorf("read --page: %w", err)
		}
		return doc, nil
	}
}

func nonEmpty(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for key, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		out[key] = value
	}
	return out
}
