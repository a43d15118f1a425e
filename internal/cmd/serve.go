package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/jimezsa/feedfollow/internal/feedinfo"
	"github.com/jimezsa/feedfollow/internal/readers"
	"github.com/jimezsa/feedfollow/internal/server"
	"github.com/jimezsa/feedfollow/internal/watch"
)

type ServeCmd struct {
	Listen   string        `help:"Listen address (defaults to the configured one)."`
	Probe    bool          `help:"Fetch the first feed of each request and name the dialog after it."`
	ProbeTTL time.Duration `help:"How long probed feed titles are cached." default:"10m"`
	Watch    bool          `help:"Reload readers when the --page file changes."`
	PageOptions
}

func (c *ServeCmd) Run(ctx *Context) error {
	registry := readers.NewRegistry(readers.NewMemoryStore())

	partial, err := readers.PartialFromMap(nonEmpty(ctx.Config.Readers))
	if err != nil {
		return fmt.Errorf("config readers: %w", err)
	}
	registry.SetRecommendedReaders(partial)
	if c.Page != "" {
		if err := c.seed(ctx, registry); err != nil {
			return err
		}
	}

	opts := server.Options{
		Scheme:   ctx.Config.Scheme,
		Registry: registry,
		Logger:   ctx.Logger,
	}
	if c.Probe {
		fetcher, err := newFetcher(c.PageOptions)
		if err != nil {
			return err
		}
		opts.Titler = feedinfo.NewProber(fetcher).WithCache(c.ProbeTTL).TitlerFor(ctx.Logger)
	}

	runCtx, stop := signal.NotifyContext(ctx.context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if c.Watch {
		if c.Page == "" || isRemote(c.Page) {
			return fmt.Errorf("--watch needs a local --page file")
		}
		watcher := watch.NewFile(c.Page, watch.DefaultDebounce, ctx.Logger)
		go func() {
			err := watcher.Run(runCtx, func() {
				if err := c.seed(ctx, registry); err != nil {
					ctx.Logger.Warn().Err(err).Str("page", c.Page).Msg("reload readers")
					return
				}
				ctx.Logger.Info().Str("page", c.Page).Msg("readers reloaded")
			})
			if err != nil {
				ctx.Logger.Error().Err(err).Str("page", c.Page).Msg("watch page")
			}
		}()
	}

	addr := firstNonEmpty(c.Listen, ctx.Config.Listen)
	ctx.UI.Infof("Serving on http://%s", addr)
	return server.New(opts).ListenAndServe(runCtx, addr)
}

// seed merges the readers meta tag of --page into registry. Platforms the
// page leaves empty keep their current value.
func (c *ServeCmd) seed(ctx *Context, registry *readers.Registry) error {
	doc, err := loadPage(ctx, c.PageOptions)
	if err != nil {
		return err
	}
	value, ok := doc.MetaStore(ctx.Config.MetaName).Lookup()
	if !ok {
		return nil
	}
	fromPage := readers.Parse(value)
	partial := readers.Partial{}
	for _, platform := range readers.Platforms {
		if url := fromPage.Get(platform); url != "" {
			partial[platform] = url
		}
	}
	registry.SetRecommendedReaders(partial)
	return nil
}
