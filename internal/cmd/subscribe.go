package cmd

import (
	"context"
	"fmt"
	"net/url"
	"runtime"
	"time"

	"github.com/jimezsa/feedfollow/internal/browser"
	"github.com/jimezsa/feedfollow/internal/feedinfo"
	"github.com/jimezsa/feedfollow/internal/history"
	"github.com/jimezsa/feedfollow/internal/readers"
	"github.com/jimezsa/feedfollow/internal/subscribe"
)

type SubscribeCmd struct {
	Feeds       []string `arg:"" optional:"" help:"Feed URLs, resolved against the page location."`
	Trigger     int      `help:"Use the feeds of the Nth trigger element on --page (1-based)."`
	Answer      string   `help:"Answer the dialog without prompting: yes or no."`
	NoOpen      bool     `help:"Print the chosen target instead of opening it."`
	NoClipboard bool     `help:"Skip the clipboard transfer."`
	NoHistory   bool     `help:"Do not record the outcome in the history file."`
	Probe       bool     `help:"Fetch the first feed and name the dialog after it."`
	UserAgent   string   `help:"User agent used to pick the reader download page." env:"FEEDFOLLOW_USER_AGENT"`
	Platform    string   `help:"Platform string (e.g. MacIntel, Win32, iPhone) used to pick the reader download page." env:"FEEDFOLLOW_PLATFORM"`
	PageOptions
}

func (c *SubscribeCmd) Run(ctx *Context) error {
	doc, err := loadPage(ctx, c.PageOptions)
	if err != nil {
		return err
	}

	feeds := c.Feeds
	if c.Trigger > 0 {
		triggers := doc.Triggers(ctx.Config.TriggerAttribute)
		if c.Trigger > len(triggers) {
			return fmt.Errorf("--trigger %d: page has %d triggers", c.Trigger, len(triggers))
		}
		feeds = append(append([]string{}, triggers[c.Trigger-1].Feeds...), feeds...)
	}

	o := &subscribe.Orchestrator{
		Scheme:   ctx.Config.Scheme,
		Env:      c.environment(ctx, doc.Location()),
		Registry: readers.NewRegistry(doc.MetaStore(ctx.Config.MetaName)),
		Renderer: subscribe.RendererFunc(func(_ context.Context, dialog subscribe.Dialog) error {
			ctx.UI.RenderDialog(dialog)
			return nil
		}),
		Logger: ctx.Logger,
	}
	if !c.NoClipboard {
		o.Clipboard = ctx.Clipboard
	}
	if c.Probe {
		fetcher, err := newFetcher(c.PageOptions)
		if err != nil {
			return err
		}
		o.Titler = feedinfo.NewProber(fetcher).TitlerFor(ctx.Logger)
	}

	session, err := o.Subscribe(ctx.context(), feeds...)
	if err != nil {
		return err
	}
	if session == nil {
		ctx.Logger.Debug().Msg("no feeds given; nothing to subscribe")
		return nil
	}

	answer, err := c.answer(ctx)
	if err != nil {
		return err
	}
	target, err := session.Choose(answer)
	if err != nil {
		return err
	}

	if !c.NoHistory {
		c.record(ctx, session, feeds)
	}

	if target == "" {
		platform := readers.DetectPlatform(o.Env.UserAgent, o.Env.Platform)
		ctx.UI.Warnf("No reader app is configured for %s.", platform)
		return nil
	}
	if c.NoOpen || ctx.Navigator == nil {
		_, err := fmt.Fprintln(ctx.Out, target)
		return err
	}
	if err := ctx.Navigator.Navigate(ctx.context(), target); err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	ctx.UI.Successf("Opened %s", target)
	return nil
}

func (c *SubscribeCmd) environment(ctx *Context, location *url.URL) subscribe.Environment {
	return subscribe.Environment{
		Location:  location,
		UserAgent: firstNonEmpty(c.UserAgent, ctx.Config.UserAgent),
		Platform:  firstNonEmpty(c.Platform, ctx.Config.Platform, browser.Platform(runtime.GOOS, runtime.GOARCH)),
	}
}

func (c *SubscribeCmd) answer(ctx *Context) (subscribe.ActionID, error) {
	if c.Answer != "" {
		return subscribe.ParseActionID(c.Answer)
	}
	return ctx.UI.Choose(ctx.In, "Open in your reader app?")
}

func (c *SubscribeCmd) record(ctx *Context, session *subscribe.Session, feeds []string) {
	path, err := ctx.Config.HistoryPath()
	if err != nil {
		ctx.Logger.Warn().Err(err).Msg("history path")
		return
	}
	if _, err := history.Append(path, history.FromSession(session, feeds, time.Now())); err != nil {
		ctx.Logger.Warn().Err(err).Str("path", path).Msg("write history")
	}
}
