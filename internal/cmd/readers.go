package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/jimezsa/feedfollow/internal/browser"
	"github.com/jimezsa/feedfollow/internal/export"
	"github.com/jimezsa/feedfollow/internal/readers"
)

type ReadersCmd struct {
	Get     ReadersGetCmd     `cmd:"" default:"1" help:"Print the reader download page per platform."`
	Set     ReadersSetCmd     `cmd:"" help:"Merge platform=url assignments into the page's readers meta tag."`
	Resolve ReadersResolveCmd `cmd:"" help:"Print the reader download page for a device."`
}

type ReadersGetCmd struct {
	PageOptions
}

type ReadersSetCmd struct {
	Assignments []string `arg:"" help:"platform=url pairs (platforms: ios, android, macos, windows, linux)."`
	Out         string   `help:"Write the updated page here instead of back to --page."`
	PageOptions
}

type ReadersResolveCmd struct {
	UserAgent string `help:"User agent string." env:"FEEDFOLLOW_USER_AGENT"`
	Platform  string `help:"Platform string (e.g. MacIntel, Win32, iPhone)." env:"FEEDFOLLOW_PLATFORM"`
	PageOptions
}

func (c *ReadersGetCmd) Run(ctx *Context) error {
	doc, err := loadPage(ctx, c.PageOptions)
	if err != nil {
		return err
	}
	current := readers.NewRegistry(doc.MetaStore(ctx.Config.MetaName)).RecommendedReaders()
	return writeTable(ctx, readersTable(current))
}

func (c *ReadersSetCmd) Run(ctx *Context) error {
	if strings.TrimSpace(c.Page) == "" {
		return fmt.Errorf("--page is required")
	}
	out := firstNonEmpty(c.Out, c.Page)
	if isRemote(out) {
		return fmt.Errorf("cannot write to %s; use --out", out)
	}

	partial, err := readers.ParsePartial(c.Assignments)
	if err != nil {
		return err
	}
	doc, err := loadPage(ctx, c.PageOptions)
	if err != nil {
		return err
	}

	registry := readers.NewRegistry(doc.MetaStore(ctx.Config.MetaName))
	registry.SetRecommendedReaders(partial)
	if err := doc.WriteFile(out); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	ctx.Logger.Debug().Str("path", out).Int("platforms", len(partial)).Msg("readers updated")
	return writeTable(ctx, readersTable(registry.RecommendedReaders()))
}

func (c *ReadersResolveCmd) Run(ctx *Context) error {
	doc, err := loadPage(ctx, c.PageOptions)
	if err != nil {
		return err
	}
	userAgent := firstNonEmpty(c.UserAgent, ctx.Config.UserAgent)
	platform := firstNonEmpty(c.Platform, ctx.Config.Platform, browser.Platform(runtime.GOOS, runtime.GOARCH))

	registry := readers.NewRegistry(doc.MetaStore(ctx.Config.MetaName))
	detected := readers.DetectPlatform(userAgent, platform)
	url := registry.RecommendedReader(userAgent, platform)

	table := export.Table{
		Columns: []export.Column{{Name: "platform"}, {Name: "url", Link: true}},
		Rows:    [][]string{{string(detected), url}},
		Records: map[string]string{"platform": string(detected), "url": url},
	}
	return writeTable(ctx, table)
}

func readersTable(current readers.Readers) export.Table {
	table := export.Table{
		Columns: []export.Column{{Name: "platform"}, {Name: "url", Link: true}},
		Records: current,
	}
	for _, platform := range readers.Platforms {
		table.Rows = append(table.Rows, []string{string(platform), current.Get(platform)})
	}
	return table
}
