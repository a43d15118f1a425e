package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jimezsa/feedfollow/internal/clipboard"
	"github.com/jimezsa/feedfollow/internal/export"
	"github.com/jimezsa/feedfollow/internal/subscribe"
)

type InboxCmd struct {
	From      string `help:"Read follow links from a file ('-' for stdin) instead of the clipboard."`
	AnyScheme bool   `help:"Accept follow links of any scheme."`
}

type inboxRecord struct {
	URI  string `json:"uri"`
	Feed string `json:"feed"`
}

func (c *InboxCmd) Run(ctx *Context) error {
	lines, err := c.lines(ctx)
	if err != nil {
		return err
	}

	scheme := ctx.Config.Scheme
	if c.AnyScheme {
		scheme = ""
	}

	records := make([]inboxRecord, 0, len(lines))
	skipped := 0
	for _, line := range lines {
		feed, err := subscribe.ParseFollowURI(scheme, line)
		if err != nil {
			skipped++
			ctx.Logger.Debug().Err(err).Msg("skip clipboard line")
			continue
		}
		records = append(records, inboxRecord{URI: line, Feed: feed})
	}
	if len(records) == 0 {
		ctx.UI.Warnf("No follow links found.")
		return nil
	}
	if skipped > 0 {
		ctx.UI.Warnf("Skipped %d lines that are not follow links.", skipped)
	}

	table := export.Table{
		Columns: []export.Column{{Name: "n"}, {Name: "feed", Link: true}, {Name: "uri"}},
		Records: records,
	}
	for i, record := range records {
		table.Rows = append(table.Rows, []string{strconv.Itoa(i + 1), record.Feed, record.URI})
	}
	return writeTable(ctx, table)
}

func (c *InboxCmd) lines(ctx *Context) ([]string, error) {
	switch strings.TrimSpace(c.From) {
	case "":
		read := ctx.ReadClipboard
		if read == nil {
			read = clipboard.ReadLines
		}
		lines, err := read()
		if err != nil {
			if errors.Is(err, clipboard.ErrUnavailable) {
				return nil, fmt.Errorf("read clipboard: %w; use --from", err)
			}
			return nil, fmt.Errorf("read clipboard: %w", err)
		}
		return lines, nil
	case "-":
		in := ctx.In
		if in == nil {
			in = os.Stdin
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return clipboard.SplitLines(string(data)), nil
	default:
		data, err := os.ReadFile(c.From)
		if err != nil {
			return nil, fmt.Errorf("read --from: %w", err)
		}
		return clipboard.SplitLines(string(data)), nil
	}
}
