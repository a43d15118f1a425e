package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/jimezsa/feedfollow/internal/export"
	"github.com/jimezsa/feedfollow/internal/history"
)

type HistoryCmd struct {
	Limit  int    `help:"Show only the N most recent entries (0 for all)." default:"20"`
	File   string `help:"History file (defaults to the configured one)."`
	Format string `help:"Export format: table, csv, tsv, json, md (overrides --json/--plain)."`
}

func (c *HistoryCmd) Run(ctx *Context) error {
	path := c.File
	if strings.TrimSpace(path) == "" {
		resolved, err := ctx.Config.HistoryPath()
		if err != nil {
			return err
		}
		path = resolved
	}

	entries, err := history.ReadAllowMissing(path)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	if len(entries) == 0 {
		ctx.UI.Infof("No subscriptions recorded yet.")
		return nil
	}
	if c.Limit > 0 && len(entries) > c.Limit {
		entries = entries[len(entries)-c.Limit:]
	}

	table := export.Table{
		Columns: []export.Column{
			{Name: "at"},
			{Name: "outcome"},
			{Name: "feeds"},
			{Name: "clipboard"},
			{Name: "target", Link: true},
		},
		Records: entries,
	}
	for _, entry := range entries {
		table.Rows = append(table.Rows, []string{
			entry.At.Local().Format(time.DateTime),
			entry.Outcome,
			strings.Join(entry.Feeds, " "),
			entry.ClipboardFormat,
			entry.Target,
		})
	}
	if strings.TrimSpace(c.Format) != "" {
		return export.Write(ctx.Out, table, export.ParseFormat(c.Format), export.WriteOptions{LinkStyle: export.LinkStyleFull})
	}
	return writeTable(ctx, table)
}
