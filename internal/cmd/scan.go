package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jimezsa/feedfollow/internal/export"
)

type ScanCmd struct {
	Attribute string `help:"Trigger attribute name (defaults to the configured one)."`
	PageOptions
}

func (c *ScanCmd) Run(ctx *Context) error {
	if strings.TrimSpace(c.Page) == "" {
		return fmt.Errorf("--page is required")
	}
	doc, err := loadPage(ctx, c.PageOptions)
	if err != nil {
		return err
	}

	triggers := doc.Triggers(firstNonEmpty(c.Attribute, ctx.Config.TriggerAttribute))
	table := export.Table{
		Columns: []export.Column{{Name: "n"}, {Name: "tag"}, {Name: "text"}, {Name: "feeds", Link: true}},
		Records: triggers,
	}
	for i, trigger := range triggers {
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(i + 1),
			trigger.Tag,
			trigger.Text,
			strings.Join(trigger.Feeds, " "),
		})
	}
	if len(triggers) == 0 {
		ctx.UI.Warnf("No triggers found on %s.", c.Page)
	}
	return writeTable(ctx, table)
}
