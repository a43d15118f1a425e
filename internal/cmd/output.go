package cmd

import (
	"io"
	"strings"

	"github.com/jimezsa/feedfollow/internal/export"
	"github.com/muesli/termenv"
)

func resolveFormat(ctx *Context) export.Format {
	if ctx.JSONOutput {
		return export.FormatJSON
	}
	if ctx.PlainText {
		return export.FormatTSV
	}
	if isTTY(ctx.Out) {
		return export.FormatTable
	}
	return export.FormatTSV
}

func writeTable(ctx *Context, table export.Table) error {
	colorEnabled := ctx.UI != nil && ctx.UI.ColorEnabled
	return export.Write(ctx.Out, table, resolveFormat(ctx), export.WriteOptions{
		ColorEnabled: colorEnabled,
		Hyperlinks:   colorEnabled && isTTY(ctx.Out),
		LinkStyle:    export.LinkStyleFull,
	})
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func isTTY(out io.Writer) bool {
	output := termenv.NewOutput(out)
	return output.ColorProfile() != termenv.Ascii
}
