package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/muesli/termenv"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatTSV      Format = "tsv"
)

type WriteOptions struct {
	ColorEnabled bool
	Hyperlinks   bool
	LinkStyle    LinkStyle
}

type LinkStyle string

const (
	LinkStyleShort LinkStyle = "short"
	LinkStyleFull  LinkStyle = "full"
)

// Column names a table column. Link columns are colored and hyperlinked in
// terminal tables.
type Column struct {
	Name string
	Link bool
}

// Table is a set of rows plus the value used for JSON output.
type Table struct {
	Columns []Column
	Rows    [][]string
	// Records is encoded for FormatJSON. When nil the rows are encoded as
	// objects keyed by column name.
	Records any
}

func Write(w io.Writer, table Table, format Format, opts WriteOptions) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, table)
	case FormatCSV:
		return writeCSV(w, table, ',')
	case FormatTSV:
		return writeCSV(w, table, '\t')
	case FormatMarkdown:
		return writeMarkdown(w, table)
	default:
		return writeTable(w, table, opts)
	}
}

func ParseFormat(value string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatCSV:
		return FormatCSV
	case FormatJSON:
		return FormatJSON
	case FormatMarkdown, "markdown":
		return FormatMarkdown
	case FormatTSV:
		return FormatTSV
	default:
		return FormatTable
	}
}

func writeJSON(w io.Writer, table Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if table.Records != nil {
		return enc.Encode(table.Records)
	}
	records := make([]map[string]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		record := make(map[string]string, len(table.Columns))
		for i, column := range table.Columns {
			record[column.Name] = cell(row, i)
		}
		records = append(records, record)
	}
	return enc.Encode(records)
}

func writeCSV(w io.Writer, table Table, delim rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim
	if err := writer.Write(header(table)); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if err := writer.Write(normalizeRow(table, row)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeTable(w io.Writer, table Table, opts WriteOptions) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header(table), "\t"))
	output := termenv.NewOutput(w)
	for _, row := range table.Rows {
		cells := normalizeRow(table, row)
		for i, column := range table.Columns {
			cells[i] = displayCell(cells[i], column, output, opts)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func writeMarkdown(w io.Writer, table Table) error {
	if len(table.Rows) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	names := header(table)
	separators := make([]string, len(names))
	for i := range separators {
		separators[i] = "---"
	}
	lines := []string{
		"| " + strings.Join(names, " | ") + " |",
		"| " + strings.Join(separators, " | ") + " |",
	}
	for _, row := range table.Rows {
		cells := normalizeRow(table, row)
		for i, column := range table.Columns {
			value := strings.ReplaceAll(safe(cells[i]), "|", `\|`)
			if column.Link && value != "" {
				value = fmt.Sprintf("[%s](<%s>)", shortURLLabel(value), value)
			}
			if value == "" {
				value = "-"
			}
			cells[i] = value
		}
		lines = append(lines, "| "+strings.Join(cells, " | ")+" |")
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func header(table Table) []string {
	names := make([]string, len(table.Columns))
	for i, column := range table.Columns {
		names[i] = column.Name
	}
	return names
}

func normalizeRow(table Table, row []string) []string {
	cells := make([]string, len(table.Columns))
	for i := range table.Columns {
		cells[i] = cell(row, i)
	}
	return cells
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func safe(value string) string {
	return strings.TrimSpace(value)
}

func displayCell(value string, column Column, output *termenv.Output, opts WriteOptions) string {
	const linkColor = "#87CEEB"

	value = safe(value)
	if value == "" {
		return "-"
	}
	if !column.Link {
		return value
	}
	display := value
	if opts.LinkStyle == LinkStyleShort && opts.Hyperlinks {
		display = shortURLLabel(value)
	}
	if opts.ColorEnabled {
		display = output.String(display).Foreground(output.Color(linkColor)).String()
	}
	if opts.Hyperlinks {
		display = hyperlink(value, display)
	}
	return display
}

func hyperlink(url string, text string) string {
	const esc = "\x1b"
	return esc + "]8;;" + url + esc + "\\" + text + esc + "]8;;" + esc + "\\"
}

func shortURLLabel(raw string) string {
	const maxLen = 60
	label := strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil {
		host := strings.TrimPrefix(parsed.Host, "www.")
		if host != "" {
			label = host + parsed.Path
		}
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = raw
	}
	if len(label) > maxLen {
		label = label[:maxLen-3] + "..."
	}
	return label
}
