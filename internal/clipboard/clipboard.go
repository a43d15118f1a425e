package clipboard

import (
	"context"
	"errors"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/jimezsa/feedfollow/internal/fallback"
	"github.com/rs/zerolog"
)

const (
	MIMEURIList   = "text/uri-list"
	MIMEPlainText = "text/plain"
)

// Candidates lists the payload types in the order they are tried.
var Candidates = []string{MIMEURIList, MIMEPlainText}

var (
	// ErrUnsupportedType indicates the writer cannot carry the requested type.
	ErrUnsupportedType = errors.New("clipboard type not supported")
	// ErrUnavailable indicates no clipboard is reachable from this process.
	ErrUnavailable = errors.New("clipboard unavailable")
	// ErrClipboardRead indicates an error reading from the clipboard.
	ErrClipboardRead = errors.New("failed to read from clipboard")
)

// Item is a clipboard payload tagged with a single MIME type.
type Item struct {
	MIMEType string
	Data     string
}

type Writer interface {
	WriteClipboard(ctx context.Context, item Item) error
}

// Result reports which candidate type was written. Format is empty when every
// candidate failed.
type Result struct {
	Format string
}

func (r Result) OK() bool {
	return r.Format != ""
}

// Transfer places payload on the clipboard using the first candidate type the
// writer accepts. Failures are logged at debug level and never returned.
func Transfer(ctx context.Context, w Writer, payload string, logger zerolog.Logger) Result {
	if w == nil {
		logger.Debug().Msg("clipboard transfer skipped: no writer")
		return Result{}
	}

	attempts := make([]fallback.Attempt, 0, len(Candidates))
	for _, mimeType := range Candidates {
		item := Item{MIMEType: mimeType, Data: payload}
		attempts = append(attempts, fallback.Attempt{
			Name: mimeType,
			Try: func(ctx context.Context) error {
				return w.WriteClipboard(ctx, item)
			},
		})
	}

	format, err := fallback.First(ctx, attempts...)
	if err != nil {
		logger.Debug().Err(err).Msg("clipboard transfer exhausted")
		return Result{}
	}
	logger.Debug().Str("format", format).Msg("clipboard transfer complete")
	return Result{Format: format}
}

// SystemWriter writes to the operating system clipboard. Only plain text is
// supported by the underlying utilities.
type SystemWriter struct{}

func (SystemWriter) WriteClipboard(ctx context.Context, item Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	if item.MIMEType != MIMEPlainText {
		return ErrUnsupportedType
	}
	return clipboard.WriteAll(item.Data)
}

// ReadLines reads the operating system clipboard and returns its non-empty
// lines.
func ReadLines() ([]string, error) {
	if clipboard.Unsupported {
		return nil, ErrUnavailable
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return nil, ErrClipboardRead
	}
	return SplitLines(text), nil
}

func SplitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		// text/uri-list comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
