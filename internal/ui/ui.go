// Package ui prints status lines and the subscribe dialog to the terminal.
package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jimezsa/feedfollow/internal/subscribe"
	"github.com/muesli/termenv"
)

type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

const linkColor = "#87CEEB"

// tone is the ANSI color of a status line and whether it goes to stderr.
type tone struct {
	color  string
	stderr bool
}

var (
	toneError   = tone{color: "1", stderr: true}
	toneWarn    = tone{color: "3", stderr: true}
	toneInfo    = tone{color: "4"}
	toneSuccess = tone{color: "2"}
)

var ErrNoAnswer = errors.New("no answer")

type UI struct {
	Out          io.Writer
	Err          io.Writer
	ColorEnabled bool

	out    *termenv.Output
	errOut *termenv.Output
}

func New(out io.Writer, err io.Writer, mode ColorMode, disableColor bool) *UI {
	u := &UI{
		Out:    out,
		Err:    err,
		out:    termenv.NewOutput(out),
		errOut: termenv.NewOutput(err),
	}
	u.ColorEnabled = colorEnabled(u.out, mode, disableColor)
	return u
}

func colorEnabled(output *termenv.Output, mode ColorMode, disableColor bool) bool {
	if disableColor {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	return output.ColorProfile() != termenv.Ascii
}

func NormalizeColorMode(value string) ColorMode {
	switch mode := ColorMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case ColorAlways, ColorNever:
		return mode
	}
	return ColorAuto
}

func (u *UI) Errorf(format string, args ...any)   { u.say(toneError, format, args...) }
func (u *UI) Warnf(format string, args ...any)    { u.say(toneWarn, format, args...) }
func (u *UI) Infof(format string, args ...any)    { u.say(toneInfo, format, args...) }
func (u *UI) Successf(format string, args ...any) { u.say(toneSuccess, format, args...) }

func (u *UI) say(t tone, format string, args ...any) {
	w, output := u.Out, u.out
	if t.stderr {
		w, output = u.Err, u.errOut
	}
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	if u.ColorEnabled {
		msg = output.String(msg).Foreground(output.Color(t.color)).String()
	}
	fmt.Fprintln(w, msg)
}

// LinkText colors a URL for stdout.
func (u *UI) LinkText(text string) string {
	if !u.ColorEnabled {
		return text
	}
	return u.out.String(text).Foreground(u.out.Color(linkColor)).String()
}

// RenderDialog prints the dialog with one line per action.
func (u *UI) RenderDialog(dialog subscribe.Dialog) {
	title := dialog.Title
	if u.ColorEnabled {
		title = u.out.String(title).Bold().String()
	}
	fmt.Fprintln(u.Out, title)
	fmt.Fprintln(u.Out, dialog.Message)
	for _, action := range dialog.Actions {
		target := action.Target
		if target == "" {
			target = "(no reader configured)"
		}
		key := strings.ToLower(string(action.ID[:1]))
		fmt.Fprintf(u.Out, "  [%s] %s  %s\n", key, action.Label, u.LinkText(target))
	}
}

// Choose asks for a yes/no answer on in until a valid one is given.
func (u *UI) Choose(in io.Reader, question string) (subscribe.ActionID, error) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(u.Out, "%s [y/n]: ", question)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", ErrNoAnswer
		}
		id, err := subscribe.ParseActionID(scanner.Text())
		if err == nil {
			return id, nil
		}
		u.Warnf("Please answer y or n.")
	}
}
