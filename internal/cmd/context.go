package cmd

import (
	"context"
	"io"

	"github.com/jimezsa/feedfollow/internal/browser"
	"github.com/jimezsa/feedfollow/internal/clipboard"
	"github.com/jimezsa/feedfollow/internal/config"
	"github.com/jimezsa/feedfollow/internal/ui"
	"github.com/rs/zerolog"
)

type Context struct {
	Ctx        context.Context
	In         io.Reader
	Out        io.Writer
	Err        io.Writer
	UI         *ui.UI
	Config     config.Config
	ConfigDir  string
	Logger     zerolog.Logger
	Verbose    bool
	JSONOutput bool
	PlainText  bool
	Version    string
	ColorMode  ui.ColorMode
	Clipboard  clipboard.Writer
	Navigator  browser.Navigator
	// ReadClipboard returns the clipboard's lines; nil uses the OS clipboard.
	ReadClipboard func() ([]string, error)
}

func (c *Context) context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}
