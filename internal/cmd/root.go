package cmd

import (
	"github.com/alecthomas/kong"
)

type CLI struct {
	Color   string `help:"Color output: auto, always, never." enum:"auto,always,never" default:"auto"`
	JSON    bool   `help:"JSON output to stdout; disables colors."`
	Plain   bool   `help:"TSV output to stdout; disables colors."`
	Verbose bool   `help:"Enable debug logging."`

	VersionFlag kong.VersionFlag `help:"Print version."`

	Version   VersionCmd   `cmd:"" help:"Print version."`
	Config    ConfigCmd    `cmd:"" help:"Manage configuration."`
	Subscribe SubscribeCmd `cmd:"" help:"Copy feed links to the clipboard and hand them to a reader app."`
	Scan      ScanCmd      `cmd:"" help:"List subscribe triggers on a page."`
	Readers   ReadersCmd   `cmd:"" help:"Recommended reader apps per platform."`
	Inbox     InboxCmd     `cmd:"" help:"Read feed links handed over through the clipboard."`
	History   HistoryCmd   `cmd:"" help:"Show past subscriptions."`
	Serve     ServeCmd     `cmd:"" help:"Serve subscription pages over HTTP."`
	Proxies   ProxiesCmd   `cmd:"" help:"Proxy utilities."`
}

func NewCLI() *CLI {
	return &CLI{}
}
