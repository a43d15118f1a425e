package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/jimezsa/feedfollow/internal/browser"
	"github.com/jimezsa/feedfollow/internal/clipboard"
	"github.com/jimezsa/feedfollow/internal/cmd"
	"github.com/jimezsa/feedfollow/internal/config"
	"github.com/jimezsa/feedfollow/internal/ui"
	"github.com/rs/zerolog"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cli := cmd.NewCLI()
	applyEnvDefaults(cli)
	versionString := buildVersion()

	parser, err := kong.New(cli,
		kong.Name("feedfollow"),
		kong.Description("Hand feed subscriptions to a reader app."),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": versionString},
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { panic(exitCode(code)) }),
	)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}

	kctx, code, err := parse(parser, args)
	if err != nil {
		ui.New(stdout, stderr, ui.NormalizeColorMode(cli.Color), false).Errorf("%v", err)
	}
	if kctx == nil {
		return code
	}

	runCtx, stop, err := newContext(cli, versionString, stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	defer stop()

	if err := kctx.Run(runCtx); err != nil {
		runCtx.UI.Errorf("%v", describe(err))
		return exitFailure
	}
	return exitOK
}

// exitCode carries kong's requested exit (help, --version) out of Parse.
type exitCode int

// parse returns the parsed context, or nil and the exit code when parsing
// ended the run.
func parse(parser *kong.Kong, args []string) (kctx *kong.Context, code int, err error) {
	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			kctx, code, err = nil, int(c), nil
		}
	}()
	kctx, err = parser.Parse(args)
	if err != nil {
		return nil, exitUsage, err
	}
	return kctx, exitOK, nil
}

func newContext(cli *cmd.CLI, versionString string, stdin io.Reader, stdout, stderr io.Writer) (*cmd.Context, context.CancelFunc, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	configDir, err := config.ConfigDir()
	if err != nil {
		return nil, nil, err
	}

	colorMode := ui.NormalizeColorMode(cli.Color)
	level := zerolog.InfoLevel
	if cli.Verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(stderr).Level(level).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	return &cmd.Context{
		Ctx:        ctx,
		In:         stdin,
		Out:        stdout,
		Err:        stderr,
		UI:         ui.New(stdout, stderr, colorMode, cli.JSON || cli.Plain),
		Config:     cfg,
		ConfigDir:  configDir,
		Logger:     logger,
		Verbose:    cli.Verbose,
		JSONOutput: cli.JSON,
		PlainText:  cli.Plain,
		Version:    versionString,
		ColorMode:  colorMode,
		Clipboard:  clipboard.SystemWriter{},
		Navigator:  browser.System{},
	}, stop, nil
}

// describe adds a hint to errors the user can act on.
func describe(err error) string {
	switch {
	case errors.Is(err, ui.ErrNoAnswer):
		return "no answer given; pass --answer yes|no when stdin is not a terminal"
	case errors.Is(err, clipboard.ErrUnavailable):
		return fmt.Sprintf("%v (install xclip, xsel or wl-clipboard)", err)
	}
	return err.Error()
}

func buildVersion() string {
	var meta []string
	for _, part := range []string{commit, date} {
		if part != "" {
			meta = append(meta, part)
		}
	}
	if len(meta) == 0 {
		return version
	}
	return fmt.Sprintf("%s (%s)", version, strings.Join(meta, ", "))
}

func applyEnvDefaults(cli *cmd.CLI) {
	cli.JSON = cli.JSON || envBool("FEEDFOLLOW_JSON")
	cli.Verbose = cli.Verbose || envBool("FEEDFOLLOW_VERBOSE")
	if value := strings.TrimSpace(os.Getenv("FEEDFOLLOW_COLOR")); value != "" {
		cli.Color = value
	}
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
