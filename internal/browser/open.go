// Package browser hands a URI to the operating system's default handler,
// which is how custom scheme links reach an installed reader app.
package browser

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
)

var ErrEmptyTarget = errors.New("nothing to open")

// Navigator opens a navigation target.
type Navigator interface {
	Navigate(ctx context.Context, target string) error
}

// System opens targets with the platform opener.
type System struct {
	GOOS string
}

func (s System) Navigate(ctx context.Context, target string) error {
	if target == "" {
		return ErrEmptyTarget
	}
	name, args := command(s.goos(), target)
	return exec.CommandContext(ctx, name, args...).Start()
}

func (s System) goos() string {
	if s.GOOS != "" {
		return s.GOOS
	}
	return runtime.GOOS
}

func command(goos string, target string) (string, []string) {
	switch goos {
	case "darwin", "ios":
		return "open", []string{target}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	default:
		return "xdg-open", []string{target}
	}
}

// Platform returns a navigator.platform style string for goos, used when no
// platform is configured.
func Platform(goos string, goarch string) string {
	switch goos {
	case "darwin":
		return "MacIntel"
	case "ios":
		return "iPhone"
	case "windows":
		return "Win32"
	case "android":
		return "Linux armv8l"
	}
	switch goarch {
	case "amd64":
		return "Linux x86_64"
	case "arm64":
		return "Linux aarch64"
	}
	return "Linux " + goarch
}
