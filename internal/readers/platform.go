package readers

import (
	"fmt"
	"strings"
)

// Platform identifies one of the fixed device families a reader app can be
// recommended for.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformMacOS   Platform = "macos"
	PlatformWindows Platform = "windows"
	PlatformLinux   Platform = "linux"
)

// Platforms lists every known platform in serialization order.
var Platforms = []Platform{
	PlatformIOS,
	PlatformAndroid,
	PlatformMacOS,
	PlatformWindows,
	PlatformLinux,
}

func ParsePlatform(value string) (Platform, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, p := range Platforms {
		if string(p) == value {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, value)
}

func (p Platform) valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// DetectPlatform maps a user-agent string and a navigator-style platform
// string (e.g. "iPhone", "MacIntel", "Win32", "Linux x86_64") to a Platform.
// Android is checked first because Android user agents may carry platform
// strings that look like desktop Linux.
func DetectPlatform(userAgent string, platform string) Platform {
	switch {
	case strings.Contains(userAgent, "Android"):
		return PlatformAndroid
	case strings.HasPrefix(platform, "iP"):
		return PlatformIOS
	case strings.HasPrefix(platform, "Mac"):
		return PlatformMacOS
	case strings.Contains(strings.ToLower(platform), "win"):
		return PlatformWindows
	default:
		return PlatformLinux
	}
}
