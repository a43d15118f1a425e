package readers

import "testing"

func TestDetectPlatform(t *testing.T) {
	cases := []struct {
		name      string
		userAgent string
		platform  string
		want      Platform
	}{
		{"android phone", "Mozilla/5.0 (Linux; Android 14; Pixel 8)", "Linux armv8l", PlatformAndroid},
		{"android wins over windows platform", "Mozilla/5.0 (Linux; Android 10)", "Win32", PlatformAndroid},
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)", "iPhone", PlatformIOS},
		{"ipad", "", "iPad", PlatformIOS},
		{"mac", "Mozilla/5.0 (Macintosh)", "MacIntel", PlatformMacOS},
		{"windows", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)", "Win32", PlatformWindows},
		{"windows case insensitive", "", "WINDOWS", PlatformWindows},
		{"linux", "Mozilla/5.0 (X11; Linux x86_64)", "Linux x86_64", PlatformLinux},
		{"empty", "", "", PlatformLinux},
		{"unknown", "curl/8.0", "BeOS", PlatformLinux},
		{"lowercase android is not a match", "android", "", PlatformLinux},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DetectPlatform(tc.userAgent, tc.platform); got != tc.want {
				t.Fatalf("DetectPlatform(%q, %q) = %q, want %q", tc.userAgent, tc.platform, got, tc.want)
			}
		})
	}
}

func TestRecommendedReaderSelectsPlatformEntry(t *testing.T) {
	registry := NewRegistry(NewMemoryStore())
	registry.SetRecommendedReaders(Partial{
		PlatformAndroid: "https://android.example",
		PlatformWindows: "https://windows.example",
		PlatformLinux:   "https://linux.example",
	})

	if got := registry.RecommendedReader("Mozilla/5.0 (Linux; Android 14)", "Win32"); got != "https://android.example" {
		t.Fatalf("android UA resolved to %q", got)
	}
	if got := registry.RecommendedReader("Mozilla/5.0 (Windows NT 10.0)", "Win32"); got != "https://windows.example" {
		t.Fatalf("windows platform resolved to %q", got)
	}
	if got := registry.RecommendedReader("", "SunOS"); got != "https://linux.example" {
		t.Fatalf("unknown platform resolved to %q", got)
	}
	if got := registry.RecommendedReader("", "iPhone"); got != "" {
		t.Fatalf("unconfigured ios resolved to %q, want empty", got)
	}
}
