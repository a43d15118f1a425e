package readers

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"
)

var (
	ErrUnknownPlatform  = errors.New("unknown platform")
	ErrInvalidReaderURL = errors.New("invalid reader url")
)

// Readers holds a reader download URL per platform. Empty means unconfigured.
type Readers struct {
	IOS     string `json:"ios"`
	Android string `json:"android"`
	MacOS   string `json:"macos"`
	Windows string `json:"windows"`
	Linux   string `json:"linux"`
}

// Partial carries any subset of platform URLs to overlay on a Readers value.
type Partial map[Platform]string

// Defaults returns the built-in configuration, which leaves every platform empty.
func Defaults() Readers {
	return Readers{}
}

func (r Readers) Get(p Platform) string {
	switch p {
	case PlatformIOS:
		return r.IOS
	case PlatformAndroid:
		return r.Android
	case PlatformMacOS:
		return r.MacOS
	case PlatformWindows:
		return r.Windows
	case PlatformLinux:
		return r.Linux
	}
	return ""
}

// With returns a copy of r with p set to value. Unknown platforms are ignored.
func (r Readers) With(p Platform, value string) Readers {
	switch p {
	case PlatformIOS:
		r.IOS = value
	case PlatformAndroid:
		r.Android = value
	case PlatformMacOS:
		r.MacOS = value
	case PlatformWindows:
		r.Windows = value
	case PlatformLinux:
		r.Linux = value
	}
	return r
}

func (r Readers) Merge(partial Partial) Readers {
	for p, value := range partial {
		r = r.With(p, value)
	}
	return r
}

// Map returns all five entries keyed by platform name.
func (r Readers) Map() map[string]string {
	out := make(map[string]string, len(Platforms))
	for _, p := range Platforms {
		out[string(p)] = r.Get(p)
	}
	return out
}

// Format serializes r as space separated platform=url tokens in fixed order.
func Format(r Readers) string {
	tokens := make([]string, 0, len(Platforms))
	for _, p := range Platforms {
		tokens = append(tokens, string(p)+"="+r.Get(p))
	}
	return strings.Join(tokens, " ")
}

// Parse overlays the platform=url tokens found in value onto the defaults.
// Unknown keys and tokens without '=' are dropped.
func Parse(value string) Readers {
	r := Defaults()
	for _, token := range strings.Fields(value) {
		key, url, ok := strings.Cut(token, "=")
		if !ok {
			continue
		}
		p := Platform(key)
		if !p.valid() {
			continue
		}
		r = r.With(p, url)
	}
	return r
}

// ParsePartial reads platform=url assignments such as command line arguments.
func ParsePartial(assignments []string) (Partial, error) {
	partial := Partial{}
	for _, assignment := range assignments {
		assignment = strings.TrimSpace(assignment)
		if assignment == "" {
			continue
		}
		key, url, ok := strings.Cut(assignment, "=")
		if !ok {
			return nil, fmt.Errorf("invalid assignment %q: expected platform=url", assignment)
		}
		p, err := ParsePlatform(key)
		if err != nil {
			return nil, err
		}
		if partial[p], err = readerURL(p, url); err != nil {
			return nil, err
		}
	}
	return partial, nil
}

// PartialFromMap converts a platform name map (config files, JSON bodies).
func PartialFromMap(values map[string]string) (Partial, error) {
	partial := make(Partial, len(values))
	for key, url := range values {
		p, err := ParsePlatform(key)
		if err != nil {
			return nil, err
		}
		if partial[p], err = readerURL(p, url); err != nil {
			return nil, err
		}
	}
	return partial, nil
}

// readerURL trims value. Inner whitespace would split the stored
// platform=url tokens, so it is rejected.
func readerURL(p Platform, value string) (string, error) {
	value = strings.TrimSpace(value)
	if strings.ContainsFunc(value, unicode.IsSpace) {
		return "", fmt.Errorf("%w for %s: %q contains whitespace", ErrInvalidReaderURL, p, value)
	}
	return value, nil
}

// Store persists the serialized configuration. Lookup reports false when no
// entry exists yet.
type Store interface {
	Lookup() (string, bool)
	Save(value string)
}

type Registry struct {
	store Store
}

func NewRegistry(store Store) *Registry {
	return &Registry{store: store}
}

// SetRecommendedReaders merges partial over the stored configuration and
// writes the fully populated result back.
func (r *Registry) SetRecommendedReaders(partial Partial) {
	merged := r.RecommendedReaders().Merge(partial)
	r.store.Save(Format(merged))
}

// RecommendedReaders reads the store on every call.
func (r *Registry) RecommendedReaders() Readers {
	value, ok := r.store.Lookup()
	if !ok {
		return Defaults()
	}
	return Parse(value)
}

// RecommendedReader returns the download URL for the device described by
// userAgent and platform.
func (r *Registry) RecommendedReader(userAgent string, platform string) string {
	return r.RecommendedReaders().Get(DetectPlatform(userAgent, platform))
}

// MemoryStore keeps the serialized configuration in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	value string
	set   bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Lookup() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.value, m.set
}

func (m *MemoryStore) Save(value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = value
	m.set = true
}
