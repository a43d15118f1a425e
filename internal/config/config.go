package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

const (
	DirName         = "feedfollow"
	ConfigFileName  = "config.json"
	ProxiesFileName = "proxies.txt"
	HistoryFileName = "history.json"

	DefaultScheme    = "feed"
	DefaultAttribute = "data-feedfollow"
	DefaultMetaName  = "feedfollow-readers"
	DefaultListen    = "127.0.0.1:8089"
)

// Config contains defaults for subscriptions and the server.
type Config struct {
	Scheme           string            `json:"scheme"`
	TriggerAttribute string            `json:"trigger_attribute"`
	MetaName         string            `json:"meta_name"`
	Readers          map[string]string `json:"readers"`
	UserAgent        string            `json:"user_agent"`
	Platform         string            `json:"platform"`
	Listen           string            `json:"listen"`
	HistoryFile      string            `json:"history_file"`
}

func DefaultConfig() Config {
	return Config{
		Scheme:           envString("FEEDFOLLOW_SCHEME", DefaultScheme),
		TriggerAttribute: envString("FEEDFOLLOW_TRIGGER_ATTRIBUTE", DefaultAttribute),
		MetaName:         envString("FEEDFOLLOW_META_NAME", DefaultMetaName),
		Readers: map[string]string{
			"ios":     "",
			"android": "",
			"macos":   "",
			"windows": "",
			"linux":   "",
		},
		UserAgent:   envString("FEEDFOLLOW_USER_AGENT", ""),
		Platform:    envString("FEEDFOLLOW_PLATFORM", ""),
		Listen:      envString("FEEDFOLLOW_LISTEN", DefaultListen),
		HistoryFile: envString("FEEDFOLLOW_HISTORY", ""),
	}
}

func ConfigDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv("FEEDFOLLOW_CONFIG_DIR")); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DirName), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

func ProxiesPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ProxiesFileName), nil
}

// HistoryPath returns the configured history file or the default one in the
// config directory.
func (c Config) HistoryPath() (string, error) {
	if strings.TrimSpace(c.HistoryFile) != "" {
		return c.HistoryFile, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, HistoryFileName), nil
}

func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadFile(path)
}

// LoadFile reads a json5 config. A missing or blank file yields the defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	if err := json5.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	applyFallbacks(&cfg)
	return cfg, nil
}

func applyFallbacks(cfg *Config) {
	if strings.TrimSpace(cfg.Scheme) == "" {
		cfg.Scheme = DefaultScheme
	}
	if strings.TrimSpace(cfg.TriggerAttribute) == "" {
		cfg.TriggerAttribute = DefaultAttribute
	}
	if strings.TrimSpace(cfg.MetaName) == "" {
		cfg.MetaName = DefaultMetaName
	}
	if strings.TrimSpace(cfg.Listen) == "" {
		cfg.Listen = DefaultListen
	}
}

// Init writes a commented config.json and an empty proxies.txt, skipping files
// that already exist. It returns the paths it created.
func Init() ([]string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	files := []struct {
		name  string
		write func(path string) error
	}{
		{ConfigFileName, func(path string) error { return writeConfig(path, DefaultConfig()) }},
		{ProxiesFileName, func(path string) error {
			return os.WriteFile(path, []byte("# one proxy URL per line\n"), 0o644)
		}},
	}

	var created []string
	for _, file := range files {
		path := filepath.Join(dir, file.name)
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := file.write(path); err != nil {
			return created, err
		}
		created = append(created, path)
	}
	return created, nil
}

const configHeader = `// feedfollow configuration (json5: comments and trailing commas are allowed).
// readers: download page of a reader app per platform (ios, android, macos,
// windows, linux), used when the user has no reader installed yet.
`

func writeConfig(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	out := append([]byte(configHeader), data...)
	return os.WriteFile(path, append(out, '\n'), 0o644)
}

func LoadProxies(flagValue string) ([]string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return splitCSV(flagValue), nil
	}

	if env := strings.TrimSpace(os.Getenv("FEEDFOLLOW_PROXIES")); env != "" {
		return splitCSV(env), nil
	}

	path, err := ProxiesPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var proxies []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		proxies = append(proxies, line)
	}
	return proxies, nil
}

func envString(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
