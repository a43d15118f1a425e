package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// Read reads a JSON array of entries from path.
func Read(path string) ([]Entry, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []Entry{}, nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		return []Entry{}, nil
	}
	return entries, nil
}

// ReadAllowMissing reads entries and treats a missing file as empty history.
func ReadAllowMissing(path string) ([]Entry, error) {
	entries, err := Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, err
	}
	return entries, nil
}

// Write writes entries as pretty JSON, creating the parent directory.
func Write(path string, entries []Entry) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is required")
	}
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Append merges entries into the history file at path. The read-merge-write
// runs under an exclusive lock on path+".lock" so concurrent processes do not
// drop each other's entries.
func Append(path string, entries ...Entry) (MergeStats, error) {
	if strings.TrimSpace(path) == "" {
		return MergeStats{}, fmt.Errorf("path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return MergeStats{}, err
	}
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return MergeStats{}, fmt.Errorf("lock history: %w", err)
	}
	defer lock.Unlock()

	existing, err := ReadAllowMissing(path)
	if err != nil {
		return MergeStats{}, err
	}
	merged, stats := Merge(existing, entries)
	if err := Write(path, merged); err != nil {
		return stats, err
	}
	return stats, nil
}
