// Package watch reports debounced changes to a single file.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const DefaultDebounce = 500 * time.Millisecond

// File watches path by watching its directory, so editors that replace the
// file on save are still seen.
type File struct {
	path     string
	debounce time.Duration
	logger   zerolog.Logger
}

func NewFile(path string, debounce time.Duration, logger zerolog.Logger) *File {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &File{path: filepath.Clean(path), debounce: debounce, logger: logger}
}

// Run calls onChange after each burst of writes to the file until ctx is done.
func (f *File) Run(ctx context.Context, onChange func()) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(f.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	timer := time.NewTimer(f.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !f.relevant(event) {
				continue
			}
			timer.Reset(f.debounce)
		case <-timer.C:
			onChange()
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			f.logger.Warn().Err(err).Str("path", f.path).Msg("watch error")
		}
	}
}

func (f *File) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	return filepath.Clean(event.Name) == f.path
}
