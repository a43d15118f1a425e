// Package history records completed subscription handoffs.
package history

import (
	"strings"
	"time"

	"github.com/jimezsa/feedfollow/internal/subscribe"
)

// Entry is one decided handoff.
type Entry struct {
	Session         string    `json:"session,omitempty"`
	URI             string    `json:"uri"`
	Feeds           []string  `json:"feeds"`
	Outcome         string    `json:"outcome"`
	Target          string    `json:"target"`
	ClipboardFormat string    `json:"clipboard_format,omitempty"`
	At              time.Time `json:"at"`
}

// MergeStats captures stats for history updates.
type MergeStats struct {
	TotalExisting int
	TotalInput    int
	Invalid       int
	Added         int
	Updated       int
	TotalOut      int
}

// FromSession builds an entry from a decided session.
func FromSession(session *subscribe.Session, feeds []string, at time.Time) Entry {
	entry := Entry{
		Session:         session.ID,
		Feeds:           append([]string{}, feeds...),
		Outcome:         string(session.State),
		Target:          session.Target,
		ClipboardFormat: session.ClipboardFormat,
		At:              at.UTC(),
	}
	if len(session.URIs) > 0 {
		entry.URI = session.URIs[0]
	}
	return entry
}

// Key is the dedupe key of an entry: its trimmed first follow URI.
func Key(entry Entry) (string, bool) {
	key := strings.TrimSpace(entry.URI)
	return key, key != ""
}

// Merge folds input into existing. A newer entry for the same URI replaces the
// older one in place; entries without a URI are dropped from input.
func Merge(existing []Entry, input []Entry) ([]Entry, MergeStats) {
	stats := MergeStats{
		TotalExisting: len(existing),
		TotalInput:    len(input),
	}

	index := make(map[string]int, len(existing)+len(input))
	out := make([]Entry, 0, len(existing)+len(input))

	for _, entry := range existing {
		key, ok := Key(entry)
		if !ok {
			out = append(out, entry)
			continue
		}
		if i, exists := index[key]; exists {
			out[i] = entry
			continue
		}
		index[key] = len(out)
		out = append(out, entry)
	}

	for _, entry := range input {
		key, ok := Key(entry)
		if !ok {
			stats.Invalid++
			continue
		}
		if i, exists := index[key]; exists {
			out[i] = entry
			stats.Updated++
			continue
		}
		index[key] = len(out)
		out = append(out, entry)
		stats.Added++
	}

	stats.TotalOut = len(out)
	return out, stats
}
