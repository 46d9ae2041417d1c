// Package history keeps a bounded, newest-first cache of finished
// transcriptions, mirroring the engine's persisted history document.
package history

import (
	"time"

	"github.com/google/uuid"
)

// Limit caps how many entries the cache keeps. Older entries fall off the
// end silently.
const Limit = 100

// Entry is one finished transcription. Field names follow the engine's
// history document.
type Entry struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Provider   string    `json:"provider"`
	DurationMS uint64    `json:"duration_ms"`
	Language   string    `json:"language,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// New builds an Entry for a transcription that just completed. Live events
// carry no id, so one is minted here.
func New(text, provider string, durationMS uint64, language string) Entry {
	return Entry{
		ID:         uuid.NewString(),
		Text:       text,
		Provider:   provider,
		DurationMS: durationMS,
		Language:   language,
		Timestamp:  time.Now().UTC(),
	}
}

// Cache holds recent entries, newest first. It does no locking of its own;
// the owning store serializes access.
type Cache struct {
	entries []Entry
}

// Append prepends e, evicting past Limit.
func (c *Cache) Append(e Entry) {
	c.entries = append([]Entry{e}, c.entries...)
	if len(c.entries) > Limit {
		c.entries = c.entries[:Limit]
	}
}

// Replace adopts an engine-fetched list wholesale, truncated to Limit.
func (c *Cache) Replace(entries []Entry) {
	if len(entries) > Limit {
		entries = entries[:Limit]
	}
	c.entries = append([]Entry(nil), entries...)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.entries = nil
}

// All returns a copy of the entries, newest first.
func (c *Cache) All() []Entry {
	return append([]Entry(nil), c.entries...)
}

// Len reports how many entries are cached.
func (c *Cache) Len() int { return len(c.entries) }

// Latest returns the newest entry, if any.
func (c *Cache) Latest() (Entry, bool) {
	if len(c.entries) == 0 {
		return Entry{}, false
	}
	return c.entries[0], true
}
