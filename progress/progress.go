// Package progress tracks in-flight engine downloads, keyed by item name.
package progress

import "fmt"

// Line is one visible download.
type Line struct {
	Item       string
	Downloaded uint64
	Total      *uint64 // nil when the engine cannot size the download
}

// String renders the line for the models view.
func (l Line) String() string {
	if l.Total == nil {
		return fmt.Sprintf("%s  %s / ?", l.Item, FormatBytes(l.Downloaded))
	}
	return fmt.Sprintf("%s  %s / %s", l.Item, FormatBytes(l.Downloaded), FormatBytes(*l.Total))
}

// Tracker keeps one line per downloading item, in first-seen order. It does
// no locking of its own; the owning store serializes access.
type Tracker struct {
	order []string
	lines map[string]Line
}

// Update applies one progress frame. The first frame for an item inserts it,
// later frames overwrite it, and a done frame retires it. finished reports
// that the item just completed, the caller's cue to refresh asset status.
func (t *Tracker) Update(item string, downloaded uint64, total *uint64, done bool) (finished bool) {
	if done {
		t.remove(item)
		return true
	}
	if t.lines == nil {
		t.lines = make(map[string]Line)
	}
	if _, ok := t.lines[item]; !ok {
		t.order = append(t.order, item)
	}
	t.lines[item] = Line{Item: item, Downloaded: downloaded, Total: total}
	return false
}

// Drop removes an item whose download command was rejected and will never
// see a done frame.
func (t *Tracker) Drop(item string) {
	t.remove(item)
}

func (t *Tracker) remove(item string) {
	if _, ok := t.lines[item]; !ok {
		return
	}
	delete(t.lines, item)
	for i, name := range t.order {
		if name == item {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Lines returns the visible lines in first-seen order.
func (t *Tracker) Lines() []Line {
	out := make([]Line, 0, len(t.order))
	for _, item := range t.order {
		out = append(out, t.lines[item])
	}
	return out
}

// Active reports how many downloads are visible.
func (t *Tracker) Active() int { return len(t.order) }

// FormatBytes renders a byte count the way the models view shows sizes.
func FormatBytes(n uint64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
		gb = 1 << 30
	)
	switch {
	case n >= gb:
		return fmt.Sprintf("%.1f GB", float64(n)/gb)
	case n >= mb:
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.1f KB", float64(n)/kb)
	}
	return fmt.Sprintf("%d B", n)
}
