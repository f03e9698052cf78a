// Package tui is the Bubble Tea front end: a scrolling transcript, a status
// bar and an input line with history and tab completion.
package tui

// History keeps recent input lines for up/down recall.
type History struct {
	entries []string
	max     int
	cursor  int // len(entries) when not navigating
}

func NewHistory(max int) *History {
	return &History{max: max}
}

// Push records a line. Blank lines and repeats of the last line are
// dropped, and recall restarts from the newest entry.
func (h *History) Push(line string) {
	defer h.Reset()
	if line == "" || (len(h.entries) > 0 && h.entries[len(h.entries)-1] == line) {
		return
	}
	h.entries = append(h.entries, line)
	if over := len(h.entries) - h.max; over > 0 {
		h.entries = h.entries[over:]
	}
}

// Prev steps back. It stays on the oldest entry once there.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.cursor > 0 {
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next steps forward; past the newest entry it reports false.
func (h *History) Next() (string, bool) {
	if h.cursor >= len(h.entries)-1 {
		h.Reset()
		return "", false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

func (h *History) Reset() {
	h.cursor = len(h.entries)
}

func (h *History) Len() int { return len(h.entries) }
