package tui

// History keeps recently entered commands, newest last. Re-entering a
// command moves it to the newest position instead of storing it twice.
type History struct {
	entries []string
	max     int
	cursor  int // len(entries) when not navigating
}

// NewHistory creates a history holding at most max commands.
func NewHistory(max int) *History {
	if max < 1 {
		max = 1
	}
	return &History{entries: make([]string, 0, max), max: max}
}

// Len reports how many commands are stored.
func (h *History) Len() int { return len(h.entries) }

// Push records cmd as the newest entry and resets navigation.
func (h *History) Push(cmd string) {
	for i, e := range h.entries {
		if e == cmd {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			break
		}
	}
	if len(h.entries) == h.max {
		h.entries = h.entries[1:]
	}
	h.entries = append(h.entries, cmd)
	h.ResetCursor()
}

// Prev steps to the next older entry, stopping at the oldest.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.cursor > 0 {
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next steps toward the newest entry. It returns false once navigation
// moves past the newest entry, back to a blank prompt.
func (h *History) Next() (string, bool) {
	if h.cursor >= len(h.entries) {
		return "", false
	}
	h.cursor++
	if h.cursor == len(h.entries) {
		return "", false
	}
	return h.entries[h.cursor], true
}

// ResetCursor leaves navigation mode.
func (h *History) ResetCursor() { h.cursor = len(h.entries) }
