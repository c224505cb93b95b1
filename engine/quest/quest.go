// Package quest implements the party's quest journal. Entries are only ever
// added or moved from active to completed; nothing is removed.
package quest

import "fmt"

// SubEntry is one dated note under a quest.
type SubEntry struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ShowTitle   bool   `json:"showTitle"`
}

// Entry is a quest in the journal.
type Entry struct {
	Title                string     `json:"title"`
	Completed            bool       `json:"completed"`
	ShowLogNotifications bool       `json:"showLogNotifications"`
	SubEntries           []SubEntry `json:"subEntries"`
}

// AddSubEntry appends a note.
func (e *Entry) AddSubEntry(s SubEntry) {
	e.SubEntries = append(e.SubEntries, s)
}

// Journal partitions entries into active and completed, each in the order
// entries arrived there.
type Journal struct {
	byTitle   map[string]*Entry
	active    []*Entry
	completed []*Entry
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{byTitle: map[string]*Entry{}}
}

// Add returns the entry with title, creating an active one if needed. The
// second result reports whether the entry was created.
func (j *Journal) Add(title string, showLogNotifications bool) (*Entry, bool) {
	if e, ok := j.byTitle[title]; ok {
		return e, false
	}
	e := &Entry{Title: title, ShowLogNotifications: showLogNotifications}
	j.byTitle[title] = e
	j.active = append(j.active, e)
	return e, true
}

// Restore inserts a saved entry into the partition its Completed flag
// names. Entries whose title already exists are ignored.
func (j *Journal) Restore(e Entry) {
	if _, ok := j.byTitle[e.Title]; ok {
		return
	}
	cp := e
	cp.SubEntries = append([]SubEntry(nil), e.SubEntries...)
	j.byTitle[cp.Title] = &cp
	if cp.Completed {
		j.completed = append(j.completed, &cp)
	} else {
		j.active = append(j.active, &cp)
	}
}

// Get looks an entry up by title.
func (j *Journal) Get(title string) (*Entry, bool) {
	e, ok := j.byTitle[title]
	return e, ok
}

// Complete marks an active entry completed and moves it to the completed
// partition. Completing a completed entry is a no-op.
func (j *Journal) Complete(title string) error {
	e, ok := j.byTitle[title]
	if !ok {
		return fmt.Errorf("unknown quest %q", title)
	}
	if e.Completed {
		return nil
	}
	e.Completed = true
	for i, a := range j.active {
		if a == e {
			j.active = append(j.active[:i], j.active[i+1:]...)
			break
		}
	}
	j.completed = append(j.completed, e)
	return nil
}

// Active returns active entries in order.
func (j *Journal) Active() []*Entry {
	return append([]*Entry(nil), j.active...)
}

// Completed returns completed entries in order.
func (j *Journal) Completed() []*Entry {
	return append([]*Entry(nil), j.completed...)
}

// Len returns the total number of entries.
func (j *Journal) Len() int { return len(j.byTitle) }
