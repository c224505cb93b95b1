package item

import "fmt"

// Entry is a stack of identical items.
type Entry struct {
	TemplateID string `json:"id"`
	Quality    string `json:"quality,omitempty"`
	Quantity   int    `json:"quantity"`
}

// List is an ordered inventory. Stacks with the same template and quality
// merge.
type List struct {
	entries []Entry
}

// NewList creates a list from entries, merging duplicates.
func NewList(entries ...Entry) *List {
	l := &List{}
	for _, e := range entries {
		l.Add(e.TemplateID, e.Quality, e.Quantity)
	}
	return l
}

// Add puts qty items in the list. Non-positive quantities are ignored.
func (l *List) Add(id, quality string, qty int) {
	if qty <= 0 {
		return
	}
	for i := range l.entries {
		if l.entries[i].TemplateID == id && l.entries[i].Quality == quality {
			l.entries[i].Quantity += qty
			return
		}
	}
	l.entries = append(l.entries, Entry{TemplateID: id, Quality: quality, Quantity: qty})
}

// Remove takes qty items of any quality, oldest stacks first.
func (l *List) Remove(id string, qty int) error {
	if l.Count(id) < qty {
		return fmt.Errorf("need %d %s, have %d", qty, id, l.Count(id))
	}
	for i := 0; i < len(l.entries) && qty > 0; {
		e := &l.entries[i]
		if e.TemplateID != id {
			i++
			continue
		}
		take := min(qty, e.Quantity)
		e.Quantity -= take
		qty -= take
		if e.Quantity == 0 {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			continue
		}
		i++
	}
	return nil
}

// RemoveQuality takes qty items of an exact quality.
func (l *List) RemoveQuality(id, quality string, qty int) error {
	for i := range l.entries {
		e := &l.entries[i]
		if e.TemplateID != id || e.Quality != quality {
			continue
		}
		if e.Quantity < qty {
			break
		}
		e.Quantity -= qty
		if e.Quantity == 0 {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
		}
		return nil
	}
	return fmt.Errorf("need %d %s (%s)", qty, id, quality)
}

// Count returns how many items of a template the list holds, any quality.
func (l *List) Count(id string) int {
	n := 0
	for _, e := range l.entries {
		if e.TemplateID == id {
			n += e.Quantity
		}
	}
	return n
}

// Has reports whether at least qty items of a template are present.
func (l *List) Has(id string, qty int) bool { return l.Count(id) >= qty }

// Entries returns a copy of the stacks in order.
func (l *List) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

// Len returns the number of stacks.
func (l *List) Len() int { return len(l.entries) }

// Clear empties the list.
func (l *List) Clear() { l.entries = nil }
